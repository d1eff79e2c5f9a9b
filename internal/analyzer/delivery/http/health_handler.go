package http

import (
	"context"
	"net/http"
	"time"

	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/internal/analyzer/repository"
	"golang-news-analyzer/pkg/logger"

	"github.com/labstack/echo/v4"
)

const scorerHealthTimeout = 3 * time.Second

// HealthHandler reports service liveness and the state of its collaborators.
// The service stays up when the scorer is down, so the response is always 200.
type HealthHandler struct {
	scorerRepo      repository.SentimentScorerRepository
	generativeMacro bool
	logger          *logger.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(scorerRepo repository.SentimentScorerRepository, generativeMacro bool, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{scorerRepo: scorerRepo, generativeMacro: generativeMacro, logger: logger}
}

// Health godoc
// @Summary Service health
// @Tags health
// @Produce  json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	resp := dto.HealthResponse{Status: "ok", Scorer: "healthy", Macro: string(dto.MacroSourceHeuristic)}
	if h.generativeMacro {
		resp.Macro = string(dto.MacroSourceGenerative)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), scorerHealthTimeout)
	defer cancel()
	health, err := h.scorerRepo.Health(ctx)
	if err != nil || health == nil || !health.Healthy() {
		if err != nil {
			h.logger.Warn("Sentiment scorer health check failed", logger.ErrorField(err))
		}
		resp.Scorer = "unavailable"
	}
	return c.JSON(http.StatusOK, resp)
}
