package http

import (
	"errors"
	"net/http"

	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/internal/analyzer/service"
	"golang-news-analyzer/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ClassificationHandler handles HTTP requests for article classification.
type ClassificationHandler struct {
	analysisService service.NewsAnalysisService
	logger          *logger.Logger
}

// NewClassificationHandler creates a new ClassificationHandler.
func NewClassificationHandler(analysisService service.NewsAnalysisService, logger *logger.Logger) *ClassificationHandler {
	return &ClassificationHandler{analysisService: analysisService, logger: logger}
}

// RegisterRoutes registers the classification routes to the Echo group.
func (h *ClassificationHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/batch", h.ClassifyBacklog)
	g.POST("/:newsId", h.Classify)
}

// Classify godoc
// @Summary Classify one article
// @Description Classify one article and store the classification
// @Tags classification
// @Produce  json
// @Param   newsId  path    int true    "News ID"
// @Success 200 {object} dto.ClassificationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /classification/{newsId} [post]
func (h *ClassificationHandler) Classify(c echo.Context) error {
	newsID, err := parseNewsID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid news ID")
	}

	cls, err := h.analysisService.ClassifyArticle(c.Request().Context(), newsID)
	if err != nil {
		if errors.Is(err, service.ErrNewsNotFound) {
			return errorJSON(c, http.StatusNotFound, "News not found")
		}
		h.logger.Error("Failed to classify news", logger.ErrorField(err), logger.Int64Field("news_id", newsID))
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dto.ClassificationResponse{Success: true, Data: cls})
}

// ClassifyBacklog godoc
// @Summary Classify the backlog
// @Description Classify articles that have no classification yet
// @Tags classification
// @Produce  json
// @Param   limit  query   int false  "Maximum number of articles"
// @Success 200 {object} dto.ClassificationBatchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /classification/batch [post]
func (h *ClassificationHandler) ClassifyBacklog(c echo.Context) error {
	limit, err := parseLimit(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid limit")
	}

	report, err := h.analysisService.ClassifyBacklog(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to classify backlog", logger.ErrorField(err))
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dto.ClassificationBatchResponse{Success: true, Data: report})
}
