package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/internal/analyzer/service"
	"golang-news-analyzer/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SentimentHandler handles HTTP requests for entity sentiment analysis.
type SentimentHandler struct {
	analysisService service.NewsAnalysisService
	streamService   service.NewsAnalysisStreamService
	logger          *logger.Logger
}

// NewSentimentHandler creates a new SentimentHandler. streamService may be
// nil, in which case asynchronous requests are rejected.
func NewSentimentHandler(analysisService service.NewsAnalysisService, streamService service.NewsAnalysisStreamService, logger *logger.Logger) *SentimentHandler {
	return &SentimentHandler{analysisService: analysisService, streamService: streamService, logger: logger}
}

// RegisterRoutes registers the sentiment routes to the Echo group.
func (h *SentimentHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/analyze/:newsId", h.Analyze)
	g.POST("/batch", h.RunBatch)
	g.GET("/:newsId", h.GetResults)
}

// Analyze godoc
// @Summary Analyze one article
// @Description Run classification, entity extraction and sentiment analysis for one article. With async=true the article is queued on the analysis stream instead.
// @Tags sentiment
// @Produce  json
// @Param   newsId  path    int  true   "News ID"
// @Param   force   query   bool false  "Re-analyze even if a complete result exists"
// @Param   async   query   bool false  "Queue the article instead of analyzing it inline"
// @Success 200 {object} dto.AnalyzeResponse
// @Success 202 {object} dto.EnqueueResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sentiment/analyze/{newsId} [post]
func (h *SentimentHandler) Analyze(c echo.Context) error {
	newsID, err := parseNewsID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid news ID")
	}
	force, err := parseBoolQuery(c, "force")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid force flag")
	}
	async, err := parseBoolQuery(c, "async")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid async flag")
	}

	if async {
		if h.streamService == nil {
			return errorJSON(c, http.StatusServiceUnavailable, "Analysis queue is not available")
		}
		messageID, err := h.streamService.EnqueueNews(c.Request().Context(), newsID, force)
		if err != nil {
			h.logger.Error("Failed to enqueue news", logger.ErrorField(err), logger.Int64Field("news_id", newsID))
			return errorJSON(c, http.StatusInternalServerError, "Failed to enqueue news")
		}
		return c.JSON(http.StatusAccepted, dto.EnqueueResponse{
			Success: true,
			Data:    &dto.EnqueueResult{NewsID: newsID, MessageID: messageID},
		})
	}

	result, err := h.analysisService.RunPipeline(c.Request().Context(), newsID, dto.PipelineOptions{Force: force})
	if err != nil {
		return h.serviceError(c, err, "Failed to analyze news", newsID)
	}
	return c.JSON(http.StatusOK, dto.AnalyzeResponse{Success: true, Data: result})
}

// GetResults godoc
// @Summary Get stored sentiment results
// @Description Get the classification, entity sentiment grouped by entity type and macro impact of one article
// @Tags sentiment
// @Produce  json
// @Param   newsId  path    int true    "News ID"
// @Success 200 {object} dto.SentimentResultsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sentiment/{newsId} [get]
func (h *SentimentHandler) GetResults(c echo.Context) error {
	newsID, err := parseNewsID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid news ID")
	}

	results, err := h.analysisService.GetResults(c.Request().Context(), newsID)
	if err != nil {
		return h.serviceError(c, err, "Failed to get sentiment results", newsID)
	}
	return c.JSON(http.StatusOK, dto.SentimentResultsResponse{Success: true, Data: results})
}

// RunBatch godoc
// @Summary Analyze the backlog
// @Description Analyze the newest articles without a complete result, or queue them for the stream workers with async=true
// @Tags sentiment
// @Produce  json
// @Param   limit  query   int false  "Maximum number of articles"
// @Param   async  query   bool false "Queue the backlog instead of analyzing it in the request"
// @Success 200 {object} dto.BatchResponse
// @Success 202 {object} dto.BatchEnqueueResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /sentiment/batch [post]
func (h *SentimentHandler) RunBatch(c echo.Context) error {
	limit, err := parseLimit(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid limit")
	}
	async, err := parseBoolQuery(c, "async")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid async flag")
	}

	if async {
		if h.streamService == nil {
			return errorJSON(c, http.StatusServiceUnavailable, "Analysis queue is not available")
		}
		enqueued, err := h.streamService.Enqueue(c.Request().Context(), limit)
		if err != nil {
			h.logger.Error("Failed to enqueue backlog", logger.ErrorField(err), logger.IntField("enqueued", enqueued))
			return errorJSON(c, http.StatusInternalServerError, "Failed to enqueue backlog")
		}
		return c.JSON(http.StatusAccepted, dto.BatchEnqueueResponse{
			Success: true,
			Data:    &dto.BatchEnqueueResult{Enqueued: enqueued},
		})
	}

	report, err := h.analysisService.RunBatch(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to run sentiment batch", logger.ErrorField(err))
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dto.BatchResponse{Success: true, Data: report})
}

func (h *SentimentHandler) serviceError(c echo.Context, err error, msg string, newsID int64) error {
	if errors.Is(err, service.ErrNewsNotFound) {
		return errorJSON(c, http.StatusNotFound, "News not found")
	}
	h.logger.Error(msg, logger.ErrorField(err), logger.Int64Field("news_id", newsID))
	return errorJSON(c, http.StatusInternalServerError, err.Error())
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, dto.ErrorResponse{Success: false, Error: msg})
}

func parseNewsID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("newsId"), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("news id must be positive")
	}
	return id, nil
}

func parseBoolQuery(c echo.Context, name string) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

// parseLimit returns 0 when the limit is absent, which selects the configured default.
func parseLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return limit, nil
}
