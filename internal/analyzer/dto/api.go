package dto

import (
	"time"
)

// ErrorResponse is the body returned for failed requests.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// AnalyzeResponse is returned by the analyze endpoint.
type AnalyzeResponse struct {
	Success bool            `json:"success"`
	Data    *PipelineResult `json:"data"`
}

// BatchResponse is returned by the batch endpoint.
type BatchResponse struct {
	Success bool         `json:"success"`
	Data    *BatchReport `json:"data"`
}

// ClassificationResponse is returned by the classification endpoints.
type ClassificationResponse struct {
	Success bool            `json:"success"`
	Data    *Classification `json:"data"`
}

// ClassificationBatchResponse is returned by the classification backlog endpoint.
type ClassificationBatchResponse struct {
	Success bool                  `json:"success"`
	Data    *ClassificationReport `json:"data"`
}

// EntitySentimentView is a persisted entity sentiment row.
type EntitySentimentView struct {
	EntityName      string    `json:"entity_name"`
	EntityCode      *string   `json:"entity_code,omitempty"`
	Sentiment       string    `json:"sentiment"`
	ConfidenceScore float64   `json:"confidence_score"`
	Reasoning       string    `json:"reasoning"`
	Scorer          string    `json:"scorer"`
	AnalyzedAt      time.Time `json:"analyzed_at"`
}

// SentimentResults groups the stored results of one article.
type SentimentResults struct {
	NewsID         int64                            `json:"news_id"`
	Classification *Classification                  `json:"classification,omitempty"`
	Entities       map[string][]EntitySentimentView `json:"entities"`
	Macro          []MacroImpact                    `json:"macro"`
}

// SentimentResultsResponse is returned by the results endpoint.
type SentimentResultsResponse struct {
	Success bool              `json:"success"`
	Data    *SentimentResults `json:"data"`
}

type EnqueueResult struct {
	NewsID    int64  `json:"news_id"`
	MessageID string `json:"message_id"`
}

type EnqueueResponse struct {
	Success bool           `json:"success"`
	Data    *EnqueueResult `json:"data"`
}

// BatchEnqueueResult reports how many backlog articles were queued.
type BatchEnqueueResult struct {
	Enqueued int `json:"enqueued"`
}

type BatchEnqueueResponse struct {
	Success bool                `json:"success"`
	Data    *BatchEnqueueResult `json:"data"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Scorer string `json:"scorer"`
	Macro  string `json:"macro"`
}
