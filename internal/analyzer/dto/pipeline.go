package dto

import (
	"time"
)

// SkipReason explains why an article was not analyzed.
type SkipReason string

const (
	SkipReasonNoEntities      SkipReason = "no_entities_extracted"
	SkipReasonAlreadyAnalyzed SkipReason = "already_analyzed"
)

// PipelineOptions tunes a single pipeline run.
type PipelineOptions struct {
	// Force re-analyzes an article even if results already exist.
	Force bool `json:"force"`
}

// PipelineResult is the outcome of running the pipeline on one article.
type PipelineResult struct {
	RunID          string         `json:"run_id"`
	NewsID         int64          `json:"news_id"`
	Classification Classification `json:"classification"`
	Entities       []Entity       `json:"entities"`
	Sentiment      *BatchResult   `json:"sentiment,omitempty"`
	Macro          *MacroAnalysis `json:"macro,omitempty"`
	Skipped        bool           `json:"skipped"`
	SkipReason     SkipReason     `json:"skip_reason,omitempty"`
	Elapsed        time.Duration  `json:"elapsed"`
}

// ArticleError is one failed article within a batch.
type ArticleError struct {
	NewsID int64  `json:"news_id"`
	Error  string `json:"error"`
}

// BatchReport summarises a backlog run.
type BatchReport struct {
	RunID      string         `json:"run_id"`
	Requested  int            `json:"requested"`
	Success    int            `json:"success"`
	Failed     int            `json:"failed"`
	Skipped    int            `json:"skipped"`
	Degraded   int            `json:"degraded"`
	Cancelled  bool           `json:"cancelled"`
	Errors     []ArticleError `json:"errors,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// ClassificationReport summarises a classification backlog run.
type ClassificationReport struct {
	Requested  int            `json:"requested"`
	Classified int            `json:"classified"`
	Failed     int            `json:"failed"`
	ByCategory map[string]int `json:"by_category"`
	Errors     []ArticleError `json:"errors,omitempty"`
}
