package service

import (
	"time"

	"golang-news-analyzer/internal/analyzer/taxonomy"
	"golang-news-analyzer/pkg/logger"

	"github.com/google/uuid"
)

// RunContext carries the state of one pipeline or batch run. Every stage
// receives it explicitly; nothing about a run is kept in package state, so
// concurrent runs never see each other's data.
type RunContext struct {
	RunID               string
	StartedAt           time.Time
	ConfidenceThreshold float64
	Logger              *logger.Logger

	// Lexicon is shared by all articles of a batch. Nil means each article
	// loads its own.
	Lexicon *taxonomy.Lexicon
}

func newRunContext(log *logger.Logger, confidenceThreshold float64) *RunContext {
	runID := uuid.NewString()
	return &RunContext{
		RunID:               runID,
		StartedAt:           time.Now(),
		ConfidenceThreshold: confidenceThreshold,
		Logger:              log.With(logger.StringField("run_id", runID)),
	}
}
