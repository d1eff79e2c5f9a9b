package strategy

import (
	"context"
	"errors"

	"golang-news-analyzer/internal/analyzer/dto"
)

// ErrScorerUnavailable is returned when the remote scorer is unhealthy or
// exhausted its retry budget.
var ErrScorerUnavailable = errors.New("sentiment scorer unavailable")

const (
	ScorerNameRemote   = "remote"
	ScorerNameFallback = "fallback"
)

// SentimentScorer assigns a sentiment to every entity of one article in a single call.
type SentimentScorer interface {
	Name() string
	Score(ctx context.Context, entities []dto.Entity, content string, threshold float64) (*dto.BatchResult, error)
}
