package strategy

import (
	"context"

	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/pkg/logger"
)

// ResilientScorer tries the primary scorer and degrades to the fallback on
// any primary failure, so scoring only fails when the context is done.
type ResilientScorer struct {
	primary  SentimentScorer
	fallback SentimentScorer
	logger   *logger.Logger
}

// NewResilientScorer creates a new ResilientScorer.
func NewResilientScorer(primary, fallback SentimentScorer, log *logger.Logger) *ResilientScorer {
	return &ResilientScorer{
		primary:  primary,
		fallback: fallback,
		logger:   log,
	}
}

func (s *ResilientScorer) Name() string {
	return s.primary.Name()
}

func (s *ResilientScorer) Score(ctx context.Context, entities []dto.Entity, content string, threshold float64) (*dto.BatchResult, error) {
	result, err := s.primary.Score(ctx, entities, content, threshold)
	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.logger.Warn("Primary sentiment scorer failed, using fallback",
		logger.ErrorField(err),
		logger.StringField("primary", s.primary.Name()),
		logger.StringField("fallback", s.fallback.Name()),
		logger.IntField("entities", len(entities)),
	)

	result, fbErr := s.fallback.Score(ctx, entities, content, threshold)
	if fbErr != nil {
		return nil, fbErr
	}
	result.Degraded = true
	result.Cause = err.Error()
	return result, nil
}
