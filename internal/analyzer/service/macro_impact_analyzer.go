package service

import (
	"context"

	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/internal/analyzer/strategy"
	"golang-news-analyzer/pkg/logger"
)

// MacroImpactAnalyzer runs the generative macro strategy and falls back to
// the heuristic one when it is missing or fails. Only cancellation of ctx
// is reported as an error.
type MacroImpactAnalyzer struct {
	generative strategy.MacroImpactStrategy
	heuristic  strategy.MacroImpactStrategy
	logger     *logger.Logger
}

// NewMacroImpactAnalyzer creates a MacroImpactAnalyzer. generative may be
// nil when no generative service is configured.
func NewMacroImpactAnalyzer(generative, heuristic strategy.MacroImpactStrategy, log *logger.Logger) *MacroImpactAnalyzer {
	return &MacroImpactAnalyzer{
		generative: generative,
		heuristic:  heuristic,
		logger:     log,
	}
}

// GenerativeAvailable reports whether a generative strategy is configured.
func (a *MacroImpactAnalyzer) GenerativeAvailable() bool {
	return a.generative != nil
}

func (a *MacroImpactAnalyzer) Analyze(ctx context.Context, content string) (*dto.MacroAnalysis, error) {
	var cause string
	if a.generative != nil {
		impacts, err := a.generative.Analyze(ctx, content)
		if err == nil {
			return &dto.MacroAnalysis{Source: a.generative.Name(), Impacts: impacts}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.logger.Warn("Generative macro analysis failed, using heuristic", logger.ErrorField(err))
		cause = err.Error()
	}

	impacts, err := a.heuristic.Analyze(ctx, content)
	if err != nil {
		return nil, err
	}
	return &dto.MacroAnalysis{Source: a.heuristic.Name(), Impacts: impacts, Cause: cause}, nil
}
