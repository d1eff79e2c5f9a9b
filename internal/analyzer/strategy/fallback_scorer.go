package strategy

import (
	"context"
	"fmt"
	"time"

	"golang-news-analyzer/internal/analyzer/dto"
)

// DefaultFallbackConfidence is the fixed confidence of placeholder records.
const DefaultFallbackConfidence = 50.0

// FallbackScorer produces neutral placeholder sentiment without any I/O.
// Its records carry a fixed confidence and a distinct reasoning text so
// operators can tell them from real scores; a later successful run
// overwrites them through the same upsert key.
type FallbackScorer struct {
	confidence float64
}

// NewFallbackScorer creates a FallbackScorer. A non-positive confidence
// selects DefaultFallbackConfidence.
func NewFallbackScorer(confidence float64) *FallbackScorer {
	if confidence <= 0 {
		confidence = DefaultFallbackConfidence
	}
	return &FallbackScorer{confidence: confidence}
}

func (s *FallbackScorer) Name() string {
	return ScorerNameFallback
}

// Score never fails. The threshold is ignored: every entity gets a record,
// and the run reports the placeholder confidence as its threshold.
func (s *FallbackScorer) Score(_ context.Context, entities []dto.Entity, _ string, _ float64) (*dto.BatchResult, error) {
	start := time.Now()
	results := make([]dto.SentimentResult, 0, len(entities))
	for _, e := range entities {
		results = append(results, dto.SentimentResult{
			EntityType:      e.Type,
			EntityName:      e.Name,
			EntityCode:      e.Code,
			Sentiment:       dto.SentimentNeutral,
			ConfidenceScore: s.confidence,
			Reasoning:       FallbackReasoning(e.Name),
		})
	}
	return newBatchResult(s.Name(), true, results, results, s.confidence, start), nil
}

// FallbackReasoning is the reasoning text of a placeholder record.
func FallbackReasoning(entityName string) string {
	return fmt.Sprintf("%s 기본 분석 결과 (감정분석 서버 응답 없음)", entityName)
}
