package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/internal/analyzer/repository"
	"golang-news-analyzer/internal/analyzer/taxonomy"
	"golang-news-analyzer/pkg/logger"
	"golang-news-analyzer/pkg/utils"
)

// RemoteScorerConfig bounds the retry behaviour of RemoteScorer.
type RemoteScorerConfig struct {
	// MaxAttempts is the total number of analyze calls, first try included.
	MaxAttempts int
	RetryDelay  time.Duration
	// MaxBackoff caps a server-requested backoff.
	MaxBackoff time.Duration
}

// RemoteScorer scores entities with the remote sentiment scoring service.
type RemoteScorer struct {
	repo   repository.SentimentScorerRepository
	cfg    RemoteScorerConfig
	logger *logger.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRemoteScorer creates a new RemoteScorer.
func NewRemoteScorer(repo repository.SentimentScorerRepository, cfg RemoteScorerConfig, log *logger.Logger) *RemoteScorer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RemoteScorer{
		repo:   repo,
		cfg:    cfg,
		logger: log,
		sleep:  sleepContext,
	}
}

func (s *RemoteScorer) Name() string {
	return ScorerNameRemote
}

// Score checks the scorer health, then submits all entities as one batch.
// Results below threshold are dropped from Results but kept in RawResults.
func (s *RemoteScorer) Score(ctx context.Context, entities []dto.Entity, content string, threshold float64) (*dto.BatchResult, error) {
	start := time.Now()
	if len(entities) == 0 {
		return newBatchResult(s.Name(), false, nil, nil, threshold, start), nil
	}

	health, err := s.repo.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: health check failed: %v", ErrScorerUnavailable, err)
	}
	if !health.Healthy() {
		return nil, fmt.Errorf("%w: status=%s model_loaded=%t", ErrScorerUnavailable, health.Status, health.ModelLoaded)
	}

	req := dto.ScorerAnalyzeRequest{
		Entities: make([]dto.ScorerEntity, 0, len(entities)),
		Content:  content,
	}
	for _, e := range entities {
		req.Entities = append(req.Entities, dto.ScorerEntity{Name: e.Name, Type: string(e.Type), Code: e.Code})
	}

	resp, err := s.analyzeWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}

	raw := s.mapResults(entities, resp.Results)
	filtered := make([]dto.SentimentResult, 0, len(raw))
	for _, r := range raw {
		if r.ConfidenceScore >= threshold {
			filtered = append(filtered, r)
		}
	}

	result := newBatchResult(s.Name(), false, filtered, raw, threshold, start)
	s.logger.Info("Sentiment batch scored",
		logger.IntField("total_analyzed", result.Stats.TotalAnalyzed),
		logger.IntField("filtered_count", result.Stats.FilteredCount),
		logger.Float64Field("threshold", threshold),
		logger.Int64Field("processing_time_ms", result.Stats.ProcessingTimeMs),
	)
	return result, nil
}

func (s *RemoteScorer) analyzeWithRetry(ctx context.Context, req dto.ScorerAnalyzeRequest) (*dto.ScorerAnalyzeResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		resp, err := s.repo.Analyze(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var scorerErr *repository.ScorerError
		retryable := true
		if errors.As(err, &scorerErr) {
			retryable = scorerErr.Retryable()
		}
		if !retryable || attempt == s.cfg.MaxAttempts {
			break
		}

		delay := s.cfg.RetryDelay
		if backoff, ok := repository.BackoffFrom(err); ok {
			delay = backoff.Delay
			if s.cfg.MaxBackoff > 0 && delay > s.cfg.MaxBackoff {
				delay = s.cfg.MaxBackoff
			}
		}
		s.logger.Warn("Sentiment scorer request failed, retrying",
			logger.ErrorField(err),
			logger.IntField("attempt", attempt),
			logger.DurationField("delay", delay),
		)
		if err := s.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrScorerUnavailable, lastErr)
}

// mapResults converts scorer results, dropping entity types the pipeline
// does not know and restoring stock codes from the submitted entities.
func (s *RemoteScorer) mapResults(entities []dto.Entity, results []dto.ScorerResult) []dto.SentimentResult {
	codes := make(map[dto.EntityKey]string, len(entities))
	for _, e := range entities {
		codes[dto.EntityKey{Type: e.Type, ID: e.Name}] = e.Code
	}

	mapped := make([]dto.SentimentResult, 0, len(results))
	for _, r := range results {
		entityType := taxonomy.EntityType(r.EntityType)
		if !entityType.Valid() {
			s.logger.Warn("Skipping scorer result with unknown entity type",
				logger.StringField("entity_type", r.EntityType),
				logger.StringField("entity_name", r.EntityName))
			continue
		}
		mapped = append(mapped, dto.SentimentResult{
			EntityType:      entityType,
			EntityName:      r.EntityName,
			EntityCode:      codes[dto.EntityKey{Type: entityType, ID: r.EntityName}],
			Sentiment:       dto.NormalizeSentiment(r.Sentiment),
			ConfidenceScore: r.ConfidenceScore,
			Reasoning:       fmt.Sprintf("%s 분석 결과", r.EntityName),
		})
	}
	return mapped
}

func newBatchResult(scorer string, degraded bool, filtered, raw []dto.SentimentResult, threshold float64, start time.Time) *dto.BatchResult {
	if filtered == nil {
		filtered = []dto.SentimentResult{}
	}
	if raw == nil {
		raw = []dto.SentimentResult{}
	}
	return &dto.BatchResult{
		Scorer:     scorer,
		Degraded:   degraded,
		Results:    filtered,
		RawResults: raw,
		Stats: dto.BatchStats{
			TotalAnalyzed:       len(raw),
			FilteredCount:       len(filtered),
			ProcessingTimeMs:    time.Since(start).Milliseconds(),
			ConfidenceThreshold: threshold,
			Timestamp:           utils.TimeNowKST(),
		},
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
