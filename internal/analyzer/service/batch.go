package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/pkg/logger"
	"golang-news-analyzer/pkg/telegram"
	"golang-news-analyzer/pkg/utils"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// RunBatch analyzes the newest articles that still lack a complete result.
// Articles are paced by a token bucket and run with bounded concurrency; a
// failed article is recorded and the batch moves on. Cancellation stops the
// batch between articles.
func (s *newsAnalysisService) RunBatch(ctx context.Context, limit int) (*dto.BatchReport, error) {
	if limit <= 0 {
		limit = s.cfg.Batch.DefaultLimit
	}
	rc := newRunContext(s.log, s.cfg.Analyzer.ConfidenceThreshold)
	report := &dto.BatchReport{
		RunID:     rc.RunID,
		StartedAt: utils.TimeNowKST(),
	}

	ids, err := s.repos.News.FindUnanalyzedIDs(ctx, limit, s.macroAnalyzer.GenerativeAvailable())
	if err != nil {
		return nil, fmt.Errorf("failed to find unanalyzed news: %w", err)
	}
	report.Requested = len(ids)
	rc.Logger.Info("Sentiment batch started", logger.IntField("requested", len(ids)), logger.IntField("limit", limit))

	if len(ids) > 0 {
		s.shareLexicon(ctx, rc)
	}

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(max(s.cfg.Batch.ArticlesPerMinute, 1))), 1)
	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(max(s.cfg.Batch.Concurrency, 1))

	for _, id := range ids {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
		if err := limiter.Wait(ctx); err != nil {
			report.Cancelled = true
			break
		}

		g.Go(func() error {
			result, err := s.runPipeline(ctx, rc, id, dto.PipelineOptions{})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					report.Cancelled = true
				}
				report.Failed++
				report.Errors = append(report.Errors, dto.ArticleError{NewsID: id, Error: err.Error()})
				rc.Logger.Error("Failed to analyze news", logger.ErrorField(err), logger.Int64Field("news_id", id))
			case result.Skipped:
				report.Skipped++
			default:
				report.Success++
				if result.Sentiment != nil && result.Sentiment.Degraded {
					report.Degraded++
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = utils.TimeNowKST()
	rc.Logger.Info("Sentiment batch finished",
		logger.IntField("requested", report.Requested),
		logger.IntField("success", report.Success),
		logger.IntField("skipped", report.Skipped),
		logger.IntField("degraded", report.Degraded),
		logger.IntField("failed", report.Failed),
		logger.BoolField("cancelled", report.Cancelled),
	)
	if report.Requested > 0 {
		s.notify(telegram.FormatBatchReport(report))
	}
	return report, nil
}

// ClassifyBacklog classifies articles that have no classification yet.
// Classification is local, so articles are processed in order without pacing.
func (s *newsAnalysisService) ClassifyBacklog(ctx context.Context, limit int) (*dto.ClassificationReport, error) {
	if limit <= 0 {
		limit = s.cfg.Batch.DefaultLimit
	}
	rc := newRunContext(s.log, s.cfg.Analyzer.ConfidenceThreshold)

	ids, err := s.repos.News.FindUnclassifiedIDs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find unclassified news: %w", err)
	}

	report := &dto.ClassificationReport{
		Requested:  len(ids),
		ByCategory: make(map[string]int),
	}
	if len(ids) == 0 {
		return report, nil
	}

	s.shareLexicon(ctx, rc)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		cls, err := s.classifyArticle(ctx, rc, id)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, dto.ArticleError{NewsID: id, Error: err.Error()})
			rc.Logger.Error("Failed to classify news", logger.ErrorField(err), logger.Int64Field("news_id", id))
			continue
		}
		report.Classified++
		report.ByCategory[cls.Category.String()]++
	}

	rc.Logger.Info("Classification backlog finished",
		logger.IntField("requested", report.Requested),
		logger.IntField("classified", report.Classified),
		logger.IntField("failed", report.Failed),
		logger.Field("by_category", report.ByCategory),
	)
	s.notify(telegram.FormatClassificationReport(report, utils.TimeNowKST()))
	return report, nil
}

// shareLexicon reloads the roster once for a whole batch, so stocks added
// since the cache was filled are matched.
func (s *newsAnalysisService) shareLexicon(ctx context.Context, rc *RunContext) {
	s.repos.Lexicon.Invalidate()
	lex := s.lexicon(ctx, rc)
	rc.Lexicon = &lex
}

func (s *newsAnalysisService) notify(msg string) {
	if s.telegramBot == nil {
		return
	}
	if err := s.telegramBot.SendMessage(msg); err != nil {
		s.log.Error("Failed to send telegram message", logger.ErrorField(err))
	}
}
