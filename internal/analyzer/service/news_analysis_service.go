package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang-news-analyzer/internal/analyzer/config"
	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/internal/analyzer/repository"
	"golang-news-analyzer/internal/analyzer/strategy"
	"golang-news-analyzer/internal/analyzer/taxonomy"
	"golang-news-analyzer/internal/entity"
	"golang-news-analyzer/pkg/logger"
	"golang-news-analyzer/pkg/telegram"
	"golang-news-analyzer/pkg/trace"
	"golang-news-analyzer/pkg/utils"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// ErrNewsNotFound is returned when the requested article does not exist.
var ErrNewsNotFound = errors.New("news not found")

// NewsAnalysisService runs the news understanding pipeline.
type NewsAnalysisService interface {
	// RunPipeline classifies one article, extracts its entities and stores
	// entity sentiment and, for macro articles, industry impact.
	RunPipeline(ctx context.Context, newsID int64, opts dto.PipelineOptions) (*dto.PipelineResult, error)
	RunBatch(ctx context.Context, limit int) (*dto.BatchReport, error)
	ClassifyArticle(ctx context.Context, newsID int64) (*dto.Classification, error)
	ClassifyBacklog(ctx context.Context, limit int) (*dto.ClassificationReport, error)
	GetResults(ctx context.Context, newsID int64) (*dto.SentimentResults, error)
}

// Repositories groups the stores the pipeline reads and writes.
type Repositories struct {
	News           repository.NewsRawRepository
	Classification repository.NewsClassificationRepository
	Entity         repository.NewsEntityRepository
	Sentiment      repository.EntitySentimentRepository
	Macro          repository.MacroSentimentRepository
	Run            repository.SentimentRunRepository
	Lexicon        repository.LexiconRepository
}

type newsAnalysisService struct {
	cfg           *config.Config
	log           *logger.Logger
	repos         Repositories
	classifier    *Classifier
	extractor     *EntityExtractor
	scorer        strategy.SentimentScorer
	macroAnalyzer *MacroImpactAnalyzer
	telegramBot   telegram.Notifier
}

// NewNewsAnalysisService creates a new NewsAnalysisService.
func NewNewsAnalysisService(
	cfg *config.Config,
	log *logger.Logger,
	repos Repositories,
	classifier *Classifier,
	extractor *EntityExtractor,
	scorer strategy.SentimentScorer,
	macroAnalyzer *MacroImpactAnalyzer,
	telegramBot telegram.Notifier,
) NewsAnalysisService {
	return &newsAnalysisService{
		cfg:           cfg,
		log:           log,
		repos:         repos,
		classifier:    classifier,
		extractor:     extractor,
		scorer:        scorer,
		macroAnalyzer: macroAnalyzer,
		telegramBot:   telegramBot,
	}
}

func (s *newsAnalysisService) RunPipeline(ctx context.Context, newsID int64, opts dto.PipelineOptions) (*dto.PipelineResult, error) {
	rc := newRunContext(s.log, s.cfg.Analyzer.ConfidenceThreshold)
	return s.runPipeline(ctx, rc, newsID, opts)
}

func (s *newsAnalysisService) runPipeline(ctx context.Context, rc *RunContext, newsID int64, opts dto.PipelineOptions) (result *dto.PipelineResult, err error) {
	ctx, span := trace.StartSpan(ctx, "pipeline.run",
		attribute.String("run_id", rc.RunID),
		attribute.Int64("news_id", newsID),
	)
	defer func() { trace.EndSpan(span, err) }()

	start := time.Now()
	log := rc.Logger.With(logger.Int64Field("news_id", newsID))

	article, err := s.loadArticle(ctx, newsID)
	if err != nil {
		return nil, err
	}
	lexicon := s.lexicon(ctx, rc)

	cls := s.classifier.Classify(article.Title, article.Body, lexicon.Stocks)
	if err := s.saveClassification(ctx, newsID, cls); err != nil {
		return nil, err
	}
	log.Debug("Article classified",
		logger.StringField("category", cls.Category.String()),
		logger.IntField("score", cls.Score))

	result = &dto.PipelineResult{
		RunID:          rc.RunID,
		NewsID:         newsID,
		Classification: cls,
	}
	defer func() {
		if result != nil {
			result.Elapsed = time.Since(start)
		}
	}()

	if cls.IsOther() {
		result.Skipped = true
		result.SkipReason = dto.SkipReasonNoEntities
		return result, nil
	}

	if !opts.Force {
		analyzed, err := s.alreadyAnalyzed(ctx, newsID, cls)
		if err != nil {
			return nil, err
		}
		if analyzed {
			log.Info("Article already analyzed, skipping")
			result.Skipped = true
			result.SkipReason = dto.SkipReasonAlreadyAnalyzed
			return result, nil
		}
	}

	entities := s.extractor.Extract(article, cls, lexicon)
	result.Entities = entities
	if len(entities) == 0 {
		result.Skipped = true
		result.SkipReason = dto.SkipReasonNoEntities
		return result, nil
	}
	if err := s.saveEntities(ctx, newsID, entities); err != nil {
		return nil, err
	}

	// The stages share ctx but not a cancel: a failed row in one stage must
	// not abort the other.
	content := article.Content()
	var (
		g                      errgroup.Group
		sentimentErr, macroErr error
	)
	g.Go(func() error {
		result.Sentiment, sentimentErr = s.analyzeEntities(ctx, rc, newsID, entities, content)
		return nil
	})
	if cls.Category == taxonomy.CategoryMacro && hasEntityType(entities, taxonomy.EntityTypeMacro) {
		g.Go(func() error {
			result.Macro, macroErr = s.analyzeMacro(ctx, rc, newsID, content)
			return nil
		})
	}
	_ = g.Wait()
	if err := errors.Join(sentimentErr, macroErr); err != nil {
		return nil, err
	}

	log.Info("Pipeline completed",
		logger.StringField("category", cls.Category.String()),
		logger.IntField("entities", len(entities)),
		logger.BoolField("degraded", result.Sentiment != nil && result.Sentiment.Degraded),
		logger.DurationField("elapsed", time.Since(start)),
	)
	return result, nil
}

func (s *newsAnalysisService) loadArticle(ctx context.Context, newsID int64) (dto.ArticleText, error) {
	news, err := s.repos.News.FindByID(ctx, newsID)
	if err != nil {
		return dto.ArticleText{}, fmt.Errorf("failed to load news %d: %w", newsID, err)
	}
	if news == nil {
		return dto.ArticleText{}, fmt.Errorf("%w: id %d", ErrNewsNotFound, newsID)
	}
	return dto.ArticleText{
		NewsID: news.ID,
		Title:  utils.PlainText(news.Title),
		Body:   utils.PlainText(news.Content),
	}, nil
}

// lexicon degrades to an empty lexicon when the store is unavailable, which
// leaves classification to the taxonomy and extraction to the representative.
func (s *newsAnalysisService) lexicon(ctx context.Context, rc *RunContext) taxonomy.Lexicon {
	if rc.Lexicon != nil {
		return *rc.Lexicon
	}
	lex, err := s.repos.Lexicon.Load(ctx)
	if err != nil {
		rc.Logger.Warn("Failed to load lexicon, continuing without it", logger.ErrorField(err))
		return taxonomy.Lexicon{}
	}
	if lex.IsEmpty() {
		rc.Logger.Warn("Lexicon is empty, stock articles cannot be recognized")
	}
	return lex
}

func (s *newsAnalysisService) saveClassification(ctx context.Context, newsID int64, cls dto.Classification) error {
	row := &entity.NewsClassification{
		NewsID:             newsID,
		Category:           cls.Category.String(),
		Representative:     cls.Representative,
		RepresentativeCode: cls.RepresentativeCode,
		Score:              cls.Score,
		ClassifiedAt:       utils.TimeNowKST(),
	}
	if err := s.repos.Classification.Upsert(ctx, row); err != nil {
		return fmt.Errorf("failed to save classification: %w", err)
	}
	return nil
}

func (s *newsAnalysisService) saveEntities(ctx context.Context, newsID int64, entities []dto.Entity) error {
	now := utils.TimeNowKST()
	rows := make([]entity.NewsEntity, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, entity.NewsEntity{
			NewsID:         newsID,
			EntityType:     string(e.Type),
			EntityName:     e.Name,
			EntityCode:     optionalString(e.Code),
			Provenance:     string(e.Provenance),
			RelevanceScore: e.RelevanceScore,
			ExtractedAt:    now,
		})
	}
	if err := s.repos.Entity.ReplaceForNews(ctx, newsID, rows); err != nil {
		return fmt.Errorf("failed to save entities: %w", err)
	}
	return nil
}

// alreadyAnalyzed reports whether a complete, non-degraded result exists.
// Macro articles also need stored macro rows, from the generative strategy
// when one is configured.
func (s *newsAnalysisService) alreadyAnalyzed(ctx context.Context, newsID int64, cls dto.Classification) (bool, error) {
	done, err := s.repos.Run.HasCompletedRun(ctx, newsID)
	if err != nil {
		return false, fmt.Errorf("failed to check sentiment runs: %w", err)
	}
	if !done || cls.Category != taxonomy.CategoryMacro {
		return done, nil
	}

	sources := []dto.MacroSource{dto.MacroSourceGenerative}
	if !s.macroAnalyzer.GenerativeAvailable() {
		sources = append(sources, dto.MacroSourceHeuristic)
	}
	for _, source := range sources {
		count, err := s.repos.Macro.CountBySource(ctx, newsID, string(source))
		if err != nil {
			return false, fmt.Errorf("failed to check macro sentiment: %w", err)
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

// analyzeEntities scores every non-macro entity in one batch and stores
// the filtered records plus the audit run. A failed row does not stop the
// others; the run is then marked with the error so a later batch retries it.
func (s *newsAnalysisService) analyzeEntities(ctx context.Context, rc *RunContext, newsID int64, entities []dto.Entity, content string) (*dto.BatchResult, error) {
	ctx, span := trace.StartSpan(ctx, "pipeline.sentiment")
	scorable := make([]dto.Entity, 0, len(entities))
	for _, e := range entities {
		if e.Type != taxonomy.EntityTypeMacro {
			scorable = append(scorable, e)
		}
	}

	batch, err := s.scorer.Score(ctx, scorable, content, rc.ConfidenceThreshold)
	if err != nil {
		trace.EndSpan(span, err)
		return nil, fmt.Errorf("failed to score entities: %w", err)
	}

	now := utils.TimeNowKST()
	var rowErrs []error
	for _, r := range batch.Results {
		row := &entity.EntitySentiment{
			NewsID:          newsID,
			EntityType:      string(r.EntityType),
			EntityName:      r.EntityName,
			EntityCode:      optionalString(r.EntityCode),
			Sentiment:       string(r.Sentiment),
			ConfidenceScore: r.ConfidenceScore,
			Reasoning:       r.Reasoning,
			Scorer:          batch.Scorer,
			AnalyzedAt:      now,
		}
		if err := s.repos.Sentiment.Upsert(ctx, row); err != nil {
			rc.Logger.Error("Failed to save entity sentiment",
				logger.ErrorField(err),
				logger.Int64Field("news_id", newsID),
				logger.StringField("entity_name", r.EntityName))
			rowErrs = append(rowErrs, fmt.Errorf("%s: %w", r.EntityName, err))
		}
	}
	if !batch.Degraded && batch.Scorer != strategy.ScorerNameFallback {
		removed, err := s.repos.Sentiment.DeleteByScorer(ctx, newsID, strategy.ScorerNameFallback)
		if err != nil {
			rc.Logger.Error("Failed to remove placeholder sentiment", logger.ErrorField(err), logger.Int64Field("news_id", newsID))
			rowErrs = append(rowErrs, fmt.Errorf("placeholders: %w", err))
		} else if removed > 0 {
			rc.Logger.Info("Removed placeholder sentiment",
				logger.Int64Field("news_id", newsID),
				logger.Int64Field("removed", removed))
		}
	}
	persistErr := errors.Join(rowErrs...)

	if err := s.saveRun(ctx, rc, newsID, batch, persistErr); err != nil {
		rc.Logger.Error("Failed to save sentiment run", logger.ErrorField(err), logger.Int64Field("news_id", newsID))
		persistErr = errors.Join(persistErr, err)
	}

	if persistErr != nil {
		persistErr = fmt.Errorf("failed to save %d of %d sentiment records: %w", len(rowErrs), len(batch.Results), persistErr)
	}
	trace.EndSpan(span, persistErr)
	return batch, persistErr
}

func (s *newsAnalysisService) saveRun(ctx context.Context, rc *RunContext, newsID int64, batch *dto.BatchResult, persistErr error) error {
	raw, err := json.Marshal(batch.RawResults)
	if err != nil {
		return fmt.Errorf("failed to marshal raw results: %w", err)
	}

	run := &entity.SentimentRun{
		RunID:               rc.RunID,
		NewsID:              newsID,
		Scorer:              batch.Scorer,
		Degraded:            batch.Degraded,
		ConfidenceThreshold: batch.Stats.ConfidenceThreshold,
		TotalAnalyzed:       batch.Stats.TotalAnalyzed,
		FilteredCount:       batch.Stats.FilteredCount,
		ProcessingTimeMs:    batch.Stats.ProcessingTimeMs,
		RawResults:          datatypes.JSON(raw),
	}
	switch {
	case persistErr != nil:
		run.ErrorMessage = optionalString(persistErr.Error())
	case batch.Cause != "":
		run.ErrorMessage = optionalString(batch.Cause)
	}
	return s.repos.Run.Create(ctx, run)
}

func (s *newsAnalysisService) analyzeMacro(ctx context.Context, rc *RunContext, newsID int64, content string) (result *dto.MacroAnalysis, err error) {
	ctx, span := trace.StartSpan(ctx, "pipeline.macro")
	defer func() { trace.EndSpan(span, err) }()

	analysis, err := s.macroAnalyzer.Analyze(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze macro impact: %w", err)
	}

	now := utils.TimeNowKST()
	var rowErrs []error
	for _, impact := range analysis.Impacts {
		row := &entity.MacroSentiment{
			NewsID:        newsID,
			IndustryName:  impact.IndustryName,
			Sentiment:     impact.Sentiment,
			OverallImpact: impact.OverallImpact,
			ShortTerm:     impact.ShortTerm,
			MediumTerm:    impact.MediumTerm,
			LongTerm:      impact.LongTerm,
			Reasoning:     impact.Reasoning,
			RelatedStocks: impact.RelatedStocks,
			Source:        string(analysis.Source),
			AnalyzedAt:    now,
		}
		if err := s.repos.Macro.Upsert(ctx, row); err != nil {
			rc.Logger.Error("Failed to save macro sentiment",
				logger.ErrorField(err),
				logger.Int64Field("news_id", newsID),
				logger.StringField("industry_name", impact.IndustryName))
			rowErrs = append(rowErrs, fmt.Errorf("%s: %w", impact.IndustryName, err))
		}
	}
	// Generative rows supersede heuristic ones, including industries the
	// generative answer no longer names.
	if analysis.Source == dto.MacroSourceGenerative {
		removed, err := s.repos.Macro.DeleteBySource(ctx, newsID, string(dto.MacroSourceHeuristic))
		if err != nil {
			rc.Logger.Error("Failed to remove heuristic macro sentiment", logger.ErrorField(err), logger.Int64Field("news_id", newsID))
			rowErrs = append(rowErrs, fmt.Errorf("heuristic rows: %w", err))
		} else if removed > 0 {
			rc.Logger.Info("Removed heuristic macro sentiment",
				logger.Int64Field("news_id", newsID),
				logger.Int64Field("removed", removed))
		}
	}
	if len(rowErrs) > 0 {
		return analysis, fmt.Errorf("failed to save %d of %d macro records: %w", len(rowErrs), len(analysis.Impacts), errors.Join(rowErrs...))
	}
	return analysis, nil
}

func (s *newsAnalysisService) ClassifyArticle(ctx context.Context, newsID int64) (*dto.Classification, error) {
	rc := newRunContext(s.log, s.cfg.Analyzer.ConfidenceThreshold)
	return s.classifyArticle(ctx, rc, newsID)
}

func (s *newsAnalysisService) classifyArticle(ctx context.Context, rc *RunContext, newsID int64) (*dto.Classification, error) {
	article, err := s.loadArticle(ctx, newsID)
	if err != nil {
		return nil, err
	}
	cls := s.classifier.Classify(article.Title, article.Body, s.lexicon(ctx, rc).Stocks)
	if err := s.saveClassification(ctx, newsID, cls); err != nil {
		return nil, err
	}
	return &cls, nil
}

func (s *newsAnalysisService) GetResults(ctx context.Context, newsID int64) (*dto.SentimentResults, error) {
	news, err := s.repos.News.FindByID(ctx, newsID)
	if err != nil {
		return nil, fmt.Errorf("failed to load news %d: %w", newsID, err)
	}
	if news == nil {
		return nil, fmt.Errorf("%w: id %d", ErrNewsNotFound, newsID)
	}

	results := &dto.SentimentResults{
		NewsID:   newsID,
		Entities: make(map[string][]dto.EntitySentimentView),
		Macro:    []dto.MacroImpact{},
	}

	row, err := s.repos.Classification.FindByNewsID(ctx, newsID)
	if err != nil {
		return nil, fmt.Errorf("failed to load classification: %w", err)
	}
	if row != nil {
		category, err := taxonomy.ParseCategory(row.Category)
		if err != nil {
			s.log.Warn("Stored classification has unknown category", logger.ErrorField(err), logger.Int64Field("news_id", newsID))
		}
		results.Classification = &dto.Classification{
			Category:           category,
			Representative:     row.Representative,
			RepresentativeCode: row.RepresentativeCode,
			Score:              row.Score,
		}
	}

	sentiments, err := s.repos.Sentiment.FindByNewsID(ctx, newsID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entity sentiment: %w", err)
	}
	for _, r := range sentiments {
		results.Entities[r.EntityType] = append(results.Entities[r.EntityType], dto.EntitySentimentView{
			EntityName:      r.EntityName,
			EntityCode:      r.EntityCode,
			Sentiment:       r.Sentiment,
			ConfidenceScore: r.ConfidenceScore,
			Reasoning:       r.Reasoning,
			Scorer:          r.Scorer,
			AnalyzedAt:      r.AnalyzedAt,
		})
	}

	macros, err := s.repos.Macro.FindByNewsID(ctx, newsID)
	if err != nil {
		return nil, fmt.Errorf("failed to load macro sentiment: %w", err)
	}
	for _, m := range macros {
		results.Macro = append(results.Macro, dto.MacroImpact{
			IndustryName:  m.IndustryName,
			Sentiment:     m.Sentiment,
			OverallImpact: m.OverallImpact,
			ShortTerm:     m.ShortTerm,
			MediumTerm:    m.MediumTerm,
			LongTerm:      m.LongTerm,
			Reasoning:     m.Reasoning,
			RelatedStocks: m.RelatedStocks,
		})
	}
	return results, nil
}

func hasEntityType(entities []dto.Entity, t taxonomy.EntityType) bool {
	for _, e := range entities {
		if e.Type == t {
			return true
		}
	}
	return false
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
