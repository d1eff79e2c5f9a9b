package app

import (
	"context"
	"fmt"

	"golang-news-analyzer/internal/analyzer/config"
	"golang-news-analyzer/internal/analyzer/repository"
	"golang-news-analyzer/internal/analyzer/service"
	"golang-news-analyzer/internal/analyzer/strategy"
	"golang-news-analyzer/internal/analyzer/taxonomy"
	"golang-news-analyzer/pkg/common"
	"golang-news-analyzer/pkg/logger"
	"golang-news-analyzer/pkg/postgres"
	"golang-news-analyzer/pkg/redis"
	"golang-news-analyzer/pkg/telegram"
	"golang-news-analyzer/pkg/trace"

	"google.golang.org/genai"
)

// Options selects the optional collaborators a binary needs.
type Options struct {
	// Redis connects to Redis and builds the stream service.
	Redis bool
}

// App holds the wired analyzer components shared by the service and the CLI.
type App struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              *postgres.DB
	Redis           *redis.Client
	ScorerRepo      repository.SentimentScorerRepository
	Telegram        telegram.Notifier
	GenerativeMacro bool
	AnalysisService service.NewsAnalysisService
	StreamService   service.NewsAnalysisStreamService

	tracer *trace.Provider
}

// New connects to the stores and wires the pipeline.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Logger: log}

	tracer, err := trace.Init(trace.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     cfg.App.Version,
		PrettyPrint: cfg.Tracing.PrettyPrint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracer = tracer

	tax, err := taxonomy.Load(cfg.Analyzer.TaxonomyPath)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.DB = db

	if opts.Redis {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.Redis = redisClient
		if err := redisClient.EnsureGroup(ctx, common.RedisStreamNewsAnalysis, common.RedisStreamGroup); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("failed to create consumer group: %w", err)
		}
	}

	if cfg.Telegram.Enabled {
		a.Telegram, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("failed to initialize telegram notifier: %w", err)
		}
	} else {
		a.Telegram = telegram.NewNopNotifier()
	}

	var generative strategy.MacroImpactStrategy
	if cfg.Gemini.APIKey != "" {
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		aiRepo, err := repository.NewGeminiAIRepository(cfg, log, genAiClient)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		generative = strategy.NewGenerativeMacroStrategy(aiRepo, log)
		a.GenerativeMacro = true
	} else {
		log.Info("Gemini API key not set, macro impact uses the heuristic strategy")
	}

	a.ScorerRepo = repository.NewSentimentScorerRepository(cfg.SentimentScorer.BaseURL, cfg.SentimentScorer.Timeout, log)
	remote := strategy.NewRemoteScorer(a.ScorerRepo, strategy.RemoteScorerConfig{
		MaxAttempts: cfg.SentimentScorer.MaxAttempts,
		RetryDelay:  cfg.SentimentScorer.RetryDelay,
		MaxBackoff:  cfg.SentimentScorer.MaxBackoff,
	}, log)
	scorer := strategy.NewResilientScorer(remote, strategy.NewFallbackScorer(cfg.SentimentScorer.FallbackConfidence), log)

	repos := service.Repositories{
		News:           repository.NewNewsRawRepository(db.DB),
		Classification: repository.NewNewsClassificationRepository(db.DB),
		Entity:         repository.NewNewsEntityRepository(db.DB),
		Sentiment:      repository.NewEntitySentimentRepository(db.DB),
		Macro:          repository.NewMacroSentimentRepository(db.DB),
		Run:            repository.NewSentimentRunRepository(db.DB),
		Lexicon:        repository.NewLexiconRepository(db.DB, cfg.Analyzer.LexiconCacheTTL),
	}

	a.AnalysisService = service.NewNewsAnalysisService(
		cfg,
		log,
		repos,
		service.NewClassifier(tax, cfg.Analyzer.ClassificationThreshold),
		service.NewEntityExtractor(cfg.Analyzer.RelevanceThreshold, cfg.Analyzer.OccurrenceWeight),
		scorer,
		service.NewMacroImpactAnalyzer(generative, strategy.NewHeuristicMacroStrategy(), log),
		a.Telegram,
	)
	if a.Redis != nil {
		a.StreamService = service.NewNewsAnalysisStreamService(cfg, log, a.Redis.Client, repos.News, a.AnalysisService, a.GenerativeMacro, a.Telegram)
	}
	return a, nil
}

// Close releases connections and flushes pending spans.
func (a *App) Close(ctx context.Context) {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("Failed to close redis", logger.ErrorField(err))
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.Logger.Warn("Failed to flush traces", logger.ErrorField(err))
	}
}
