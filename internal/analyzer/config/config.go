package config

import (
	"fmt"
	"time"

	"golang-news-analyzer/pkg/config"

	"github.com/go-playground/validator/v10"
)

// Analyzer holds pipeline tuning and stream settings.
type Analyzer struct {
	MaxConcurrentTasks int    `mapstructure:"max_concurrent_tasks" validate:"gte=1"`
	TaxonomyPath       string `mapstructure:"taxonomy_path"`

	ClassificationThreshold int     `mapstructure:"classification_threshold" validate:"gte=1"`
	RelevanceThreshold      int     `mapstructure:"relevance_threshold" validate:"gte=0,lte=100"`
	OccurrenceWeight        int     `mapstructure:"occurrence_weight" validate:"gt=0"`
	ConfidenceThreshold     float64 `mapstructure:"confidence_threshold" validate:"gte=0,lte=100"`

	LexiconCacheTTL time.Duration `mapstructure:"lexicon_cache_ttl"`

	RedisStreamNewsAnalysisTimeout         time.Duration `mapstructure:"redis_stream_news_analysis_timeout" validate:"gt=0"`
	RedisStreamNewsAnalysisRetryInterval   time.Duration `mapstructure:"redis_stream_news_analysis_retry_interval" validate:"gt=0"`
	RedisStreamNewsAnalysisMaxIdleDuration time.Duration `mapstructure:"redis_stream_news_analysis_max_idle_duration" validate:"gt=0"`
	RedisStreamNewsAnalysisMaxRetry        int           `mapstructure:"redis_stream_news_analysis_max_retry" validate:"gte=1"`
}

// Batch holds backlog processing settings.
type Batch struct {
	DefaultLimit      int `mapstructure:"default_limit" validate:"gte=1"`
	Concurrency       int `mapstructure:"concurrency" validate:"gte=1"`
	ArticlesPerMinute int `mapstructure:"articles_per_minute" validate:"gte=1"`
}

// SentimentScorer holds the configuration for the remote sentiment scorer.
type SentimentScorer struct {
	BaseURL            string        `mapstructure:"base_url" validate:"required,url"`
	Timeout            time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxAttempts        int           `mapstructure:"max_attempts" validate:"gte=1,lte=5"`
	RetryDelay         time.Duration `mapstructure:"retry_delay"`
	MaxBackoff         time.Duration `mapstructure:"max_backoff"`
	FallbackConfidence float64       `mapstructure:"fallback_confidence" validate:"gte=0,lte=100"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute" validate:"gte=1"`
	Timeout             time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Temperature         float32       `mapstructure:"temperature"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token" validate:"required_if=Enabled true"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the analyzer service.
type Config struct {
	App             config.App      `mapstructure:"app"`
	Logger          config.Logger   `mapstructure:"logger"`
	Database        config.Database `mapstructure:"database"`
	Redis           config.Redis    `mapstructure:"redis"`
	API             config.API      `mapstructure:"api"`
	Tracing         config.Tracing  `mapstructure:"tracing"`
	Analyzer        Analyzer        `mapstructure:"analyzer"`
	Batch           Batch           `mapstructure:"batch"`
	SentimentScorer SentimentScorer `mapstructure:"sentiment_scorer"`
	Gemini          Gemini          `mapstructure:"gemini"`
	Telegram        Telegram        `mapstructure:"telegram"`
}

// Defaults returns the values used when neither the file nor the environment sets a key.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":     "news-analyzer",
		"logger.level": "info",
		"api.port":     8080,

		"analyzer.max_concurrent_tasks":                         2,
		"analyzer.classification_threshold":                     3,
		"analyzer.relevance_threshold":                          60,
		"analyzer.occurrence_weight":                            20,
		"analyzer.confidence_threshold":                         55,
		"analyzer.lexicon_cache_ttl":                            "10m",
		"analyzer.redis_stream_news_analysis_timeout":           "3m",
		"analyzer.redis_stream_news_analysis_retry_interval":    "1m",
		"analyzer.redis_stream_news_analysis_max_idle_duration": "5m",
		"analyzer.redis_stream_news_analysis_max_retry":         3,

		"batch.default_limit":       50,
		"batch.concurrency":         1,
		"batch.articles_per_minute": 12,

		"sentiment_scorer.base_url":            "http://127.0.0.1:5555",
		"sentiment_scorer.timeout":             "30s",
		"sentiment_scorer.max_attempts":        2,
		"sentiment_scorer.retry_delay":         "2s",
		"sentiment_scorer.max_backoff":         "30s",
		"sentiment_scorer.fallback_confidence": 50,

		"gemini.model":                  "gemini-2.0-flash",
		"gemini.max_request_per_minute": 10,
		"gemini.timeout":                "90s",
		"gemini.temperature":            0.3,
	}
}

// Load loads the analyzer configuration from the given path and validates it.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.LoadWithDefaults(path, Defaults(), &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
