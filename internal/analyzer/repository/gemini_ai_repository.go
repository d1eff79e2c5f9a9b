package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-news-analyzer/internal/analyzer/config"
	"golang-news-analyzer/pkg/logger"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ErrEmptyGeneration is returned when the model produced no text.
var ErrEmptyGeneration = errors.New("generative model returned no text")

// geminiAIRepository is an implementation of GenerativeAIRepository that uses the Google Gemini API.
type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (GenerativeAIRepository, error) {
	if genAiClient == nil {
		return nil, errors.New("gemini client is required")
	}
	if cfg.Gemini.MaxRequestPerMinute <= 0 {
		return nil, fmt.Errorf("invalid gemini max_request_per_minute: %d", cfg.Gemini.MaxRequestPerMinute)
	}
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		genAiClient:    genAiClient,
	}, nil
}

// GenerateText sends prompt to Gemini and returns the text of the reply.
func (r *geminiAIRepository) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Gemini.Timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(r.cfg.Gemini.Temperature),
	}

	start := time.Now()
	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, genCfg)
	if err != nil {
		r.logger.Error("Failed to call Gemini API", logger.ErrorField(err), logger.StringField("model", r.cfg.Gemini.Model))
		return "", fmt.Errorf("failed to call Gemini API: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	r.logger.Debug("Gemini response received",
		logger.StringField("model", r.cfg.Gemini.Model),
		logger.DurationField("elapsed", time.Since(start)),
		logger.IntField("length", len(text)),
	)
	if text == "" {
		return "", ErrEmptyGeneration
	}
	return text, nil
}
