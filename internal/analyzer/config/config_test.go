package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  name: test-analyzer\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-analyzer", cfg.App.Name)
	assert.Equal(t, 3, cfg.Analyzer.ClassificationThreshold)
	assert.Equal(t, 60, cfg.Analyzer.RelevanceThreshold)
	assert.Equal(t, 20, cfg.Analyzer.OccurrenceWeight)
	assert.Equal(t, 55.0, cfg.Analyzer.ConfidenceThreshold)
	assert.Equal(t, "http://127.0.0.1:5555", cfg.SentimentScorer.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.SentimentScorer.Timeout)
	assert.Equal(t, 2, cfg.SentimentScorer.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.SentimentScorer.RetryDelay)
	assert.Equal(t, 50.0, cfg.SentimentScorer.FallbackConfidence)
	assert.Equal(t, 50, cfg.Batch.DefaultLimit)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
analyzer:
  relevance_threshold: 40
sentiment_scorer:
  base_url: http://scorer:5555
  max_attempts: 3
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Analyzer.RelevanceThreshold)
	assert.Equal(t, "http://scorer:5555", cfg.SentimentScorer.BaseURL)
	assert.Equal(t, 3, cfg.SentimentScorer.MaxAttempts)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
analyzer:
  relevance_threshold: 140
`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_TelegramRequiresToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  enabled: true
`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
