package dto

import (
	"strings"
	"time"

	"golang-news-analyzer/internal/analyzer/taxonomy"
)

// Sentiment is the polarity assigned to an entity.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// NormalizeSentiment maps scorer labels ("+", "-", "0", words) onto Sentiment.
func NormalizeSentiment(label string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "+", "positive", "pos", "긍정":
		return SentimentPositive
	case "-", "negative", "neg", "부정":
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// SentimentResult is the sentiment of a single entity.
type SentimentResult struct {
	EntityType      taxonomy.EntityType `json:"entity_type"`
	EntityName      string              `json:"entity_name"`
	EntityCode      string              `json:"entity_code,omitempty"`
	Sentiment       Sentiment           `json:"sentiment"`
	ConfidenceScore float64             `json:"confidence_score"`
	Reasoning       string              `json:"reasoning"`
}

// BatchStats describes one scorer invocation.
type BatchStats struct {
	TotalAnalyzed       int       `json:"total_analyzed"`
	FilteredCount       int       `json:"filtered_count"`
	ProcessingTimeMs    int64     `json:"processing_time_ms"`
	ConfidenceThreshold float64   `json:"confidence_threshold"`
	Timestamp           time.Time `json:"timestamp"`
}

// BatchResult is the outcome of scoring every entity of one article.
// Results holds only records at or above the threshold; RawResults holds
// everything the scorer returned.
type BatchResult struct {
	Scorer     string            `json:"scorer"`
	Degraded   bool              `json:"degraded"`
	Results    []SentimentResult `json:"results"`
	RawResults []SentimentResult `json:"raw_results"`
	Stats      BatchStats        `json:"stats"`
	// Cause is set when a degraded result replaced a failed primary scorer.
	Cause string `json:"cause,omitempty"`
}
