package entity

import (
	"time"
)

// EntitySentiment is the sentiment of one entity within one article.
type EntitySentiment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	NewsID          int64     `gorm:"not null;uniqueIndex:idx_entity_sentiment_key" json:"news_id"`
	EntityType      string    `gorm:"not null;uniqueIndex:idx_entity_sentiment_key" json:"entity_type"`
	EntityName      string    `gorm:"not null;uniqueIndex:idx_entity_sentiment_key" json:"entity_name"`
	EntityCode      *string   `json:"entity_code,omitempty"`
	Sentiment       string    `gorm:"not null" json:"sentiment"`
	ConfidenceScore float64   `gorm:"not null" json:"confidence_score"`
	Reasoning       string    `json:"reasoning"`
	Scorer          string    `gorm:"not null" json:"scorer"`
	AnalyzedAt      time.Time `json:"analyzed_at"`
}

func (EntitySentiment) TableName() string {
	return "entity_sentiment_analysis"
}
