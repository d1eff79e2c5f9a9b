package entity

import (
	"time"
)

// NewsEntity is an entity mentioned by an article, either the classification
// representative or a secondary mention found by extraction.
type NewsEntity struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	NewsID         int64     `gorm:"not null;uniqueIndex:idx_news_entity_key" json:"news_id"`
	EntityType     string    `gorm:"not null;uniqueIndex:idx_news_entity_key" json:"entity_type"`
	EntityName     string    `gorm:"not null;uniqueIndex:idx_news_entity_key" json:"entity_name"`
	EntityCode     *string   `json:"entity_code,omitempty"`
	Provenance     string    `gorm:"not null" json:"provenance"`
	RelevanceScore int       `json:"relevance_score"`
	ExtractedAt    time.Time `json:"extracted_at"`
}

func (NewsEntity) TableName() string {
	return "news_entities"
}
