package entity

import (
	"time"
)

// NewsClassification is the primary category chosen for an article.
type NewsClassification struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	NewsID             int64     `gorm:"uniqueIndex;not null" json:"news_id"`
	Category           string    `gorm:"not null" json:"category"`
	Representative     *string   `json:"representative,omitempty"`
	RepresentativeCode *string   `json:"representative_code,omitempty"`
	Score              int       `gorm:"not null" json:"score"`
	ClassifiedAt       time.Time `json:"classified_at"`
}

func (NewsClassification) TableName() string {
	return "news_classification"
}
