package entity

import (
	"time"

	"github.com/lib/pq"
)

// MacroSentiment is the expected impact of a macro article on one industry.
type MacroSentiment struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	NewsID        int64          `gorm:"not null;uniqueIndex:idx_macro_sentiment_key" json:"news_id"`
	IndustryName  string         `gorm:"not null;uniqueIndex:idx_macro_sentiment_key" json:"industry_name"`
	Sentiment     string         `gorm:"not null" json:"sentiment"`
	OverallImpact float64        `json:"overall_impact"`
	ShortTerm     float64        `json:"short_term"`
	MediumTerm    float64        `json:"medium_term"`
	LongTerm      float64        `json:"long_term"`
	Reasoning     string         `json:"reasoning"`
	RelatedStocks pq.StringArray `gorm:"type:text[]" json:"related_stocks"`
	Source        string         `gorm:"not null" json:"source"`
	AnalyzedAt    time.Time      `json:"analyzed_at"`
}

func (MacroSentiment) TableName() string {
	return "macro_sentiment_analysis"
}
