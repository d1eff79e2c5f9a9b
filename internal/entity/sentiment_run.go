package entity

import (
	"time"

	"gorm.io/datatypes"
)

// SentimentRun is the audit row written for every scorer invocation. It keeps
// the unfiltered results next to the statistics of the run.
type SentimentRun struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	RunID               string         `gorm:"not null;index" json:"run_id"`
	NewsID              int64          `gorm:"not null;index" json:"news_id"`
	Scorer              string         `gorm:"not null" json:"scorer"`
	Degraded            bool           `gorm:"not null" json:"degraded"`
	ConfidenceThreshold float64        `json:"confidence_threshold"`
	TotalAnalyzed       int            `json:"total_analyzed"`
	FilteredCount       int            `json:"filtered_count"`
	ProcessingTimeMs    int64          `json:"processing_time_ms"`
	RawResults          datatypes.JSON `json:"raw_results"`
	ErrorMessage        *string        `json:"error_message,omitempty"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (SentimentRun) TableName() string {
	return "sentiment_runs"
}
