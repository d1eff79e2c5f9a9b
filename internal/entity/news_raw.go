package entity

import (
	"time"
)

// NewsRaw is a crawled article. The crawler owns the table; this service only reads it.
type NewsRaw struct {
	ID      int64      `gorm:"primaryKey" json:"id"`
	Title   string     `gorm:"not null" json:"title"`
	Content string     `json:"content"`
	Date    *time.Time `json:"date,omitempty"`
	URL     string     `gorm:"column:url" json:"url,omitempty"`
}

func (NewsRaw) TableName() string {
	return "news_raw"
}
