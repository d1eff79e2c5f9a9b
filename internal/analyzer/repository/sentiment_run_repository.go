package repository

import (
	"context"

	"golang-news-analyzer/internal/entity"

	"gorm.io/gorm"
)

// SentimentRunRepository stores the audit trail of scorer invocations.
type SentimentRunRepository interface {
	Create(ctx context.Context, run *entity.SentimentRun) error
	// HasCompletedRun reports whether a non-degraded run that persisted all
	// of its records exists for the article.
	HasCompletedRun(ctx context.Context, newsID int64) (bool, error)
}

// NewSentimentRunRepository creates a new instance of SentimentRunRepository.
func NewSentimentRunRepository(db *gorm.DB) SentimentRunRepository {
	return &sentimentRunRepository{db: db}
}

type sentimentRunRepository struct {
	db *gorm.DB
}

func (r *sentimentRunRepository) Create(ctx context.Context, run *entity.SentimentRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *sentimentRunRepository) HasCompletedRun(ctx context.Context, newsID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.SentimentRun{}).
		Where("news_id = ? AND degraded = ? AND error_message IS NULL", newsID, false).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
