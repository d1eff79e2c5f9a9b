package repository

import (
	"context"
	"errors"

	"golang-news-analyzer/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewsClassificationRepository stores the primary classification of articles.
type NewsClassificationRepository interface {
	Upsert(ctx context.Context, classification *entity.NewsClassification) error
	FindByNewsID(ctx context.Context, newsID int64) (*entity.NewsClassification, error)
}

// NewNewsClassificationRepository creates a new instance of NewsClassificationRepository.
func NewNewsClassificationRepository(db *gorm.DB) NewsClassificationRepository {
	return &newsClassificationRepository{db: db}
}

type newsClassificationRepository struct {
	db *gorm.DB
}

// Upsert replaces any earlier classification of the same article.
func (r *newsClassificationRepository) Upsert(ctx context.Context, classification *entity.NewsClassification) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "news_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"category", "representative", "representative_code", "score", "classified_at"}),
	}).Create(classification).Error
}

func (r *newsClassificationRepository) FindByNewsID(ctx context.Context, newsID int64) (*entity.NewsClassification, error) {
	var classification entity.NewsClassification
	if err := r.db.WithContext(ctx).Where("news_id = ?", newsID).First(&classification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &classification, nil
}
