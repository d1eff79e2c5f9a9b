package repository

import (
	"context"

	"golang-news-analyzer/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntitySentimentRepository stores per-entity sentiment.
type EntitySentimentRepository interface {
	Upsert(ctx context.Context, sentiment *entity.EntitySentiment) error
	FindByNewsID(ctx context.Context, newsID int64) ([]entity.EntitySentiment, error)
	// DeleteByScorer removes the rows of an article last written by scorer.
	DeleteByScorer(ctx context.Context, newsID int64, scorer string) (int64, error)
}

// NewEntitySentimentRepository creates a new instance of EntitySentimentRepository.
func NewEntitySentimentRepository(db *gorm.DB) EntitySentimentRepository {
	return &entitySentimentRepository{db: db}
}

type entitySentimentRepository struct {
	db *gorm.DB
}

// Upsert writes one row; re-analysis of the same entity replaces it.
func (r *entitySentimentRepository) Upsert(ctx context.Context, sentiment *entity.EntitySentiment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "news_id"}, {Name: "entity_type"}, {Name: "entity_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"entity_code", "sentiment", "confidence_score", "reasoning", "scorer", "analyzed_at"}),
	}).Create(sentiment).Error
}

func (r *entitySentimentRepository) FindByNewsID(ctx context.Context, newsID int64) ([]entity.EntitySentiment, error) {
	var rows []entity.EntitySentiment
	err := r.db.WithContext(ctx).
		Where("news_id = ?", newsID).
		Order("entity_type, confidence_score DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *entitySentimentRepository) DeleteByScorer(ctx context.Context, newsID int64, scorer string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("news_id = ? AND scorer = ?", newsID, scorer).
		Delete(&entity.EntitySentiment{})
	return res.RowsAffected, res.Error
}
