package repository

import (
	"context"

	"golang-news-analyzer/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MacroSentimentRepository stores per-industry macro impact.
type MacroSentimentRepository interface {
	Upsert(ctx context.Context, sentiment *entity.MacroSentiment) error
	// FindByNewsID returns rows ordered by absolute overall impact, largest first.
	FindByNewsID(ctx context.Context, newsID int64) ([]entity.MacroSentiment, error)
	CountBySource(ctx context.Context, newsID int64, source string) (int64, error)
	DeleteBySource(ctx context.Context, newsID int64, source string) (int64, error)
}

// NewMacroSentimentRepository creates a new instance of MacroSentimentRepository.
func NewMacroSentimentRepository(db *gorm.DB) MacroSentimentRepository {
	return &macroSentimentRepository{db: db}
}

type macroSentimentRepository struct {
	db *gorm.DB
}

func (r *macroSentimentRepository) Upsert(ctx context.Context, sentiment *entity.MacroSentiment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "news_id"}, {Name: "industry_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sentiment", "overall_impact", "short_term", "medium_term", "long_term",
			"reasoning", "related_stocks", "source", "analyzed_at",
		}),
	}).Create(sentiment).Error
}

func (r *macroSentimentRepository) FindByNewsID(ctx context.Context, newsID int64) ([]entity.MacroSentiment, error) {
	var rows []entity.MacroSentiment
	err := r.db.WithContext(ctx).
		Where("news_id = ?", newsID).
		Order("ABS(overall_impact) DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *macroSentimentRepository) CountBySource(ctx context.Context, newsID int64, source string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.MacroSentiment{}).
		Where("news_id = ? AND source = ?", newsID, source).
		Count(&count).Error
	return count, err
}

func (r *macroSentimentRepository) DeleteBySource(ctx context.Context, newsID int64, source string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("news_id = ? AND source = ?", newsID, source).
		Delete(&entity.MacroSentiment{})
	return res.RowsAffected, res.Error
}
