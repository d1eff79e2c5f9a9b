package repository

import (
	"context"
	"fmt"

	"golang-news-analyzer/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewsEntityRepository stores the entities found in articles.
type NewsEntityRepository interface {
	// ReplaceForNews makes the stored entity set of an article equal to entities.
	ReplaceForNews(ctx context.Context, newsID int64, entities []entity.NewsEntity) error
	FindByNewsID(ctx context.Context, newsID int64) ([]entity.NewsEntity, error)
}

// NewNewsEntityRepository creates a new instance of NewsEntityRepository.
func NewNewsEntityRepository(db *gorm.DB) NewsEntityRepository {
	return &newsEntityRepository{db: db}
}

type newsEntityRepository struct {
	db *gorm.DB
}

func (r *newsEntityRepository) ReplaceForNews(ctx context.Context, newsID int64, entities []entity.NewsEntity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("news_id = ?", newsID).Delete(&entity.NewsEntity{}).Error; err != nil {
			return fmt.Errorf("delete news_entities error: %w", err)
		}
		if len(entities) == 0 {
			return nil
		}
		for i := range entities {
			entities[i].NewsID = newsID
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "news_id"}, {Name: "entity_type"}, {Name: "entity_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"entity_code", "provenance", "relevance_score", "extracted_at"}),
		}).Create(&entities).Error
		if err != nil {
			return fmt.Errorf("insert news_entities error: %w", err)
		}
		return nil
	})
}

func (r *newsEntityRepository) FindByNewsID(ctx context.Context, newsID int64) ([]entity.NewsEntity, error) {
	var entities []entity.NewsEntity
	if err := r.db.WithContext(ctx).Where("news_id = ?", newsID).Order("relevance_score DESC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}
