package repository

import (
	"context"
	"errors"
	"fmt"

	"golang-news-analyzer/internal/entity"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

// NewsRawRepository reads crawled articles and selects backlogs.
type NewsRawRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.NewsRaw, error)
	// FindUnanalyzedIDs returns articles that still need sentiment analysis,
	// newest first. When requireGenerativeMacro is set, macro articles whose
	// impact came only from the heuristic strategy are selected again.
	FindUnanalyzedIDs(ctx context.Context, limit int, requireGenerativeMacro bool) ([]int64, error)
	FindUnclassifiedIDs(ctx context.Context, limit int) ([]int64, error)
}

// NewNewsRawRepository creates a new instance of NewsRawRepository.
func NewNewsRawRepository(db *gorm.DB) NewsRawRepository {
	return &newsRawRepository{db: db}
}

type newsRawRepository struct {
	db *gorm.DB
}

// FindByID returns nil, nil when the article does not exist.
func (r *newsRawRepository) FindByID(ctx context.Context, id int64) (*entity.NewsRaw, error) {
	var news entity.NewsRaw
	if err := r.db.WithContext(ctx).First(&news, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &news, nil
}

func (r *newsRawRepository) FindUnanalyzedIDs(ctx context.Context, limit int, requireGenerativeMacro bool) ([]int64, error) {
	query, args, err := buildUnanalyzedQuery(limit, requireGenerativeMacro)
	if err != nil {
		return nil, fmt.Errorf("failed to build unanalyzed query: %w", err)
	}
	var ids []int64
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *newsRawRepository) FindUnclassifiedIDs(ctx context.Context, limit int) ([]int64, error) {
	query, args, err := buildUnclassifiedQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build unclassified query: %w", err)
	}
	var ids []int64
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Queries keep "?" placeholders; gorm rebinds them for postgres.
func buildUnanalyzedQuery(limit int, requireGenerativeMacro bool) (string, []interface{}, error) {
	pending := sq.Or{
		sq.Expr("NOT EXISTS (SELECT 1 FROM sentiment_runs r WHERE r.news_id = n.id AND r.degraded = ? AND r.error_message IS NULL)", false),
	}
	if requireGenerativeMacro {
		pending = append(pending, sq.And{
			sq.Eq{"c.category": "macro"},
			sq.Expr("NOT EXISTS (SELECT 1 FROM macro_sentiment_analysis m WHERE m.news_id = n.id AND m.source = ?)", "generative"),
		})
	}

	return sq.Select("n.id").
		From("news_raw n").
		LeftJoin("news_classification c ON c.news_id = n.id").
		Where(sq.Or{sq.Eq{"c.category": nil}, sq.NotEq{"c.category": "other"}}).
		Where(pending).
		OrderBy("n.date DESC NULLS LAST", "n.id DESC").
		Limit(uint64(limit)).
		ToSql()
}

func buildUnclassifiedQuery(limit int) (string, []interface{}, error) {
	return sq.Select("n.id").
		From("news_raw n").
		Where("NOT EXISTS (SELECT 1 FROM news_classification c WHERE c.news_id = n.id)").
		OrderBy("n.id DESC").
		Limit(uint64(limit)).
		ToSql()
}
