package repository

import (
	"context"
	"fmt"
	"time"

	"golang-news-analyzer/internal/analyzer/taxonomy"
	"golang-news-analyzer/internal/entity"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

const lexiconCacheKey = "lexicon"

// LexiconRepository loads the roster of known entity names.
type LexiconRepository interface {
	Load(ctx context.Context) (taxonomy.Lexicon, error)
	Invalidate()
}

// NewLexiconRepository creates a LexiconRepository that caches the lexicon for ttl.
func NewLexiconRepository(db *gorm.DB, ttl time.Duration) LexiconRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &lexiconRepository{
		db:            db,
		inmemoryCache: cache.New(ttl, 2*ttl),
	}
}

type lexiconRepository struct {
	db            *gorm.DB
	inmemoryCache *cache.Cache
}

func (r *lexiconRepository) Load(ctx context.Context) (taxonomy.Lexicon, error) {
	if cached, ok := r.inmemoryCache.Get(lexiconCacheKey); ok {
		return cached.(taxonomy.Lexicon), nil
	}

	var stocks []entity.Stock
	if err := r.db.WithContext(ctx).Select("stock_code", "stock_name").Order("stock_code").Find(&stocks).Error; err != nil {
		return taxonomy.Lexicon{}, fmt.Errorf("failed to load stocks: %w", err)
	}
	var themes []entity.ThemeInfo
	if err := r.db.WithContext(ctx).Order("theme_name").Find(&themes).Error; err != nil {
		return taxonomy.Lexicon{}, fmt.Errorf("failed to load themes: %w", err)
	}
	var industries []entity.IndustryInfo
	if err := r.db.WithContext(ctx).Order("industry_name").Find(&industries).Error; err != nil {
		return taxonomy.Lexicon{}, fmt.Errorf("failed to load industries: %w", err)
	}

	lexicon := buildLexicon(stocks, themes, industries)
	r.inmemoryCache.SetDefault(lexiconCacheKey, lexicon)
	return lexicon, nil
}

func (r *lexiconRepository) Invalidate() {
	r.inmemoryCache.Delete(lexiconCacheKey)
}

// buildLexicon drops blank and duplicate names.
func buildLexicon(stocks []entity.Stock, themes []entity.ThemeInfo, industries []entity.IndustryInfo) taxonomy.Lexicon {
	lexicon := taxonomy.Lexicon{
		Stocks:     make([]taxonomy.StockRef, 0, len(stocks)),
		Themes:     make([]string, 0, len(themes)),
		Industries: make([]string, 0, len(industries)),
	}

	seenStocks := make(map[string]struct{}, len(stocks))
	for _, s := range stocks {
		if s.StockName == "" {
			continue
		}
		if _, ok := seenStocks[s.StockName]; ok {
			continue
		}
		seenStocks[s.StockName] = struct{}{}
		lexicon.Stocks = append(lexicon.Stocks, taxonomy.StockRef{Code: s.StockCode, Name: s.StockName})
	}

	seen := make(map[string]struct{}, len(themes))
	for _, t := range themes {
		if t.ThemeName == "" {
			continue
		}
		if _, ok := seen[t.ThemeName]; ok {
			continue
		}
		seen[t.ThemeName] = struct{}{}
		lexicon.Themes = append(lexicon.Themes, t.ThemeName)
	}

	seen = make(map[string]struct{}, len(industries))
	for _, i := range industries {
		if i.IndustryName == "" {
			continue
		}
		if _, ok := seen[i.IndustryName]; ok {
			continue
		}
		seen[i.IndustryName] = struct{}{}
		lexicon.Industries = append(lexicon.Industries, i.IndustryName)
	}

	return lexicon
}
