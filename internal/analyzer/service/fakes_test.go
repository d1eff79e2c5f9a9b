package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang-news-analyzer/internal/analyzer/config"
	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/internal/analyzer/repository"
	"golang-news-analyzer/internal/analyzer/strategy"
	"golang-news-analyzer/internal/analyzer/taxonomy"
	"golang-news-analyzer/internal/entity"
	"golang-news-analyzer/pkg/logger"
)

type fakeNewsRepo struct {
	mu           sync.Mutex
	news         map[int64]*entity.NewsRaw
	unanalyzed   []int64
	unclassified []int64
}

func newFakeNewsRepo(news ...entity.NewsRaw) *fakeNewsRepo {
	r := &fakeNewsRepo{news: make(map[int64]*entity.NewsRaw)}
	for i := range news {
		n := news[i]
		r.news[n.ID] = &n
	}
	return r
}

func (r *fakeNewsRepo) FindByID(_ context.Context, id int64) (*entity.NewsRaw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.news[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNewsRepo) FindUnanalyzedIDs(_ context.Context, limit int, _ bool) ([]int64, error) {
	return limitIDs(r.unanalyzed, limit), nil
}

func (r *fakeNewsRepo) FindUnclassifiedIDs(_ context.Context, limit int) ([]int64, error) {
	return limitIDs(r.unclassified, limit), nil
}

func limitIDs(ids []int64, limit int) []int64 {
	if len(ids) > limit {
		return ids[:limit]
	}
	return ids
}

type fakeClassificationRepo struct {
	mu   sync.Mutex
	rows map[int64]entity.NewsClassification
}

func (r *fakeClassificationRepo) Upsert(_ context.Context, c *entity.NewsClassification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[c.NewsID] = *c
	return nil
}

func (r *fakeClassificationRepo) FindByNewsID(_ context.Context, newsID int64) (*entity.NewsClassification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[newsID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

type fakeEntityRepo struct {
	mu   sync.Mutex
	rows map[int64][]entity.NewsEntity
}

func (r *fakeEntityRepo) ReplaceForNews(_ context.Context, newsID int64, entities []entity.NewsEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[newsID] = append([]entity.NewsEntity(nil), entities...)
	return nil
}

func (r *fakeEntityRepo) FindByNewsID(_ context.Context, newsID int64) ([]entity.NewsEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[newsID], nil
}

type sentimentKey struct {
	newsID     int64
	entityType string
	entityName string
}

type fakeSentimentRepo struct {
	mu       sync.Mutex
	rows     map[sentimentKey]entity.EntitySentiment
	failName string
}

func (r *fakeSentimentRepo) Upsert(_ context.Context, s *entity.EntitySentiment) error {
	if s.EntityName == r.failName {
		return errors.New("connection reset")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[sentimentKey{s.NewsID, s.EntityType, s.EntityName}] = *s
	return nil
}

func (r *fakeSentimentRepo) FindByNewsID(_ context.Context, newsID int64) ([]entity.EntitySentiment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []entity.EntitySentiment
	for k, v := range r.rows {
		if k.newsID == newsID {
			rows = append(rows, v)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].EntityName < rows[j].EntityName })
	return rows, nil
}

func (r *fakeSentimentRepo) DeleteByScorer(_ context.Context, newsID int64, scorer string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, v := range r.rows {
		if k.newsID == newsID && v.Scorer == scorer {
			delete(r.rows, k)
			n++
		}
	}
	return n, nil
}

func (r *fakeSentimentRepo) forNews(newsID int64) []entity.EntitySentiment {
	rows, _ := r.FindByNewsID(context.Background(), newsID)
	return rows
}

type macroKey struct {
	newsID   int64
	industry string
}

type fakeMacroRepo struct {
	mu   sync.Mutex
	rows map[macroKey]entity.MacroSentiment
}

func (r *fakeMacroRepo) Upsert(_ context.Context, m *entity.MacroSentiment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[macroKey{m.NewsID, m.IndustryName}] = *m
	return nil
}

func (r *fakeMacroRepo) FindByNewsID(_ context.Context, newsID int64) ([]entity.MacroSentiment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []entity.MacroSentiment
	for k, v := range r.rows {
		if k.newsID == newsID {
			rows = append(rows, v)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return abs(rows[i].OverallImpact) > abs(rows[j].OverallImpact) })
	return rows, nil
}

func (r *fakeMacroRepo) CountBySource(_ context.Context, newsID int64, source string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, v := range r.rows {
		if k.newsID == newsID && v.Source == source {
			n++
		}
	}
	return n, nil
}

func (r *fakeMacroRepo) DeleteBySource(_ context.Context, newsID int64, source string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, v := range r.rows {
		if k.newsID == newsID && v.Source == source {
			delete(r.rows, k)
			n++
		}
	}
	return n, nil
}

func (r *fakeMacroRepo) forNews(newsID int64) []entity.MacroSentiment {
	rows, _ := r.FindByNewsID(context.Background(), newsID)
	return rows
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

type fakeRunRepo struct {
	mu   sync.Mutex
	runs []entity.SentimentRun
}

func (r *fakeRunRepo) Create(_ context.Context, run *entity.SentimentRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, *run)
	return nil
}

func (r *fakeRunRepo) HasCompletedRun(_ context.Context, newsID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, run := range r.runs {
		if run.NewsID == newsID && !run.Degraded && run.ErrorMessage == nil {
			return true, nil
		}
	}
	return false, nil
}

type fakeLexiconRepo struct {
	lexicon     taxonomy.Lexicon
	err         error
	invalidated int
}

func (r *fakeLexiconRepo) Load(context.Context) (taxonomy.Lexicon, error) {
	return r.lexicon, r.err
}

func (r *fakeLexiconRepo) Invalidate() {
	r.invalidated++
}

// fakeScorerRepo answers like the remote scorer: every submitted entity
// gets the configured confidence, 70 by default.
type fakeScorerRepo struct {
	mu          sync.Mutex
	healthy     bool
	confidences map[string]float64
	submitted   [][]dto.ScorerEntity
}

func (r *fakeScorerRepo) Health(context.Context) (*dto.ScorerHealth, error) {
	if !r.healthy {
		return &dto.ScorerHealth{Status: "unhealthy"}, nil
	}
	return &dto.ScorerHealth{Status: "healthy", ModelLoaded: true}, nil
}

func (r *fakeScorerRepo) Analyze(_ context.Context, req dto.ScorerAnalyzeRequest) (*dto.ScorerAnalyzeResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = append(r.submitted, req.Entities)

	resp := &dto.ScorerAnalyzeResponse{Success: true}
	for _, e := range req.Entities {
		confidence, ok := r.confidences[e.Name]
		if !ok {
			confidence = 70
		}
		resp.Results = append(resp.Results, dto.ScorerResult{
			EntityName:      e.Name,
			EntityType:      e.Type,
			Sentiment:       "+",
			ConfidenceScore: confidence,
		})
	}
	return resp, nil
}

func (r *fakeScorerRepo) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.submitted)
}

// fakeGenerativeAI answers after delay unless ctx ends first.
type fakeGenerativeAI struct {
	text  string
	err   error
	delay time.Duration
}

func (f *fakeGenerativeAI) GenerateText(ctx context.Context, _ string) (string, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.text, f.err
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) SendMessage(text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

var (
	_ repository.NewsRawRepository            = (*fakeNewsRepo)(nil)
	_ repository.NewsClassificationRepository = (*fakeClassificationRepo)(nil)
	_ repository.NewsEntityRepository         = (*fakeEntityRepo)(nil)
	_ repository.EntitySentimentRepository    = (*fakeSentimentRepo)(nil)
	_ repository.MacroSentimentRepository     = (*fakeMacroRepo)(nil)
	_ repository.SentimentRunRepository       = (*fakeRunRepo)(nil)
	_ repository.LexiconRepository            = (*fakeLexiconRepo)(nil)
	_ repository.SentimentScorerRepository    = (*fakeScorerRepo)(nil)
	_ repository.GenerativeAIRepository       = (*fakeGenerativeAI)(nil)
)

type testHarness struct {
	news           *fakeNewsRepo
	classification *fakeClassificationRepo
	entities       *fakeEntityRepo
	sentiment      *fakeSentimentRepo
	macro          *fakeMacroRepo
	runs           *fakeRunRepo
	lexicon        *fakeLexiconRepo
	scorer         *fakeScorerRepo
	notifier       *fakeNotifier
	cfg            *config.Config
	service        NewsAnalysisService
}

func testLexicon() taxonomy.Lexicon {
	return taxonomy.Lexicon{
		Stocks: []taxonomy.StockRef{
			{Code: "005930", Name: "삼성전자"},
			{Code: "000660", Name: "SK하이닉스"},
			{Code: "035420", Name: "NAVER"},
		},
		Themes:     []string{"HBM(고대역폭메모리)", "2차전지"},
		Industries: []string{"반도체", "은행"},
	}
}

// newTestHarness wires the real classifier, extractor and scorers over
// in-memory stores. ai may be nil to run without a generative service.
func newTestHarness(news []entity.NewsRaw, ai repository.GenerativeAIRepository) *testHarness {
	h := &testHarness{
		news:           newFakeNewsRepo(news...),
		classification: &fakeClassificationRepo{rows: make(map[int64]entity.NewsClassification)},
		entities:       &fakeEntityRepo{rows: make(map[int64][]entity.NewsEntity)},
		sentiment:      &fakeSentimentRepo{rows: make(map[sentimentKey]entity.EntitySentiment)},
		macro:          &fakeMacroRepo{rows: make(map[macroKey]entity.MacroSentiment)},
		runs:           &fakeRunRepo{},
		lexicon:        &fakeLexiconRepo{lexicon: testLexicon()},
		scorer:         &fakeScorerRepo{healthy: true, confidences: map[string]float64{}},
		notifier:       &fakeNotifier{},
		cfg: &config.Config{
			Analyzer: config.Analyzer{
				ClassificationThreshold: 3,
				RelevanceThreshold:      60,
				OccurrenceWeight:        20,
				ConfidenceThreshold:     55,
			},
			Batch: config.Batch{DefaultLimit: 50, Concurrency: 2, ArticlesPerMinute: 600000},
		},
	}

	log := logger.NewNop()
	remote := strategy.NewRemoteScorer(h.scorer, strategy.RemoteScorerConfig{MaxAttempts: 2}, log)
	scorer := strategy.NewResilientScorer(remote, strategy.NewFallbackScorer(50), log)

	var generative strategy.MacroImpactStrategy
	if ai != nil {
		generative = strategy.NewGenerativeMacroStrategy(ai, log)
	}
	macroAnalyzer := NewMacroImpactAnalyzer(generative, strategy.NewHeuristicMacroStrategy(), log)

	h.service = NewNewsAnalysisService(
		h.cfg,
		log,
		Repositories{
			News:           h.news,
			Classification: h.classification,
			Entity:         h.entities,
			Sentiment:      h.sentiment,
			Macro:          h.macro,
			Run:            h.runs,
			Lexicon:        h.lexicon,
		},
		NewClassifier(taxonomy.Default(), h.cfg.Analyzer.ClassificationThreshold),
		NewEntityExtractor(h.cfg.Analyzer.RelevanceThreshold, h.cfg.Analyzer.OccurrenceWeight),
		scorer,
		macroAnalyzer,
		h.notifier,
	)
	return h
}
