package strategy

import (
	"context"

	"golang-news-analyzer/internal/analyzer/dto"

	"github.com/stretchr/testify/mock"
)

type mockScorerRepository struct {
	mock.Mock
}

func (m *mockScorerRepository) Health(ctx context.Context) (*dto.ScorerHealth, error) {
	args := m.Called(ctx)
	if h := args.Get(0); h != nil {
		return h.(*dto.ScorerHealth), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockScorerRepository) Analyze(ctx context.Context, req dto.ScorerAnalyzeRequest) (*dto.ScorerAnalyzeResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*dto.ScorerAnalyzeResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockGenerativeAI struct {
	mock.Mock
}

func (m *mockGenerativeAI) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type stubScorer struct {
	name   string
	result *dto.BatchResult
	err    error
	calls  int
}

func (s *stubScorer) Name() string { return s.name }

func (s *stubScorer) Score(_ context.Context, _ []dto.Entity, _ string, _ float64) (*dto.BatchResult, error) {
	s.calls++
	return s.result, s.err
}
