package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/internal/analyzer/strategy"
	"golang-news-analyzer/internal/analyzer/taxonomy"
	"golang-news-analyzer/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stockNewsID int64 = 1
	macroNewsID int64 = 2
	otherNewsID int64 = 3
)

const macroResponse = `분석 결과는 다음과 같습니다.
{"industries": [
  {"name": "은행", "sentiment": "+", "overall_impact": 2.5, "short_term": 1, "medium_term": 2, "long_term": 3,
   "reasoning": "예대마진 개선이 예상됨.", "related_stocks": ["KB금융지주"]},
  {"name": "건설", "sentiment": "-", "overall_impact": -3, "short_term": -1, "medium_term": -2, "long_term": -4,
   "reasoning": "조달 비용 부담이 우려됨."}
]}`

func testNews() []entity.NewsRaw {
	return []entity.NewsRaw{
		{
			ID:    stockNewsID,
			Title: "삼성전자, 3분기 영업이익 급증",
			Content: "<p>삼성전자는 3분기 실적이 크게 늘었다고 밝혔다.</p>" +
				"<p>SK하이닉스도 SK하이닉스 나름의 회복세를 보였다.</p>" +
				"<script>var name = '삼성전자';</script>" +
				"<p>" + filler + "</p><p>삼성전자 관계자는 다음 분기도 기대된다고 말했다.</p>",
		},
		{
			ID:      macroNewsID,
			Title:   "기준금리 동결 결정",
			Content: "GDP 성장세가 둔화되고 환율 변동성이 커졌다.",
		},
		{
			ID:      otherNewsID,
			Title:   "주말 날씨 맑음",
			Content: "전국이 대체로 맑겠다.",
		},
	}
}

func TestRunPipeline_StockArticle(t *testing.T) {
	h := newTestHarness(testNews(), nil)
	h.scorer.confidences = map[string]float64{"삼성전자": 80, "SK하이닉스": 40}

	result, err := h.service.RunPipeline(context.Background(), stockNewsID, dto.PipelineOptions{})
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, taxonomy.CategoryStock, result.Classification.Category)
	require.NotNil(t, result.Classification.Representative)
	assert.Equal(t, "삼성전자", *result.Classification.Representative)

	stored := h.classification.rows[stockNewsID]
	assert.Equal(t, "stock", stored.Category)
	assert.Equal(t, "005930", *stored.RepresentativeCode)

	require.Len(t, result.Entities, 2)
	assert.Equal(t, taxonomy.ProvenanceClassification, result.Entities[0].Provenance)
	assert.Equal(t, "SK하이닉스", result.Entities[1].Name)
	assert.Len(t, h.entities.rows[stockNewsID], 2)

	require.NotNil(t, result.Sentiment)
	assert.False(t, result.Sentiment.Degraded)
	assert.Len(t, result.Sentiment.RawResults, 2)
	assert.Nil(t, result.Macro)

	rows := h.sentiment.forNews(stockNewsID)
	require.Len(t, rows, 1)
	assert.Equal(t, "삼성전자", rows[0].EntityName)
	assert.Equal(t, "005930", *rows[0].EntityCode)
	assert.Equal(t, "positive", rows[0].Sentiment)
	assert.Equal(t, strategy.ScorerNameRemote, rows[0].Scorer)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.ConfidenceScore, h.cfg.Analyzer.ConfidenceThreshold)
	}

	require.Len(t, h.runs.runs, 1)
	run := h.runs.runs[0]
	assert.Equal(t, result.RunID, run.RunID)
	assert.False(t, run.Degraded)
	assert.Nil(t, run.ErrorMessage)
	assert.Equal(t, 2, run.TotalAnalyzed)
	assert.Equal(t, 1, run.FilteredCount)
	assert.GreaterOrEqual(t, run.TotalAnalyzed, run.FilteredCount)
	assert.Contains(t, string(run.RawResults), "SK하이닉스")
}

func TestRunPipeline_Idempotent(t *testing.T) {
	h := newTestHarness(testNews(), nil)
	ctx := context.Background()

	_, err := h.service.RunPipeline(ctx, stockNewsID, dto.PipelineOptions{})
	require.NoError(t, err)
	firstRows := h.sentiment.forNews(stockNewsID)
	firstEntities := h.entities.rows[stockNewsID]

	skipped, err := h.service.RunPipeline(ctx, stockNewsID, dto.PipelineOptions{})
	require.NoError(t, err)
	assert.True(t, skipped.Skipped)
	assert.Equal(t, dto.SkipReasonAlreadyAnalyzed, skipped.SkipReason)
	assert.Equal(t, 1, h.scorer.calls())

	_, err = h.service.RunPipeline(ctx, stockNewsID, dto.PipelineOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 2, h.scorer.calls())

	secondRows := h.sentiment.forNews(stockNewsID)
	require.Len(t, secondRows, len(firstRows))
	for i := range firstRows {
		assert.Equal(t, firstRows[i].EntityType, secondRows[i].EntityType)
		assert.Equal(t, firstRows[i].EntityName, secondRows[i].EntityName)
		assert.Equal(t, firstRows[i].ConfidenceScore, secondRows[i].ConfidenceScore)
	}
	assert.Len(t, h.entities.rows[stockNewsID], len(firstEntities))
	assert.Len(t, h.classification.rows, 1)
}

func TestRunPipeline_FallbackWhenScorerUnhealthy(t *testing.T) {
	h := newTestHarness(testNews(), nil)
	h.scorer.healthy = false
	ctx := context.Background()

	result, err := h.service.RunPipeline(ctx, stockNewsID, dto.PipelineOptions{})
	require.NoError(t, err)
	require.NotNil(t, result.Sentiment)
	assert.True(t, result.Sentiment.Degraded)
	assert.NotEmpty(t, result.Sentiment.Cause)

	rows := h.sentiment.forNews(stockNewsID)
	require.Len(t, rows, len(result.Entities))
	for _, r := range rows {
		assert.Equal(t, strategy.ScorerNameFallback, r.Scorer)
		assert.Equal(t, "neutral", r.Sentiment)
		assert.Equal(t, strategy.DefaultFallbackConfidence, r.ConfidenceScore)
		assert.Equal(t, strategy.FallbackReasoning(r.EntityName), r.Reasoning)
	}

	require.Len(t, h.runs.runs, 1)
	assert.True(t, h.runs.runs[0].Degraded)
	require.NotNil(t, h.runs.runs[0].ErrorMessage)

	// Degraded results are retried once the scorer recovers.
	h.scorer.healthy = true
	retry, err := h.service.RunPipeline(ctx, stockNewsID, dto.PipelineOptions{})
	require.NoError(t, err)
	assert.False(t, retry.Skipped)
	assert.False(t, retry.Sentiment.Degraded)
	for _, r := range h.sentiment.forNews(stockNewsID) {
		assert.Equal(t, strategy.ScorerNameRemote, r.Scorer)
	}
}

func TestRunPipeline_RecoveryRemovesPlaceholders(t *testing.T) {
	t.Run("entity sentiment", func(t *testing.T) {
		h := newTestHarness(testNews(), nil)
		h.scorer.healthy = false
		ctx := context.Background()

		_, err := h.service.RunPipeline(ctx, stockNewsID, dto.PipelineOptions{})
		require.NoError(t, err)
		require.Len(t, h.sentiment.forNews(stockNewsID), 2)

		h.scorer.healthy = true
		h.scorer.confidences = map[string]float64{"삼성전자": 80, "SK하이닉스": 40}
		result, err := h.service.RunPipeline(ctx, stockNewsID, dto.PipelineOptions{})
		require.NoError(t, err)
		assert.False(t, result.Sentiment.Degraded)

		rows := h.sentiment.forNews(stockNewsID)
		require.Len(t, rows, 1)
		assert.Equal(t, "삼성전자", rows[0].EntityName)
		assert.Equal(t, strategy.ScorerNameRemote, rows[0].Scorer)
		for _, r := range rows {
			assert.GreaterOrEqual(t, r.ConfidenceScore, h.cfg.Analyzer.ConfidenceThreshold)
		}
	})

	t.Run("macro impact", func(t *testing.T) {
		ai := &fakeGenerativeAI{err: errors.New("quota exceeded")}
		h := newTestHarness(testNews(), ai)
		ctx := context.Background()

		first, err := h.service.RunPipeline(ctx, macroNewsID, dto.PipelineOptions{})
		require.NoError(t, err)
		require.Equal(t, dto.MacroSourceHeuristic, first.Macro.Source)
		require.NotEmpty(t, h.macro.forNews(macroNewsID))

		ai.err = nil
		ai.text = macroResponse
		second, err := h.service.RunPipeline(ctx, macroNewsID, dto.PipelineOptions{})
		require.NoError(t, err)
		require.Equal(t, dto.MacroSourceGenerative, second.Macro.Source)

		rows := h.macro.forNews(macroNewsID)
		require.Len(t, rows, 2)
		assert.Equal(t, "건설", rows[0].IndustryName)
		assert.Equal(t, "은행", rows[1].IndustryName)
		for _, r := range rows {
			assert.Equal(t, string(dto.MacroSourceGenerative), r.Source)
		}
	})
}

func TestRunPipeline_EntityRowFailureKeepsMacroStage(t *testing.T) {
	const mixedNewsID int64 = 10
	news := []entity.NewsRaw{{
		ID:      mixedNewsID,
		Title:   "기준금리 동결 결정",
		Content: "NAVER NAVER 이용자 증가. GDP 성장세가 둔화되고 환율 변동성이 커졌다.",
	}}
	h := newTestHarness(news, &fakeGenerativeAI{text: macroResponse, delay: 50 * time.Millisecond})
	h.sentiment.failName = "NAVER"

	_, err := h.service.RunPipeline(context.Background(), mixedNewsID, dto.PipelineOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save 1 of 1 sentiment records")
	assert.NotErrorIs(t, err, context.Canceled)

	assert.Empty(t, h.sentiment.forNews(mixedNewsID))
	rows := h.macro.forNews(mixedNewsID)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, string(dto.MacroSourceGenerative), r.Source)
	}
}

func TestRunPipeline_MacroArticle(t *testing.T) {
	t.Run("generative", func(t *testing.T) {
		h := newTestHarness(testNews(), &fakeGenerativeAI{text: macroResponse})

		result, err := h.service.RunPipeline(context.Background(), macroNewsID, dto.PipelineOptions{})
		require.NoError(t, err)

		assert.Equal(t, taxonomy.CategoryMacro, result.Classification.Category)
		require.Len(t, result.Entities, 1)
		assert.Equal(t, taxonomy.EntityTypeMacro, result.Entities[0].Type)
		assert.Equal(t, 0, h.scorer.calls())

		require.NotNil(t, result.Macro)
		assert.Equal(t, dto.MacroSourceGenerative, result.Macro.Source)
		assert.Len(t, result.Macro.Impacts, 2)

		bank := h.macro.rows[macroKey{macroNewsID, "은행"}]
		assert.Equal(t, "+", bank.Sentiment)
		assert.Equal(t, 2.5, bank.OverallImpact)
		assert.Equal(t, []string{"KB금융지주"}, []string(bank.RelatedStocks))
		assert.Equal(t, "generative", bank.Source)

		skipped, err := h.service.RunPipeline(context.Background(), macroNewsID, dto.PipelineOptions{})
		require.NoError(t, err)
		assert.Equal(t, dto.SkipReasonAlreadyAnalyzed, skipped.SkipReason)
	})

	t.Run("generative failure falls back to heuristic", func(t *testing.T) {
		h := newTestHarness(testNews(), &fakeGenerativeAI{err: errors.New("quota exceeded")})

		result, err := h.service.RunPipeline(context.Background(), macroNewsID, dto.PipelineOptions{})
		require.NoError(t, err)
		require.NotNil(t, result.Macro)
		assert.Equal(t, dto.MacroSourceHeuristic, result.Macro.Source)
		assert.Equal(t, "quota exceeded", result.Macro.Cause)
		assert.GreaterOrEqual(t, len(h.macro.rows), 2)

		// Heuristic rows do not count as done while a generative service exists.
		again, err := h.service.RunPipeline(context.Background(), macroNewsID, dto.PipelineOptions{})
		require.NoError(t, err)
		assert.False(t, again.Skipped)
	})

	t.Run("without generative service", func(t *testing.T) {
		h := newTestHarness(testNews(), nil)

		result, err := h.service.RunPipeline(context.Background(), macroNewsID, dto.PipelineOptions{})
		require.NoError(t, err)
		assert.Equal(t, dto.MacroSourceHeuristic, result.Macro.Source)
		assert.Empty(t, result.Macro.Cause)

		again, err := h.service.RunPipeline(context.Background(), macroNewsID, dto.PipelineOptions{})
		require.NoError(t, err)
		assert.Equal(t, dto.SkipReasonAlreadyAnalyzed, again.SkipReason)
	})
}

func TestRunPipeline_OtherArticle(t *testing.T) {
	h := newTestHarness(testNews(), nil)

	result, err := h.service.RunPipeline(context.Background(), otherNewsID, dto.PipelineOptions{Force: true})
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Equal(t, dto.SkipReasonNoEntities, result.SkipReason)
	assert.Nil(t, result.Classification.Representative)
	assert.Equal(t, "other", h.classification.rows[otherNewsID].Category)
	assert.Empty(t, h.entities.rows[otherNewsID])
	assert.Empty(t, h.runs.runs)
}

func TestRunPipeline_NotFound(t *testing.T) {
	h := newTestHarness(testNews(), nil)

	_, err := h.service.RunPipeline(context.Background(), 404, dto.PipelineOptions{})
	assert.ErrorIs(t, err, ErrNewsNotFound)
}

func TestRunPipeline_LexiconUnavailable(t *testing.T) {
	h := newTestHarness(testNews(), nil)
	h.lexicon.err = errors.New("relation \"tmp_stock\" does not exist")

	result, err := h.service.RunPipeline(context.Background(), macroNewsID, dto.PipelineOptions{})
	require.NoError(t, err)
	assert.Equal(t, taxonomy.CategoryMacro, result.Classification.Category)
	assert.Len(t, result.Entities, 1)

	stock, err := h.service.RunPipeline(context.Background(), stockNewsID, dto.PipelineOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, taxonomy.CategoryStock, stock.Classification.Category)
}

func TestRunPipeline_RowFailureDoesNotStopOthers(t *testing.T) {
	h := newTestHarness(testNews(), nil)
	h.sentiment.failName = "SK하이닉스"

	_, err := h.service.RunPipeline(context.Background(), stockNewsID, dto.PipelineOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save 1 of 2 sentiment records")

	rows := h.sentiment.forNews(stockNewsID)
	require.Len(t, rows, 1)
	assert.Equal(t, "삼성전자", rows[0].EntityName)

	require.Len(t, h.runs.runs, 1)
	assert.NotNil(t, h.runs.runs[0].ErrorMessage)
	done, err := h.runs.HasCompletedRun(context.Background(), stockNewsID)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestRunPipeline_CancelledContext(t *testing.T) {
	h := newTestHarness(testNews(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.service.RunPipeline(ctx, macroNewsID, dto.PipelineOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetResults(t *testing.T) {
	h := newTestHarness(testNews(), &fakeGenerativeAI{text: macroResponse})
	ctx := context.Background()

	_, err := h.service.RunPipeline(ctx, stockNewsID, dto.PipelineOptions{})
	require.NoError(t, err)
	_, err = h.service.RunPipeline(ctx, macroNewsID, dto.PipelineOptions{})
	require.NoError(t, err)

	stock, err := h.service.GetResults(ctx, stockNewsID)
	require.NoError(t, err)
	require.NotNil(t, stock.Classification)
	assert.Equal(t, taxonomy.CategoryStock, stock.Classification.Category)
	assert.Len(t, stock.Entities["stock"], 2)
	assert.Empty(t, stock.Macro)

	macro, err := h.service.GetResults(ctx, macroNewsID)
	require.NoError(t, err)
	require.Len(t, macro.Macro, 2)
	assert.Equal(t, "건설", macro.Macro[0].IndustryName)
	assert.Equal(t, "은행", macro.Macro[1].IndustryName)

	_, err = h.service.GetResults(ctx, 404)
	assert.ErrorIs(t, err, ErrNewsNotFound)
}

func TestClassifyArticle(t *testing.T) {
	h := newTestHarness(testNews(), nil)

	cls, err := h.service.ClassifyArticle(context.Background(), stockNewsID)
	require.NoError(t, err)
	assert.Equal(t, taxonomy.CategoryStock, cls.Category)
	assert.Equal(t, "stock", h.classification.rows[stockNewsID].Category)
	assert.Empty(t, h.runs.runs)

	_, err = h.service.ClassifyArticle(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNewsNotFound)
}
