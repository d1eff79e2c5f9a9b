package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatch(t *testing.T) {
	h := newTestHarness(testNews(), &fakeGenerativeAI{text: macroResponse})
	h.news.unanalyzed = []int64{stockNewsID, macroNewsID, otherNewsID, 404}

	report, err := h.service.RunBatch(context.Background(), 0)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 4, report.Requested)
	assert.Equal(t, 2, report.Success)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 0, report.Degraded)
	assert.False(t, report.Cancelled)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, int64(404), report.Errors[0].NewsID)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	assert.Len(t, h.runs.runs, 2)
	for _, run := range h.runs.runs {
		assert.Equal(t, report.RunID, run.RunID)
	}

	require.Len(t, h.notifier.messages, 1)
	assert.Contains(t, h.notifier.messages[0], "감정분석 배치")
	assert.Equal(t, 1, h.lexicon.invalidated)
}

func TestRunBatch_CountsDegraded(t *testing.T) {
	h := newTestHarness(testNews(), nil)
	h.scorer.healthy = false
	h.news.unanalyzed = []int64{stockNewsID}

	report, err := h.service.RunBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Success)
	assert.Equal(t, 1, report.Degraded)
}

func TestRunBatch_Empty(t *testing.T) {
	h := newTestHarness(testNews(), nil)

	report, err := h.service.RunBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Requested)
	assert.Empty(t, h.notifier.messages)
	assert.Zero(t, h.lexicon.invalidated)
}

func TestRunBatch_Cancelled(t *testing.T) {
	h := newTestHarness(testNews(), nil)
	h.news.unanalyzed = []int64{stockNewsID, macroNewsID}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := h.service.RunBatch(ctx, 10)
	require.NoError(t, err)
	assert.True(t, report.Cancelled)
	assert.Equal(t, 0, report.Success)
	assert.Empty(t, h.runs.runs)
}

func TestClassifyBacklog(t *testing.T) {
	h := newTestHarness(testNews(), nil)
	h.news.unclassified = []int64{stockNewsID, macroNewsID, otherNewsID, 404}

	report, err := h.service.ClassifyBacklog(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Requested)
	assert.Equal(t, 3, report.Classified)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, map[string]int{"stock": 1, "macro": 1, "other": 1}, report.ByCategory)
	assert.Len(t, h.classification.rows, 3)
	assert.Empty(t, h.runs.runs)
	require.Len(t, h.notifier.messages, 1)
	assert.Equal(t, 1, h.lexicon.invalidated)
}

func TestClassifyBacklog_Cancelled(t *testing.T) {
	h := newTestHarness(testNews(), nil)
	h.news.unclassified = []int64{stockNewsID}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := h.service.ClassifyBacklog(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Classified)
}
