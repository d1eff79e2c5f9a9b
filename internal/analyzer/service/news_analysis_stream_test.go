package service

import (
	"testing"

	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamPayload(t *testing.T) {
	payload, err := encodeStreamPayload(dto.StreamDataNewsAnalysis{NewsID: 42, Force: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"news_id":42,"force":true}`, payload)

	data, err := decodeStreamPayload(map[string]interface{}{common.RedisStreamPayloadField: payload})
	require.NoError(t, err)
	assert.Equal(t, int64(42), data.NewsID)
	assert.True(t, data.Force)
}

func TestDecodeStreamPayload_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
	}{
		{name: "missing field", values: map[string]interface{}{"data": `{"news_id":1}`}},
		{name: "not a string", values: map[string]interface{}{common.RedisStreamPayloadField: 1}},
		{name: "bad json", values: map[string]interface{}{common.RedisStreamPayloadField: `{"news_id":`}},
		{name: "zero id", values: map[string]interface{}{common.RedisStreamPayloadField: `{"news_id":0}`}},
		{name: "negative id", values: map[string]interface{}{common.RedisStreamPayloadField: `{"news_id":-3}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeStreamPayload(tt.values)
			assert.Error(t, err)
		})
	}
}
