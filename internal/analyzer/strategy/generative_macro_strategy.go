package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/internal/analyzer/repository"
	"golang-news-analyzer/pkg/logger"
)

var (
	errNoJSONObject = errors.New("no JSON object found in response")
	errNoIndustries = errors.New("response has no industries array")
)

// GenerativeMacroStrategy asks a generative text service for the macro breakdown.
type GenerativeMacroStrategy struct {
	aiRepo repository.GenerativeAIRepository
	logger *logger.Logger
}

// NewGenerativeMacroStrategy creates a new GenerativeMacroStrategy.
func NewGenerativeMacroStrategy(aiRepo repository.GenerativeAIRepository, log *logger.Logger) *GenerativeMacroStrategy {
	return &GenerativeMacroStrategy{aiRepo: aiRepo, logger: log}
}

func (s *GenerativeMacroStrategy) Name() dto.MacroSource {
	return dto.MacroSourceGenerative
}

func (s *GenerativeMacroStrategy) Analyze(ctx context.Context, content string) ([]dto.MacroImpact, error) {
	text, err := s.aiRepo.GenerateText(ctx, repository.BuildMacroImpactPrompt(content))
	if err != nil {
		return nil, err
	}

	impacts, err := ParseMacroImpactResponse(text)
	if err != nil {
		s.logger.Warn("Failed to parse macro impact response", logger.ErrorField(err), logger.StringField("response", text))
		return nil, err
	}
	return impacts, nil
}

type macroIndustryPayload struct {
	Name          string    `json:"name"`
	Sentiment     string    `json:"sentiment"`
	OverallImpact flexFloat `json:"overall_impact"`
	ShortTerm     flexFloat `json:"short_term"`
	MediumTerm    flexFloat `json:"medium_term"`
	LongTerm      flexFloat `json:"long_term"`
	Reasoning     string    `json:"reasoning"`
	RelatedStocks []string  `json:"related_stocks"`
}

type macroResponsePayload struct {
	Industries *[]macroIndustryPayload `json:"industries"`
}

// ParseMacroImpactResponse extracts the first balanced JSON object from text
// and converts its "industries" array into normalized impacts.
func ParseMacroImpactResponse(text string) ([]dto.MacroImpact, error) {
	raw, ok := extractFirstJSONObject(text)
	if !ok {
		return nil, errNoJSONObject
	}

	var payload macroResponsePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal macro impact response: %w", err)
	}
	if payload.Industries == nil || len(*payload.Industries) == 0 {
		return nil, errNoIndustries
	}

	impacts := make([]dto.MacroImpact, 0, len(*payload.Industries))
	for _, in := range *payload.Industries {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			name = "미분류"
		}
		sentiment := "-"
		if strings.TrimSpace(in.Sentiment) == "+" {
			sentiment = "+"
		}
		reasoning := strings.TrimSpace(in.Reasoning)
		if reasoning == "" {
			reasoning = fmt.Sprintf("%s에 대한 거시경제적 영향 분석", name)
		}
		related := in.RelatedStocks
		if related == nil {
			related = []string{name + "대장주"}
		}
		impacts = append(impacts, dto.MacroImpact{
			IndustryName:  name,
			Sentiment:     sentiment,
			OverallImpact: float64(in.OverallImpact),
			ShortTerm:     float64(in.ShortTerm),
			MediumTerm:    float64(in.MediumTerm),
			LongTerm:      float64(in.LongTerm),
			Reasoning:     reasoning,
			RelatedStocks: related,
		})
	}
	return NormalizeMacroImpacts(impacts), nil
}

// extractFirstJSONObject returns the first balanced {...} in text, skipping
// braces inside JSON strings.
func extractFirstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// flexFloat accepts numbers, numeric strings and null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "+"), "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", string(data), err)
	}
	*f = flexFloat(v)
	return nil
}
