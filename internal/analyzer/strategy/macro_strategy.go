package strategy

import (
	"context"
	"math"
	"strings"
	"unicode"

	"golang-news-analyzer/internal/analyzer/dto"
)

const (
	maxMacroIndustries   = 5
	maxRelatedStocks     = 5
	maxReasoningSentence = 3
	maxImpact            = 5.0
)

// MacroImpactStrategy turns a macro article into per-industry impact estimates.
type MacroImpactStrategy interface {
	Name() dto.MacroSource
	Analyze(ctx context.Context, content string) ([]dto.MacroImpact, error)
}

// NormalizeMacroImpacts enforces the bounds every stored macro impact obeys:
// at most five industries, impacts in [-5, 5], at most five related stocks
// and three reasoning sentences.
func NormalizeMacroImpacts(impacts []dto.MacroImpact) []dto.MacroImpact {
	if len(impacts) > maxMacroIndustries {
		impacts = impacts[:maxMacroIndustries]
	}
	out := make([]dto.MacroImpact, 0, len(impacts))
	for _, impact := range impacts {
		impact.IndustryName = strings.TrimSpace(impact.IndustryName)
		if impact.IndustryName == "" {
			impact.IndustryName = "미분류"
		}
		if impact.Sentiment != "+" {
			impact.Sentiment = "-"
		}
		impact.OverallImpact = clampImpact(impact.OverallImpact)
		impact.ShortTerm = clampImpact(impact.ShortTerm)
		impact.MediumTerm = clampImpact(impact.MediumTerm)
		impact.LongTerm = clampImpact(impact.LongTerm)
		impact.Reasoning = limitSentences(strings.TrimSpace(impact.Reasoning), maxReasoningSentence)
		impact.RelatedStocks = limitStrings(impact.RelatedStocks, maxRelatedStocks)
		out = append(out, impact)
	}
	return out
}

func clampImpact(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-maxImpact, math.Min(maxImpact, v))
}

func limitStrings(values []string, n int) []string {
	out := make([]string, 0, n)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out
}

// limitSentences keeps the first n sentences. A sentence ends at '.', '!',
// '?' or '。' followed by whitespace or the end of text, so decimals like
// "1.5%" do not split.
func limitSentences(text string, n int) string {
	runes := []rune(text)
	count := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' && r != '。' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		count++
		if count == n {
			return strings.TrimSpace(string(runes[:i+1]))
		}
	}
	return text
}
