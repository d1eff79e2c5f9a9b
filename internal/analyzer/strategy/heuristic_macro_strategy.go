package strategy

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"

	"golang-news-analyzer/internal/analyzer/dto"
)

var (
	heuristicIndustryPool = []string{"은행", "증권", "보험", "건설", "반도체", "자동차", "항공", "화학"}

	economicKeywords = []string{
		"현금", "디지털", "결제", "카드", "은행", "금융", "핀테크",
		"부동산", "금리", "인플레이션", "정책", "규제", "성장", "투자",
		"수익", "매출", "실적", "전망", "상승", "하락", "개선", "악화",
	}

	positiveSignals = []string{"상승", "개선", "성장", "확대", "인하", "호조", "회복", "증가", "반등", "완화"}
	negativeSignals = []string{"하락", "악화", "침체", "인상", "둔화", "감소", "우려", "긴축", "급락", "위기"}

	heuristicRelatedStocks = map[string][]string{
		"은행":  {"KB금융지주", "신한지주", "하나금융지주"},
		"증권":  {"미래에셋증권", "삼성증권", "키움증권"},
		"건설":  {"삼성물산", "GS건설", "DL이앤씨"},
		"반도체": {"삼성전자", "SK하이닉스", "메모리솔루션"},
		"자동차": {"현대차", "기아", "현대모비스"},
	}

	heuristicReasoning = map[string]map[string]string{
		"은행": {
			"+": "%s 변화로 은행 수수료 수익 확대가 예상됨. 디지털 금융 서비스 수요 증가 가능성이 있음.",
			"-": "%s 변화로 은행 전통 수익모델 타격이 우려됨. 수익성 악화 가능성이 있음.",
		},
		"증권": {
			"+": "%s 트렌드로 거래량 증가가 예상됨. 디지털 플랫폼 수혜가 가능함.",
			"-": "%s 변화로 거래량 감소가 우려됨. 수익성 악화 가능성이 있음.",
		},
		"보험": {
			"+": "%s 관련 보험상품 수요 증가가 예상됨. 디지털 서비스 확산 가능성이 있음.",
			"-": "%s 변화로 전통 영업방식에 어려움이 예상됨. 수익성 타격이 우려됨.",
		},
		"건설": {
			"+": "%s 정책으로 인프라 투자 확대가 예상됨. 수주 증가 가능성이 있음.",
			"-": "%s 변화로 자금조달 부담 증가가 우려됨. 수요 둔화 가능성이 있음.",
		},
		"반도체": {
			"+": "%s 트렌드로 반도체 수요 증가가 예상됨. 기술 발전 가속화 가능성이 있음.",
			"-": "%s 변화로 공급망 불안정이 우려됨. 투자 위축 가능성이 있음.",
		},
		"자동차": {
			"+": "%s 관련 신기술 도입이 예상됨. 새로운 수익모델 창출 가능성이 있음.",
			"-": "%s 변화로 전환 비용 부담이 우려됨. 경쟁력 약화 가능성이 있음.",
		},
	}
)

// HeuristicMacroStrategy estimates macro impact locally, without I/O.
// The same content always yields the same industries and impacts: the
// industry pick and magnitudes are seeded from a hash of the content, and
// the sign follows the balance of positive and negative signal words.
type HeuristicMacroStrategy struct{}

// NewHeuristicMacroStrategy creates a new HeuristicMacroStrategy.
func NewHeuristicMacroStrategy() *HeuristicMacroStrategy {
	return &HeuristicMacroStrategy{}
}

func (s *HeuristicMacroStrategy) Name() dto.MacroSource {
	return dto.MacroSourceHeuristic
}

func (s *HeuristicMacroStrategy) Analyze(ctx context.Context, content string) ([]dto.MacroImpact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(content))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	count := 2 + rng.Intn(4)
	order := rng.Perm(len(heuristicIndustryPool))
	keywords := extractEconomicKeywords(content, 3)
	balance := signalBalance(content)

	impacts := make([]dto.MacroImpact, 0, count)
	for _, idx := range order[:count] {
		industry := heuristicIndustryPool[idx]

		sentiment := "+"
		switch {
		case balance < 0:
			sentiment = "-"
		case balance == 0 && rng.Intn(2) == 0:
			sentiment = "-"
		}

		base := 0.5 + rng.Float64()*4
		if sentiment == "-" {
			base = -base
		}

		impacts = append(impacts, dto.MacroImpact{
			IndustryName:  industry,
			Sentiment:     sentiment,
			OverallImpact: base,
			ShortTerm:     base * 0.6,
			MediumTerm:    base * 1.2,
			LongTerm:      base * 1.8,
			Reasoning:     heuristicMacroReasoning(industry, sentiment, keywords),
			RelatedStocks: relatedStocksFor(industry),
		})
	}
	return NormalizeMacroImpacts(impacts), nil
}

func extractEconomicKeywords(content string, limit int) []string {
	found := make([]string, 0, limit)
	for _, kw := range economicKeywords {
		if strings.Contains(content, kw) {
			found = append(found, kw)
			if len(found) == limit {
				break
			}
		}
	}
	return found
}

func signalBalance(content string) int {
	balance := 0
	for _, kw := range positiveSignals {
		balance += strings.Count(content, kw)
	}
	for _, kw := range negativeSignals {
		balance -= strings.Count(content, kw)
	}
	return balance
}

func heuristicMacroReasoning(industry, sentiment string, keywords []string) string {
	keywordText := "시장 변화"
	if len(keywords) > 0 {
		keywordText = strings.Join(keywords, ", ")
	}
	if templates, ok := heuristicReasoning[industry]; ok {
		return fmt.Sprintf(templates[sentiment], keywordText)
	}
	sentimentText := "부정적 영향이 우려됨"
	if sentiment == "+" {
		sentimentText = "긍정적 영향이 예상됨"
	}
	return fmt.Sprintf("%s 변화로 인한 %s업계 %s. 시장 상황에 따라 영향도가 달라질 수 있음.", keywordText, industry, sentimentText)
}

func relatedStocksFor(industry string) []string {
	if stocks, ok := heuristicRelatedStocks[industry]; ok {
		return append([]string(nil), stocks...)
	}
	return []string{industry + "대장주", industry + "중견주"}
}
