package repository

import (
	"fmt"
)

// BuildMacroImpactPrompt asks for a JSON breakdown of how a macro article
// moves 2-5 domestic industries.
func BuildMacroImpactPrompt(content string) string {
	return fmt.Sprintf(`다음 경제/금융 뉴스를 분석하여 국내 주식시장에 미칠 거시경제적 영향을 분석해주세요.

뉴스 내용:
%s

다음 JSON 형식으로 영향받을 주요 산업군 2-5개를 분석해주세요:

{
  "industries": [
    {
      "name": "산업군명",
      "sentiment": "+",
      "overall_impact": 1.5,
      "short_term": 1.0,
      "medium_term": 1.8,
      "long_term": 2.2,
      "reasoning": "뉴스 내용이 해당 산업에 미치는 영향을 최대 3문장으로 간결하게 설명",
      "related_stocks": ["대표주식1", "대표주식2", "대표주식3"]
    }
  ]
}

reasoning 작성 규칙:
1. 첫 번째 문장: 뉴스의 핵심 내용이 해당 산업에 미치는 직접적 영향
2. 두 번째 문장 (선택): 구체적인 수익/손실 요인
3. 세 번째 문장 (선택): 리스크나 제한사항
4. 문장은 "~가능성이 있음", "~우려됨", "~예상됨", "~필요함" 형태로 끝낼 것

참고사항:
- sentiment: "+" (긍정) 또는 "-" (부정)
- impact 수치: -5.0 ~ +5.0 범위의 예상 주가 변동률(%%)
- short_term: 1주일, medium_term: 1개월, long_term: 3개월 영향도
- 대한민국 주요 산업군: 은행, 증권, 보험, 건설, 반도체, 자동차, 항공, 화학, 바이오, 게임 등
- related_stocks: 해당 산업의 대표 상장기업명 (최대 5개)

JSON 외의 다른 텍스트는 포함하지 마세요.`, content)
}
