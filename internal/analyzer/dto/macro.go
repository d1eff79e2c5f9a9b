package dto

// MacroSource records which strategy produced a macro impact analysis.
type MacroSource string

const (
	MacroSourceGenerative MacroSource = "generative"
	MacroSourceHeuristic  MacroSource = "heuristic"
)

// MacroImpact is the expected effect of a macro article on one industry.
// Impacts are percentage moves in [-5, 5].
type MacroImpact struct {
	IndustryName  string   `json:"name"`
	Sentiment     string   `json:"sentiment"`
	OverallImpact float64  `json:"overall_impact"`
	ShortTerm     float64  `json:"short_term"`
	MediumTerm    float64  `json:"medium_term"`
	LongTerm      float64  `json:"long_term"`
	Reasoning     string   `json:"reasoning"`
	RelatedStocks []string `json:"related_stocks"`
}

// MacroAnalysis is the full macro breakdown for one article.
type MacroAnalysis struct {
	Source  MacroSource   `json:"source"`
	Impacts []MacroImpact `json:"industries"`
	Cause   string        `json:"cause,omitempty"`
}
