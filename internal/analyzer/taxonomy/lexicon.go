package taxonomy

// StockRef is one listed company in the stock roster.
type StockRef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Lexicon is the set of known entity names an article is matched against.
// A Lexicon is treated as immutable once built.
type Lexicon struct {
	Stocks     []StockRef
	Themes     []string
	Industries []string
}

// IsEmpty reports whether the lexicon has no names at all.
func (l Lexicon) IsEmpty() bool {
	return len(l.Stocks) == 0 && len(l.Themes) == 0 && len(l.Industries) == 0
}
