package dto

// ScorerEntity is an entity as sent to the sentiment scorer.
type ScorerEntity struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Code string `json:"code,omitempty"`
}

// ScorerAnalyzeRequest is the body of POST /analyze.
type ScorerAnalyzeRequest struct {
	Entities []ScorerEntity `json:"entities"`
	Content  string         `json:"content"`
}

// ScorerResult is one per-entity score returned by the scorer.
type ScorerResult struct {
	EntityName      string  `json:"entity_name"`
	EntityType      string  `json:"entity_type"`
	Sentiment       string  `json:"sentiment"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// ScorerAnalyzeResponse is the body returned by POST /analyze.
type ScorerAnalyzeResponse struct {
	Success bool           `json:"success"`
	Results []ScorerResult `json:"results"`
	Error   string         `json:"error,omitempty"`
}

// ScorerHealth is the body returned by GET /health.
type ScorerHealth struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// Healthy reports whether the scorer can take requests.
func (h ScorerHealth) Healthy() bool {
	return h.Status == "healthy" && h.ModelLoaded
}
