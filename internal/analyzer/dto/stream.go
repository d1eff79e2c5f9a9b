package dto

// StreamDataNewsAnalysis is the payload of a news analysis stream entry.
type StreamDataNewsAnalysis struct {
	NewsID int64 `json:"news_id"`
	Force  bool  `json:"force"`
}
