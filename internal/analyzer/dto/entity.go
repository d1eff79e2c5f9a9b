package dto

import (
	"golang-news-analyzer/internal/analyzer/taxonomy"
)

// Entity is a market entity found in an article.
type Entity struct {
	Type           taxonomy.EntityType `json:"type"`
	Name           string              `json:"name"`
	Code           string              `json:"code,omitempty"`
	Provenance     taxonomy.Provenance `json:"provenance"`
	RelevanceScore int                 `json:"relevance_score,omitempty"`
}

// EntityKey identifies an entity independently of how it was found.
type EntityKey struct {
	Type taxonomy.EntityType
	ID   string
}

// Key returns the identity of e: the code for stocks that have one, the name otherwise.
func (e Entity) Key() EntityKey {
	if e.Type == taxonomy.EntityTypeStock && e.Code != "" {
		return EntityKey{Type: e.Type, ID: e.Code}
	}
	return EntityKey{Type: e.Type, ID: e.Name}
}

// ArticleText is the normalised text of an article fed to the pipeline stages.
type ArticleText struct {
	NewsID int64
	Title  string
	Body   string
}

// Content is the text sent to the scorers: title followed by body.
func (a ArticleText) Content() string {
	if a.Title == "" {
		return a.Body
	}
	if a.Body == "" {
		return a.Title
	}
	return a.Title + " " + a.Body
}
