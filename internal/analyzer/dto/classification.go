package dto

import (
	"golang-news-analyzer/internal/analyzer/taxonomy"
)

// Classification is the primary category chosen for an article.
type Classification struct {
	Category           taxonomy.Category         `json:"category"`
	Representative     *string                   `json:"representative"`
	RepresentativeCode *string                   `json:"representative_code,omitempty"`
	Score              int                       `json:"score"`
	Scores             map[taxonomy.Category]int `json:"scores,omitempty"`
}

// IsOther reports whether no category cleared the threshold.
func (c Classification) IsOther() bool {
	return c.Category == taxonomy.CategoryOther
}

// RepresentativeEntity returns the classification-stage entity, if any.
func (c Classification) RepresentativeEntity() (Entity, bool) {
	if c.Representative == nil {
		return Entity{}, false
	}
	entityType, ok := c.Category.EntityType()
	if !ok {
		return Entity{}, false
	}
	e := Entity{
		Type:       entityType,
		Name:       *c.Representative,
		Provenance: taxonomy.ProvenanceClassification,
	}
	if c.RepresentativeCode != nil {
		e.Code = *c.RepresentativeCode
	}
	return e, true
}
