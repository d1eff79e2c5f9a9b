package taxonomy

import (
	"fmt"
)

// Category is the primary classification of an article.
type Category int

const (
	CategoryOther Category = iota
	CategoryStock
	CategoryIndustry
	CategoryTheme
	CategoryMacro
)

// Precedence lists the scored categories in tie-break order: when two
// categories reach the same score, the one listed first wins.
var Precedence = []Category{CategoryStock, CategoryIndustry, CategoryTheme, CategoryMacro}

func (c Category) String() string {
	switch c {
	case CategoryOther:
		return "other"
	case CategoryStock:
		return "stock"
	case CategoryIndustry:
		return "industry"
	case CategoryTheme:
		return "theme"
	case CategoryMacro:
		return "macro"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "other":
		return CategoryOther, nil
	case "stock":
		return CategoryStock, nil
	case "industry":
		return CategoryIndustry, nil
	case "theme":
		return CategoryTheme, nil
	case "macro":
		return CategoryMacro, nil
	}
	return CategoryOther, fmt.Errorf("unknown category %q", s)
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// EntityType returns the entity type of a representative chosen in this
// category. Other has no representative.
func (c Category) EntityType() (EntityType, bool) {
	switch c {
	case CategoryStock:
		return EntityTypeStock, true
	case CategoryIndustry:
		return EntityTypeIndustry, true
	case CategoryTheme:
		return EntityTypeTheme, true
	case CategoryMacro:
		return EntityTypeMacro, true
	case CategoryOther:
		return "", false
	}
	return "", false
}

// EntityType is the kind of market entity an article can mention.
type EntityType string

const (
	EntityTypeStock    EntityType = "stock"
	EntityTypeTheme    EntityType = "theme"
	EntityTypeIndustry EntityType = "industry"
	EntityTypeMacro    EntityType = "macro"
)

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeStock, EntityTypeTheme, EntityTypeIndustry, EntityTypeMacro:
		return true
	}
	return false
}

// Provenance records which stage produced an entity.
type Provenance string

const (
	ProvenanceClassification Provenance = "classification"
	ProvenanceExtracted      Provenance = "extracted"
)
