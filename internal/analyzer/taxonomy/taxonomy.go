package taxonomy

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed default_taxonomy.yaml
var defaultTaxonomyYAML []byte

// KeywordGroup is a named industry or theme with the keywords that signal it.
type KeywordGroup struct {
	Name     string   `yaml:"name" validate:"required"`
	Keywords []string `yaml:"keywords" validate:"required,min=1,dive,required"`
}

// Weights are the per-occurrence multipliers for title and body matches.
type Weights struct {
	Title int `yaml:"title" validate:"gt=0"`
	Body  int `yaml:"body" validate:"gte=0"`
}

// Taxonomy holds the keyword tables for every scored category. Groups are
// ordered slices so scoring and tie-breaking are deterministic.
type Taxonomy struct {
	MacroSentinel  string         `yaml:"macro_sentinel" validate:"required"`
	KeywordWeights Weights        `yaml:"keyword_weights"`
	MacroWeights   Weights        `yaml:"macro_weights"`
	StockKeywords  []string       `yaml:"stock_keywords" validate:"dive,required"`
	MacroKeywords  []string       `yaml:"macro_keywords" validate:"required,min=1,dive,required"`
	Industries     []KeywordGroup `yaml:"industries" validate:"required,min=1,dive"`
	Themes         []KeywordGroup `yaml:"themes" validate:"required,min=1,dive"`
}

// Default returns the built-in taxonomy.
func Default() *Taxonomy {
	t, err := Parse(defaultTaxonomyYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in taxonomy is invalid: %v", err))
	}
	return t
}

// Load reads a taxonomy from a YAML file. An empty path yields Default.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML taxonomy.
func Parse(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode taxonomy: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the structural rules a taxonomy must satisfy. A taxonomy
// that fails validation is a configuration error and must stop startup.
func (t *Taxonomy) Validate() error {
	if err := validator.New().Struct(t); err != nil {
		return fmt.Errorf("invalid taxonomy: %w", err)
	}
	if err := uniqueGroupNames("industries", t.Industries); err != nil {
		return err
	}
	return uniqueGroupNames("themes", t.Themes)
}

// IndustryNames returns the industry group names in taxonomy order.
func (t *Taxonomy) IndustryNames() []string {
	return groupNames(t.Industries)
}

// ThemeNames returns the theme group names in taxonomy order.
func (t *Taxonomy) ThemeNames() []string {
	return groupNames(t.Themes)
}

func uniqueGroupNames(field string, groups []KeywordGroup) error {
	seen := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		if _, ok := seen[g.Name]; ok {
			return fmt.Errorf("invalid taxonomy: duplicate %s group %q", field, g.Name)
		}
		seen[g.Name] = struct{}{}
	}
	return nil
}

func groupNames(groups []KeywordGroup) []string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return names
}
