package service

import (
	"strings"
	"unicode/utf8"

	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/internal/analyzer/taxonomy"
)

// DefaultClassificationThreshold is the minimum winning score below which
// an article is classified as Other.
const DefaultClassificationThreshold = 3

// Classifier assigns a primary category and representative entity to an
// article by weighted keyword counting. It holds no mutable state and is
// safe for concurrent use.
type Classifier struct {
	taxonomy  *taxonomy.Taxonomy
	threshold int
}

// NewClassifier creates a Classifier. A non-positive threshold selects
// DefaultClassificationThreshold.
func NewClassifier(tax *taxonomy.Taxonomy, threshold int) *Classifier {
	if threshold <= 0 {
		threshold = DefaultClassificationThreshold
	}
	return &Classifier{taxonomy: tax, threshold: threshold}
}

type categoryScore struct {
	score          int
	representative *string
	code           *string
}

// Classify scores title and body against every category and returns the
// winner. Category ties go to the earlier entry of taxonomy.Precedence.
func (c *Classifier) Classify(title, body string, roster []taxonomy.StockRef) dto.Classification {
	scores := map[taxonomy.Category]categoryScore{
		taxonomy.CategoryStock:    c.scoreStock(title, body, roster),
		taxonomy.CategoryIndustry: c.scoreGroups(title, body, c.taxonomy.Industries),
		taxonomy.CategoryTheme:    c.scoreGroups(title, body, c.taxonomy.Themes),
		taxonomy.CategoryMacro:    c.scoreMacro(title, body),
	}

	result := dto.Classification{
		Category: taxonomy.CategoryOther,
		Scores:   make(map[taxonomy.Category]int, len(scores)),
	}

	best := taxonomy.CategoryOther
	bestScore := -1
	for _, category := range taxonomy.Precedence {
		s := scores[category]
		result.Scores[category] = s.score
		if s.score > bestScore {
			best, bestScore = category, s.score
		}
	}

	result.Score = bestScore
	if bestScore < c.threshold {
		return result
	}

	result.Category = best
	result.Representative = scores[best].representative
	result.RepresentativeCode = scores[best].code
	return result
}

// scoreStock is zero unless some roster name occurs, so keyword density
// alone never makes an article a Stock article.
func (c *Classifier) scoreStock(title, body string, roster []taxonomy.StockRef) categoryScore {
	var (
		best       *taxonomy.StockRef
		bestScore  int
		bestTitle  int
		bestLength int
	)
	for i := range roster {
		name := roster[i].Name
		if name == "" {
			continue
		}
		inTitle := strings.Count(title, name)
		score := weighted(c.taxonomy.KeywordWeights, inTitle, strings.Count(body, name))
		if score == 0 {
			continue
		}
		length := utf8.RuneCountInString(name)
		if best == nil || betterRepresentative(score, inTitle, length, bestScore, bestTitle, bestLength) {
			best = &roster[i]
			bestScore, bestTitle, bestLength = score, inTitle, length
		}
	}
	if best == nil {
		return categoryScore{}
	}

	keywordScore := 0
	for _, kw := range c.taxonomy.StockKeywords {
		keywordScore += weighted(c.taxonomy.KeywordWeights, strings.Count(title, kw), strings.Count(body, kw))
	}

	name := best.Name
	s := categoryScore{score: bestScore + keywordScore, representative: &name}
	if best.Code != "" {
		code := best.Code
		s.code = &code
	}
	return s
}

// betterRepresentative orders candidates by score, then title mentions,
// then name length. Full ties keep the earlier roster entry.
func betterRepresentative(score, inTitle, length, bestScore, bestTitle, bestLength int) bool {
	if score != bestScore {
		return score > bestScore
	}
	if inTitle != bestTitle {
		return inTitle > bestTitle
	}
	return length > bestLength
}

func (c *Classifier) scoreGroups(title, body string, groups []taxonomy.KeywordGroup) categoryScore {
	var best categoryScore
	for i := range groups {
		total := 0
		for _, kw := range groups[i].Keywords {
			total += weighted(c.taxonomy.KeywordWeights, strings.Count(title, kw), strings.Count(body, kw))
		}
		if total > best.score {
			name := groups[i].Name
			best = categoryScore{score: total, representative: &name}
		}
	}
	return best
}

func (c *Classifier) scoreMacro(title, body string) categoryScore {
	total := 0
	for _, kw := range c.taxonomy.MacroKeywords {
		total += weighted(c.taxonomy.MacroWeights, strings.Count(title, kw), strings.Count(body, kw))
	}
	if total == 0 {
		return categoryScore{}
	}
	sentinel := c.taxonomy.MacroSentinel
	return categoryScore{score: total, representative: &sentinel}
}

func weighted(w taxonomy.Weights, inTitle, inBody int) int {
	return w.Title*inTitle + w.Body*inBody
}
