package service

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/internal/analyzer/taxonomy"
)

const (
	DefaultRelevanceThreshold = 60
	DefaultOccurrenceWeight   = 20

	maxExtractedStocks     = 5
	maxExtractedThemes     = 3
	maxExtractedIndustries = 3

	stockPositionBonus = 20
	groupPositionBonus = 25

	// prominentPosition is the fraction of the body within which a first
	// mention earns the position bonus.
	prominentPosition = 0.3
)

// EntityExtractor finds secondary entities beyond the classification
// representative. It is stateless and safe for concurrent use.
type EntityExtractor struct {
	threshold int
	weight    int
}

// NewEntityExtractor creates an EntityExtractor. Non-positive arguments
// select the defaults.
func NewEntityExtractor(threshold, weight int) *EntityExtractor {
	if threshold <= 0 {
		threshold = DefaultRelevanceThreshold
	}
	if weight <= 0 {
		weight = DefaultOccurrenceWeight
	}
	return &EntityExtractor{threshold: threshold, weight: weight}
}

type extractCandidate struct {
	name string
	code string
}

type span struct {
	start, end int
}

// Extract returns the classification representative (if any) followed by
// the relevant secondary stocks, themes and industries found in the body.
// The result never holds two entities with the same key.
func (e *EntityExtractor) Extract(article dto.ArticleText, cls dto.Classification, lex taxonomy.Lexicon) []dto.Entity {
	rep, hasRep := cls.RepresentativeEntity()

	entities := make([]dto.Entity, 0, 1+maxExtractedStocks+maxExtractedThemes+maxExtractedIndustries)
	seen := make(map[dto.EntityKey]struct{})
	add := func(ent dto.Entity) {
		if _, ok := seen[ent.Key()]; ok {
			return
		}
		seen[ent.Key()] = struct{}{}
		entities = append(entities, ent)
	}

	if hasRep {
		add(rep)
	}

	stocks := make([]extractCandidate, 0, len(lex.Stocks))
	for _, s := range lex.Stocks {
		stocks = append(stocks, extractCandidate{name: s.Name, code: s.Code})
	}

	for _, ent := range e.extractType(article.Body, taxonomy.EntityTypeStock, stocks, rep, hasRep, typeCap(maxExtractedStocks, taxonomy.EntityTypeStock, rep, hasRep), stockPositionBonus) {
		add(ent)
	}
	for _, ent := range e.extractType(article.Body, taxonomy.EntityTypeTheme, namesToCandidates(lex.Themes), rep, hasRep, typeCap(maxExtractedThemes, taxonomy.EntityTypeTheme, rep, hasRep), groupPositionBonus) {
		add(ent)
	}
	for _, ent := range e.extractType(article.Body, taxonomy.EntityTypeIndustry, namesToCandidates(lex.Industries), rep, hasRep, typeCap(maxExtractedIndustries, taxonomy.EntityTypeIndustry, rep, hasRep), groupPositionBonus) {
		add(ent)
	}
	return entities
}

// typeCap is the number of extracted entities allowed for a type. The
// representative counts toward the cap of its own type.
func typeCap(limit int, entityType taxonomy.EntityType, rep dto.Entity, hasRep bool) int {
	if hasRep && rep.Type == entityType {
		return limit - 1
	}
	return limit
}

// extractType scans candidates longest name first. Every match claims its
// span, so a shorter name is never counted inside a longer one, even when
// the longer one is the representative and is not reported again.
func (e *EntityExtractor) extractType(
	body string,
	entityType taxonomy.EntityType,
	candidates []extractCandidate,
	rep dto.Entity,
	hasRep bool,
	limit int,
	positionBonus int,
) []dto.Entity {
	if body == "" || len(candidates) == 0 || limit <= 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return utf8.RuneCountInString(candidates[i].name) > utf8.RuneCountInString(candidates[j].name)
	})

	bodyLength := utf8.RuneCountInString(body)
	claimed := make([]span, 0)
	accepted := make([]dto.Entity, 0, limit)
	seen := make(map[dto.EntityKey]struct{})

	for _, c := range candidates {
		if c.name == "" {
			continue
		}
		ent := dto.Entity{
			Type:       entityType,
			Name:       c.name,
			Code:       c.code,
			Provenance: taxonomy.ProvenanceExtracted,
		}

		matches := unclaimedMatches(body, c.name, claimed)
		if c.code != "" {
			matches = append(matches, unclaimedMatches(body, c.code, claimed)...)
		}
		if len(matches) == 0 {
			continue
		}
		claimed = append(claimed, matches...)

		if hasRep && sameEntity(ent, rep) {
			continue
		}
		if _, ok := seen[ent.Key()]; ok {
			continue
		}

		first := matches[0].start
		for _, m := range matches[1:] {
			if m.start < first {
				first = m.start
			}
		}
		prominent := float64(utf8.RuneCountInString(body[:first]))/float64(bodyLength) < prominentPosition
		occurrences := len(matches)
		if occurrences < 2 && !prominent {
			continue
		}

		relevance := occurrences * e.weight
		if prominent {
			relevance += positionBonus
		}
		if relevance > 100 {
			relevance = 100
		}
		if relevance < e.threshold {
			continue
		}

		ent.RelevanceScore = relevance
		seen[ent.Key()] = struct{}{}
		accepted = append(accepted, ent)
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].RelevanceScore > accepted[j].RelevanceScore
	})
	if len(accepted) > limit {
		accepted = accepted[:limit]
	}
	return accepted
}

// unclaimedMatches returns the non-overlapping occurrences of sub in s that
// do not overlap an already claimed span.
func unclaimedMatches(s, sub string, claimed []span) []span {
	var matches []span
	offset := 0
	for {
		i := strings.Index(s[offset:], sub)
		if i < 0 {
			return matches
		}
		m := span{start: offset + i, end: offset + i + len(sub)}
		if !overlapsAny(m, claimed) {
			matches = append(matches, m)
		}
		offset = m.end
	}
}

func overlapsAny(m span, spans []span) bool {
	for _, s := range spans {
		if m.start < s.end && s.start < m.end {
			return true
		}
	}
	return false
}

func sameEntity(a, b dto.Entity) bool {
	if a.Type != b.Type {
		return false
	}
	return a.Key() == b.Key() || a.Name == b.Name
}

func namesToCandidates(names []string) []extractCandidate {
	candidates := make([]extractCandidate, 0, len(names))
	for _, n := range names {
		candidates = append(candidates, extractCandidate{name: n})
	}
	return candidates
}
