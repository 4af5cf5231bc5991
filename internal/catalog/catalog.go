package catalog

import (
	"sort"
	"strings"

	"perfume-recommender/backend/internal/match"
)

// Values of the Gender and Time Usage columns.
var (
	Genders    = []string{"wanita", "pria", "unisex"}
	TimeUsages = []string{"siang", "malam", "siang dan malam"}
)

// Item is one perfume of the catalog. Items are never mutated after load.
// Rating is NaN when the source left it blank.
type Item struct {
	Row              int
	Brand            string
	Name             string
	Gender           string
	TimeUsage        string
	Country          string
	Rating           float64
	OlfactoryFamily  string
	TopNotes         string
	MiddleNotes      string
	BaseNotes        string
	CombinedFeatures string
}

// Features returns the keyword phrases of the item.
func (it Item) Features() []string {
	return match.SplitFeatures(it.CombinedFeatures)
}

// Vocabulary is the set of keyword phrases known to a catalog.
type Vocabulary struct {
	tokens map[string]struct{}
	sorted []string
}

// NewVocabulary builds a vocabulary from CombinedFeatures values.
func NewVocabulary(features []string) Vocabulary {
	set := make(map[string]struct{})
	for _, f := range features {
		for _, tok := range match.SplitFeatures(f) {
			set[tok] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(set))
	for tok := range set {
		sorted = append(sorted, tok)
	}
	sort.Strings(sorted)
	return Vocabulary{tokens: set, sorted: sorted}
}

// Contains reports whether token is part of the vocabulary.
func (v Vocabulary) Contains(token string) bool {
	_, ok := v.tokens[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

// Tokens returns the vocabulary in lexical order. Callers must not modify it.
func (v Vocabulary) Tokens() []string {
	return v.sorted
}

// Len returns the vocabulary size.
func (v Vocabulary) Len() int {
	return len(v.sorted)
}

// Catalog is an immutable snapshot of perfumes with derived lookups.
type Catalog struct {
	items      []Item
	vocabulary Vocabulary
	countries  []string
}

// New builds a catalog from already parsed items. Country names are
// lowercased and rows renumbered in slice order.
func New(items []Item) *Catalog {
	owned := make([]Item, len(items))
	features := make([]string, 0, len(items))
	seen := make(map[string]struct{})
	var countries []string
	for i, it := range items {
		it.Row = i
		it.Country = strings.ToLower(strings.TrimSpace(it.Country))
		owned[i] = it
		features = append(features, it.CombinedFeatures)
		if it.Country == "" {
			continue
		}
		if _, ok := seen[it.Country]; ok {
			continue
		}
		seen[it.Country] = struct{}{}
		countries = append(countries, it.Country)
	}
	return &Catalog{
		items:      owned,
		vocabulary: NewVocabulary(features),
		countries:  countries,
	}
}

// Items returns the catalog rows in source order. Callers must not modify it.
func (c *Catalog) Items() []Item {
	if c == nil {
		return nil
	}
	return c.items
}

// Len returns the number of rows.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Vocabulary returns the keyword vocabulary.
func (c *Catalog) Vocabulary() Vocabulary {
	if c == nil {
		return Vocabulary{}
	}
	return c.vocabulary
}

// Countries returns the distinct countries in first-appearance order.
func (c *Catalog) Countries() []string {
	if c == nil {
		return nil
	}
	return c.countries
}

// Stats summarizes the catalog composition.
type Stats struct {
	Total       int            `json:"total"`
	ByGender    map[string]int `json:"by_gender"`
	ByTimeUsage map[string]int `json:"by_time_usage"`
	Countries   int            `json:"countries"`
	Vocabulary  int            `json:"vocabulary"`
}

// Stats counts rows per gender and time usage.
func (c *Catalog) Stats() Stats {
	stats := Stats{
		ByGender:    make(map[string]int),
		ByTimeUsage: make(map[string]int),
	}
	if c == nil {
		return stats
	}
	for _, it := range c.items {
		stats.ByGender[strings.ToLower(strings.TrimSpace(it.Gender))]++
		stats.ByTimeUsage[strings.ToLower(strings.TrimSpace(it.TimeUsage))]++
	}
	stats.Total = len(c.items)
	stats.Countries = len(c.countries)
	stats.Vocabulary = c.vocabulary.Len()
	return stats
}
