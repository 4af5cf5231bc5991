package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"perfume-recommender/backend/internal/match"
)

// RatingKind tells whether a rating filter is a lower or an upper bound.
type RatingKind string

const (
	RatingAbove RatingKind = "above"
	RatingBelow RatingKind = "below"
)

// RatingFilter bounds the acceptable rating, inclusive.
type RatingFilter struct {
	Kind  RatingKind `json:"kind"`
	Value float64    `json:"value"`
}

// Allows reports whether rating satisfies the filter. NaN never does.
func (f RatingFilter) Allows(rating float64) bool {
	if math.IsNaN(rating) {
		return false
	}
	switch f.Kind {
	case RatingAbove:
		return rating >= f.Value
	case RatingBelow:
		return rating <= f.Value
	default:
		return true
	}
}

// Filters are the structured constraints found in a description.
type Filters struct {
	Country string
	Rating  *RatingFilter
}

// FilterExtractor pulls structured constraints out of free text.
type FilterExtractor interface {
	ExtractFilters(text string) Filters
}

var (
	ratingAbove = regexp.MustCompile(`rating\w*\s*(?:di\s*)?(?:atas|lebih\s*dari|>)\s*([\d.]+)`)
	ratingBelow = regexp.MustCompile(`rating\w*\s*(?:di\s*)?(?:bawah|kurang\s*dari|<)\s*([\d.]+)`)
)

// PatternExtractor recognizes Indonesian rating phrases ("rating di atas 4",
// "rating kurang dari 3.5", "rating > 4") and catalog country names.
type PatternExtractor struct {
	countries []string
}

// NewPatternExtractor builds an extractor over the catalog's countries, kept
// in the supplied order.
func NewPatternExtractor(countries []string) *PatternExtractor {
	list := make([]string, 0, len(countries))
	for _, c := range countries {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			list = append(list, c)
		}
	}
	return &PatternExtractor{countries: list}
}

// ExtractFilters returns the country and rating constraints of text.
func (p *PatternExtractor) ExtractFilters(text string) Filters {
	return Filters{
		Country: p.Country(text),
		Rating:  Rating(text),
	}
}

// Country returns the first known country mentioned in text, or "".
func (p *PatternExtractor) Country(text string) string {
	if p == nil {
		return ""
	}
	clean := match.Preprocess(text)
	if clean == "" {
		return ""
	}
	for _, c := range p.countries {
		if match.SubstringMatch(clean, c) {
			return c
		}
	}
	return ""
}

// Rating returns the rating bound stated in text. When both an upper and a
// lower bound are present the lower bound ("above") wins. Phrases are matched
// case-sensitively on the raw text, so "Rating di atas 4" states no bound.
func Rating(text string) *RatingFilter {
	if m := ratingAbove.FindStringSubmatch(text); m != nil {
		if v, ok := parseBound(m[1]); ok {
			return &RatingFilter{Kind: RatingAbove, Value: v}
		}
		return nil
	}
	if m := ratingBelow.FindStringSubmatch(text); m != nil {
		if v, ok := parseBound(m[1]); ok {
			return &RatingFilter{Kind: RatingBelow, Value: v}
		}
	}
	return nil
}

func parseBound(raw string) (float64, bool) {
	raw = strings.TrimRight(raw, ".")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
