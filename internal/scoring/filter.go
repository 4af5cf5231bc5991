package scoring

import (
	"strings"

	"perfume-recommender/backend/internal/catalog"
	"perfume-recommender/backend/internal/extract"
)

// ApplyFilters narrows items by gender, time usage, country and rating, in
// that order, and returns the survivors with the include keywords to score.
// Without an explicit country, a local request (LocalCountry among the
// keywords) restricts rows to that country and drops it from the keywords.
// An empty stage ends filtering early.
func ApplyFilters(items []catalog.Item, q Query, filters extract.Filters, include []string) ([]catalog.Item, []string) {
	gender := strings.TrimSpace(q.Gender)
	timeUsage := strings.TrimSpace(q.TimeUsage)

	out := keep(items, func(it catalog.Item) bool {
		return strings.EqualFold(strings.TrimSpace(it.Gender), gender)
	})
	if len(out) == 0 {
		return nil, include
	}

	out = keep(out, func(it catalog.Item) bool {
		return strings.EqualFold(strings.TrimSpace(it.TimeUsage), timeUsage)
	})
	if len(out) == 0 {
		return nil, include
	}

	if country := filters.Country; country != "" {
		out = keep(out, func(it catalog.Item) bool {
			return strings.Contains(it.Country, country)
		})
	} else if extract.Contains(include, extract.LocalCountry) {
		out = keep(out, func(it catalog.Item) bool {
			return strings.Contains(it.Country, extract.LocalCountry)
		})
		include = extract.Without(include, extract.LocalCountry)
	}
	if len(out) == 0 {
		return nil, include
	}

	if rf := filters.Rating; rf != nil {
		out = keep(out, func(it catalog.Item) bool {
			return rf.Allows(it.Rating)
		})
	}
	if len(out) == 0 {
		return nil, include
	}
	return out, include
}

func keep(items []catalog.Item, pred func(catalog.Item) bool) []catalog.Item {
	var out []catalog.Item
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}
