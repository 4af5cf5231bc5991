package scoring

import (
	"strings"

	"perfume-recommender/backend/internal/catalog"
	"perfume-recommender/backend/internal/extract"
)

// DefaultTopN is the number of results kept when a query does not say.
const DefaultTopN = 3

// Engine names.
const (
	EngineJaccard = "jaccard"
	EngineCosine  = "cosine"
)

// Query is a single recommendation request.
type Query struct {
	Gender      string
	TimeUsage   string
	Description string
	Exclusion   string
	TopN        int
}

func (q Query) limit() int {
	if q.TopN <= 0 {
		return DefaultTopN
	}
	return q.TopN
}

// Result is a catalog item with the similarity assigned by an engine.
type Result struct {
	Item  catalog.Item
	Score float64
}

// Reason explains an empty outcome.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonEmptyDescription Reason = "empty_description"
	ReasonNoCandidates     Reason = "no_candidates"
	ReasonNoKeywords       Reason = "no_keywords"
	ReasonAllExcluded      Reason = "all_excluded"
)

// Outcome is the answer to a Query. Empty Results means no recommendation,
// which is a normal answer rather than an error.
type Outcome struct {
	Results  []Result
	Keywords []string
	Excluded []string
	Filters  extract.Filters
	Reason   Reason
}

// Empty reports whether the outcome carries no recommendation.
func (o Outcome) Empty() bool {
	return len(o.Results) == 0
}

// Engine scores catalog rows against a query. Implementations hold no
// per-query state and are safe for concurrent use.
type Engine interface {
	Name() string
	Catalog() *catalog.Catalog
	Recommend(q Query) Outcome
}

// plan is the filtered candidate set and keyword sets shared by the engines.
type plan struct {
	candidates []catalog.Item
	include    []string
	exclude    []string
	filters    extract.Filters
	reason     Reason
}

func (p plan) outcome(results []Result, reason Reason) Outcome {
	return Outcome{
		Results:  results,
		Keywords: p.include,
		Excluded: p.exclude,
		Filters:  p.filters,
		Reason:   reason,
	}
}

func prepare(cat *catalog.Catalog, ex extract.FilterExtractor, q Query) plan {
	if strings.TrimSpace(q.Description) == "" {
		return plan{reason: ReasonEmptyDescription}
	}
	vocab := cat.Vocabulary()
	p := plan{
		include: extract.Keywords(q.Description, vocab),
		exclude: extract.Keywords(q.Exclusion, vocab),
		filters: ex.ExtractFilters(q.Description),
	}
	p.candidates, p.include = ApplyFilters(cat.Items(), q, p.filters, p.include)
	switch {
	case len(p.candidates) == 0:
		p.reason = ReasonNoCandidates
	case len(p.include) == 0:
		p.reason = ReasonNoKeywords
	}
	return p
}

func defaultExtractor(cat *catalog.Catalog, ex extract.FilterExtractor) extract.FilterExtractor {
	if ex != nil {
		return ex
	}
	return extract.NewPatternExtractor(cat.Countries())
}
