package scoring

import (
	"perfume-recommender/backend/internal/catalog"
	"perfume-recommender/backend/internal/extract"
	"perfume-recommender/backend/internal/match"
)

// Jaccard computes |A∩B| / |A∪B| over the token sets of a and b. Two empty
// sets score 0.
func Jaccard(a, b []string) float64 {
	setA, setB := match.TokenSet(a), match.TokenSet(b)

	intersection := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// JaccardEngine ranks rows by keyword set overlap with the query.
type JaccardEngine struct {
	catalog   *catalog.Catalog
	extractor extract.FilterExtractor
}

// NewJaccardEngine builds an engine over cat. A nil extractor selects the
// pattern extractor over the catalog's countries.
func NewJaccardEngine(cat *catalog.Catalog, ex extract.FilterExtractor) *JaccardEngine {
	return &JaccardEngine{catalog: cat, extractor: defaultExtractor(cat, ex)}
}

// Name implements Engine.
func (e *JaccardEngine) Name() string { return EngineJaccard }

// Catalog implements Engine.
func (e *JaccardEngine) Catalog() *catalog.Catalog { return e.catalog }

// Recommend drops excluded rows from the filtered set, then scores and ranks
// the rest.
func (e *JaccardEngine) Recommend(q Query) Outcome {
	p := prepare(e.catalog, e.extractor, q)
	if p.reason != ReasonNone {
		return p.outcome(nil, p.reason)
	}

	ex := newExclusion(p.exclude)
	results := make([]Result, 0, len(p.candidates))
	for _, it := range p.candidates {
		if ex.rejects(it) {
			continue
		}
		results = append(results, Result{Item: it, Score: Jaccard(p.include, it.Features())})
	}
	if len(results) == 0 {
		return p.outcome(nil, ReasonAllExcluded)
	}
	return p.outcome(Rank(results, q.limit()), ReasonNone)
}
