package scoring

import (
	"strings"

	"perfume-recommender/backend/internal/catalog"
	"perfume-recommender/backend/internal/extract"
	"perfume-recommender/backend/internal/match"
)

// Cosine returns the cosine similarity of a and b, clamped to [0, 1] for
// non-negative vectors. A zero vector scores 0.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	sim := a.Dot(b) / (na * nb)
	if sim > 1 {
		return 1
	}
	if sim < 0 {
		return 0
	}
	return sim
}

// CosineEngine ranks rows by cosine similarity between TF-IDF vectors of the
// query keywords and of each row's features.
type CosineEngine struct {
	catalog    *catalog.Catalog
	extractor  extract.FilterExtractor
	vectorizer *Vectorizer
}

// NewCosineEngine fits the vectorizer over every row of cat. A nil extractor
// selects the pattern extractor over the catalog's countries.
func NewCosineEngine(cat *catalog.Catalog, ex extract.FilterExtractor) *CosineEngine {
	docs := make([]string, 0, cat.Len())
	for _, it := range cat.Items() {
		docs = append(docs, it.CombinedFeatures)
	}
	return &CosineEngine{
		catalog:    cat,
		extractor:  defaultExtractor(cat, ex),
		vectorizer: FitVectorizer(docs),
	}
}

// Name implements Engine.
func (e *CosineEngine) Name() string { return EngineCosine }

// Catalog implements Engine.
func (e *CosineEngine) Catalog() *catalog.Catalog { return e.catalog }

// Vectorizer exposes the fitted vectorizer.
func (e *CosineEngine) Vectorizer() *Vectorizer { return e.vectorizer }

// Recommend scores the filtered rows, then drops excluded rows and ranks the
// rest.
func (e *CosineEngine) Recommend(q Query) Outcome {
	p := prepare(e.catalog, e.extractor, q)
	if p.reason != ReasonNone {
		return p.outcome(nil, p.reason)
	}

	docs := make([]string, len(p.candidates))
	for i, it := range p.candidates {
		docs[i] = it.CombinedFeatures
	}
	rows := e.vectorizer.TransformAll(docs)
	user := e.vectorizer.Transform(strings.Join(p.include, match.FeatureDelimiter))

	scored := make([]Result, len(p.candidates))
	for i, it := range p.candidates {
		scored[i] = Result{Item: it, Score: Cosine(user, rows[i])}
	}

	ex := newExclusion(p.exclude)
	results := scored[:0]
	for _, r := range scored {
		if !ex.rejects(r.Item) {
			results = append(results, r)
		}
	}
	if len(results) == 0 {
		return p.outcome(nil, ReasonAllExcluded)
	}
	return p.outcome(Rank(results, q.limit()), ReasonNone)
}
