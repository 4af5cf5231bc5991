package scoring

import (
	"math"
	"sort"

	"perfume-recommender/backend/internal/match"
)

// Vector is a sparse term-weight vector keyed by vocabulary index.
type Vector map[int]float64

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	sum := 0.0
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Dot returns the inner product of v and o.
func (v Vector) Dot(o Vector) float64 {
	if len(o) < len(v) {
		v, o = o, v
	}
	sum := 0.0
	for idx, w := range v {
		sum += w * o[idx]
	}
	return sum
}

// Vectorizer maps CombinedFeatures text to TF-IDF vectors. Each keyword
// phrase is one term. A fitted Vectorizer is read-only.
type Vectorizer struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
}

// FitVectorizer learns the vocabulary and smoothed inverse document
// frequencies, ln((1+n)/(1+df)) + 1, of docs.
func FitVectorizer(docs []string) *Vectorizer {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range match.SplitFeatures(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v := &Vectorizer{
		vocabulary: make(map[string]int, len(terms)),
		terms:      terms,
		idf:        make([]float64, len(terms)),
	}
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v
}

// Len returns the number of known terms.
func (v *Vectorizer) Len() int {
	return len(v.terms)
}

// IDF returns the inverse document frequency of term.
func (v *Vectorizer) IDF(term string) (float64, bool) {
	idx, ok := v.vocabulary[term]
	if !ok {
		return 0, false
	}
	return v.idf[idx], true
}

// Transform returns the L2-normalised TF-IDF vector of doc using raw term
// counts. Unknown terms are ignored; a doc with none yields an empty vector.
func (v *Vectorizer) Transform(doc string) Vector {
	vec := make(Vector)
	for _, tok := range match.SplitFeatures(doc) {
		if idx, ok := v.vocabulary[tok]; ok {
			vec[idx]++
		}
	}
	for idx, count := range vec {
		vec[idx] = count * v.idf[idx]
	}
	if norm := vec.Norm(); norm > 0 {
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

// TransformAll transforms every doc.
func (v *Vectorizer) TransformAll(docs []string) []Vector {
	out := make([]Vector, len(docs))
	for i, doc := range docs {
		out[i] = v.Transform(doc)
	}
	return out
}
