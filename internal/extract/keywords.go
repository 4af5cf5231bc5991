package extract

import (
	"strings"

	"perfume-recommender/backend/internal/catalog"
	"perfume-recommender/backend/internal/match"
)

// LocalCountry is appended to texts that ask for local products.
const LocalCountry = "indonesia"

var localMarkers = []string{"lokal", "indo"}

// Keywords preprocesses text and returns the vocabulary tokens it mentions,
// in vocabulary order. A text mentioning a local marker also mentions
// LocalCountry.
func Keywords(text string, vocab catalog.Vocabulary) []string {
	return MatchVocabulary(WithLocalBias(match.Preprocess(text)), vocab)
}

// WithLocalBias appends LocalCountry to preprocessed text that contains a
// local marker.
func WithLocalBias(text string) string {
	for _, marker := range localMarkers {
		if strings.Contains(text, marker) {
			return text + " " + LocalCountry
		}
	}
	return text
}

// MatchVocabulary returns every vocabulary token found in text using
// substring matching, so "rose" is found inside "primrose".
func MatchVocabulary(text string, vocab catalog.Vocabulary) []string {
	if text == "" {
		return nil
	}
	var matched []string
	for _, tok := range vocab.Tokens() {
		if match.SubstringMatch(text, tok) {
			matched = append(matched, tok)
		}
	}
	return matched
}

// Without returns keywords minus every occurrence of drop.
func Without(keywords []string, drop string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw != drop {
			out = append(out, kw)
		}
	}
	return out
}

// Contains reports whether keywords holds kw.
func Contains(keywords []string, kw string) bool {
	for _, k := range keywords {
		if k == kw {
			return true
		}
	}
	return false
}
