package match

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FeatureDelimiter separates keyword phrases inside a CombinedFeatures value.
const FeatureDelimiter = ", "

var (
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}]`)
	whitespace  = regexp.MustCompile(`[\s\p{Z}]+`)
)

// Preprocess lowercases free text, replaces punctuation with spaces and
// collapses runs of whitespace.
func Preprocess(text string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(norm.NFKC.String(text))
	lower = punctuation.ReplaceAllString(lower, " ")
	lower = whitespace.ReplaceAllString(lower, " ")
	return strings.TrimSpace(lower)
}

// SplitFeatures tokenizes a CombinedFeatures value into lowercase keyword
// phrases. A phrase may contain spaces ("white musk" is one token).
func SplitFeatures(features string) []string {
	if strings.TrimSpace(features) == "" {
		return nil
	}
	parts := strings.Split(strings.ToLower(features), FeatureDelimiter)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// TokenSet builds a set from the supplied tokens.
func TokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}
