package scoring

import (
	"regexp"
	"sort"

	"perfume-recommender/backend/internal/catalog"
	"perfume-recommender/backend/internal/match"
)

// Rank orders results by descending score and keeps the first n. Equal
// scores keep their catalog order.
func Rank(results []Result, n int) []Result {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if n > 0 && len(results) > n {
		results = results[:n]
	}
	return results
}

// exclusion removes rows whose features mention an excluded keyword as a
// whole word, unlike inclusion which matches substrings.
type exclusion []*regexp.Regexp

func newExclusion(keywords []string) exclusion {
	var ex exclusion
	for _, kw := range keywords {
		if re := match.CompileWholeWord(kw); re != nil {
			ex = append(ex, re)
		}
	}
	return ex
}

func (ex exclusion) rejects(it catalog.Item) bool {
	for _, re := range ex {
		if re.MatchString(it.CombinedFeatures) {
			return true
		}
	}
	return false
}
