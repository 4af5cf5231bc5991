package match

import (
	"regexp"
	"strings"
)

// SubstringMatch reports whether token occurs anywhere inside text. It does
// not respect word boundaries: "rose" matches "primrose". Keyword inclusion
// relies on this mode.
func SubstringMatch(text, token string) bool {
	if token == "" {
		return false
	}
	return strings.Contains(text, token)
}

// WholeWordMatch reports whether token occurs in text delimited by word
// boundaries, ignoring case. Keyword exclusion relies on this mode.
func WholeWordMatch(text, token string) bool {
	re := CompileWholeWord(token)
	if re == nil {
		return false
	}
	return re.MatchString(text)
}

// Word characters are Unicode letters, digits and underscore, so accented
// tokens such as "café" get boundaries too. RE2's \b only knows ASCII.
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{N}_])`
)

// CompileWholeWord returns the case-insensitive word-boundary pattern used by
// WholeWordMatch, or nil for an empty token.
func CompileWholeWord(token string) *regexp.Regexp {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return regexp.MustCompile(`(?i)` + wordStart + regexp.QuoteMeta(token) + wordEnd)
}
