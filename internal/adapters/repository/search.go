package repository

import (
	"strings"
	"unicode"
)

// normalizeSearch turns free text into an FTS5 query that requires every
// word, the way plainto_tsquery treats its input. Punctuation separates
// words and never reaches the MATCH syntax. ok is false when no word is left.
func normalizeSearch(text string) (query string, ok bool) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return "", false
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = `"` + w + `"`
	}
	return strings.Join(quoted, " "), true
}
