package features

import (
	"strings"
	"unicode"
)

// normalizeWords lowercases s and collapses every run of non-alphanumeric
// characters into a single space, padding both ends so that whole-word
// lookups can be done with a plain substring search.
func normalizeWords(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(' ')
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}

// matchesWord reports whether any keyword (single word or phrase) appears in
// text as whole words. text must come from normalizeWords.
func matchesWord(text string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.TrimSpace(normalizeWords(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(text, " "+kw+" ") {
			return true
		}
	}
	return false
}
