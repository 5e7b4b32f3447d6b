package normalize

import (
	"strings"
	"unicode"
)

// Key reduces a title to lowercase letters and digits separated by single
// spaces, so punctuation a speaker would never pronounce does not block a
// match ("Dune: Messiah!" and "dune messiah" share a key).
func Key(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))

	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		if unicode.IsSpace(r) && !prevSpace {
			b.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
