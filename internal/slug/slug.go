// Package slug derives URL-safe identifiers from titles and names.
//
// The derivation is lossy: text is decomposed, diacritics are stripped,
// anything outside [a-z0-9] collapses into single hyphens.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Make normalizes s into a slug. The result may be empty when s contains
// no ASCII-representable characters.
func Make(s string) string {
	normalized, _, err := transform.String(stripMarks, s)
	if err != nil {
		normalized = s
	}

	var b strings.Builder
	b.Grow(len(normalized))
	lastHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(normalized) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
