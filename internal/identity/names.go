// Package identity provides helpers for working with identity display
// names coming from different enrollment sources.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics removes diacritical marks (e.g. "Jiří" -> "Jiri").
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// FoldName folds a display name for comparison: lowercase, no
// diacritics, dashes as spaces, collapsed whitespace. Enrollment
// sources disagree on slug vs display formats ("jan-novak" must equal
// "Jan Novák").
func FoldName(name string) string {
	name = stripDiacritics(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	return strings.Join(strings.Fields(name), " ")
}
