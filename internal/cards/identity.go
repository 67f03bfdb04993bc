// Package cards holds card identities, card attributes and the catalog of
// cards known for a format.
package cards

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Identity is the canonical key of a logical card. Printings, foils and
// alternate art share one identity, and so do accented and unaccented
// spellings of the same name.
type Identity string

func (id Identity) String() string { return string(id) }

// FrontFace returns the name of the front face of a double-faced or split
// card ("Delver of Secrets // Insectile Aberration" → "Delver of Secrets").
func FrontFace(name string) string {
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return strings.TrimSpace(name)
}

// Fold normalizes free text for case and accent insensitive comparison.
// The result is not trimmed to a front face.
func Fold(s string) string {
	// Transformers keep state, so build them per call.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(cases.Fold().String(stripped)), " ")
}

// IdentityOf derives the identity of a card name.
func IdentityOf(name string) Identity {
	return Identity(Fold(FrontFace(name)))
}

var basicLands = map[Identity]bool{
	"plains":   true,
	"island":   true,
	"swamp":    true,
	"mountain": true,
	"forest":   true,
	"wastes":   true,
}

// IsBasicLand reports whether id names a basic land, snow-covered included.
func IsBasicLand(id Identity) bool {
	return basicLands[Identity(strings.TrimPrefix(string(id), "snow-covered "))]
}
