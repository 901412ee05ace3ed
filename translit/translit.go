// Package translit converts Myanmar text between the Legacy (Zawgyi) and
// Unicode encodings. Converter is the contract the engine consumes; Rules
// is a table-driven implementation loaded from YAML.
package translit

import "github.com/hazyhaar/mmfont/script"

// Converter rewrites text between the two encodings. Implementations must
// be exact inverses on valid input.
type Converter interface {
	LegacyToUnicode(text string) string
	UnicodeToLegacy(text string) string
}

// To converts text authored as from into the encoding to. Equal labels
// return text unchanged.
func To(c Converter, from, to script.Label, text string) string {
	if from == to {
		return text
	}
	if from == script.Legacy {
		return c.LegacyToUnicode(text)
	}
	return c.UnicodeToLegacy(text)
}
