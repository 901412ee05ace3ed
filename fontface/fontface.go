// Package fontface renders the stylesheet that binds the marker classes
// to the legacy and Unicode font families.
package fontface

import (
	"fmt"
	"strings"
)

// Faces names the substitute fonts.
type Faces struct {
	// LegacyURL and UnicodeURL locate the font files. Empty leaves the
	// class bound to the family name only, for fonts installed locally.
	LegacyURL  string
	UnicodeURL string
	// Family names. Defaults: "Zawgyi-One", "Pyidaungsu".
	LegacyFamily  string
	UnicodeFamily string
}

func (f *Faces) defaults() {
	if f.LegacyFamily == "" {
		f.LegacyFamily = "Zawgyi-One"
	}
	if f.UnicodeFamily == "" {
		f.UnicodeFamily = "Pyidaungsu"
	}
}

// CSS renders @font-face rules for the faces with a URL and the rules
// binding legacyClass and unicodeClass to their families.
func (f Faces) CSS(legacyClass, unicodeClass string) string {
	f.defaults()
	var sb strings.Builder
	face := func(family, url string) {
		if url == "" {
			return
		}
		fmt.Fprintf(&sb, "@font-face { font-family: %s; src: url(%s); }\n", Quote(family), Quote(url))
	}
	face(f.LegacyFamily, f.LegacyURL)
	face(f.UnicodeFamily, f.UnicodeURL)
	bind := func(class, family string) {
		c := Ident(class)
		fmt.Fprintf(&sb, ".%s, .%s * { font-family: %s !important; }\n", c, c, Quote(family))
	}
	bind(legacyClass, f.LegacyFamily)
	bind(unicodeClass, f.UnicodeFamily)
	return sb.String()
}

// Quote returns s as a double-quoted CSS string. Quotes, backslashes,
// control characters and '<' are written as hex escapes, so the result
// is also safe inside an HTML <style> element.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"', r == '\\', r == '<', r == '>', r < 0x20, r == 0x7f:
			fmt.Fprintf(&sb, "\\%x ", r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// Ident escapes s for use as a CSS class selector.
func Ident(s string) string {
	var sb strings.Builder
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '-', r >= 0x80:
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				fmt.Fprintf(&sb, "\\%x ", r)
			} else {
				sb.WriteRune(r)
			}
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, "\\%x ", r)
		default:
			sb.WriteByte('\\')
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
