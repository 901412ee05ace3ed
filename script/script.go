// Package script classifies Myanmar text as Legacy (Zawgyi) or Unicode
// encoded. The probability model itself is pluggable through Scorer; this
// package owns the code-point pre-filter and the label threshold.
package script

import "unicode"

// Label is the encoding a text sample was authored in.
type Label int

const (
	Unicode Label = iota
	Legacy
)

func (l Label) String() string {
	switch l {
	case Legacy:
		return "legacy"
	case Unicode:
		return "unicode"
	}
	return "unknown"
}

// Other returns the opposite label.
func (l Label) Other() Label {
	if l == Legacy {
		return Unicode
	}
	return Legacy
}

// ParseLabel accepts "legacy", "zawgyi", "unicode" and "uni".
func ParseLabel(s string) (Label, bool) {
	switch s {
	case "legacy", "zawgyi", "zg":
		return Legacy, true
	case "unicode", "uni":
		return Unicode, true
	}
	return Unicode, false
}

// Myanmar covers the two blocks the classifier is meaningful for:
// Myanmar (U+1000-U+109F) and Myanmar Extended-A (U+AA60-U+AA7F).
var Myanmar = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x1000, Hi: 0x109f, Stride: 1},
		{Lo: 0xaa60, Hi: 0xaa7f, Stride: 1},
	},
}

// ContainsMyanmar reports whether s has at least one code point in the
// Myanmar ranges.
func ContainsMyanmar(s string) bool {
	for _, r := range s {
		if r < 0x1000 {
			continue
		}
		if unicode.Is(Myanmar, r) {
			return true
		}
	}
	return false
}
