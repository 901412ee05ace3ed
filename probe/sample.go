package probe

import (
	"fmt"

	"github.com/hazyhaar/mmfont/script"
)

// Sample identifies one of the four probe strings.
type Sample int

const (
	// SampleReference is U+1004, drawn the same under either encoding.
	SampleReference Sample = iota
	// SampleAmbiguous is U+104E under the default font: one glyph in
	// Unicode, a four-glyph ligature in legacy fonts.
	SampleAmbiguous
	// SampleLegacy is U+104E under the legacy marker.
	SampleLegacy
	// SampleUnicode is U+104E under the Unicode marker.
	SampleUnicode
)

// Samples lists every probe sample in installation order.
var Samples = []Sample{SampleAmbiguous, SampleReference, SampleLegacy, SampleUnicode}

// Text is the probe string rendered for the sample.
func (s Sample) Text() string {
	if s == SampleReference {
		return "\u1004"
	}
	return "\u104e"
}

// Marker reports which marker the sample is rendered under, if any.
func (s Sample) Marker() (script.Label, bool) {
	switch s {
	case SampleLegacy:
		return script.Legacy, true
	case SampleUnicode:
		return script.Unicode, true
	}
	return script.Unicode, false
}

// ID is the element id hosts give the sample's probe element.
func (s Sample) ID() string {
	return "mmfont-probe-" + s.String()
}

func (s Sample) String() string {
	switch s {
	case SampleReference:
		return "reference"
	case SampleAmbiguous:
		return "ambiguous"
	case SampleLegacy:
		return "legacy"
	case SampleUnicode:
		return "unicode"
	}
	return fmt.Sprintf("sample(%d)", int(s))
}
