// Package sfntmeasure measures probe samples from font files instead of a
// live renderer: the width of a sample is the sum of its glyph advances in
// whichever face would be applied to it.
package sfntmeasure

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/hazyhaar/mmfont/probe"
	"github.com/hazyhaar/mmfont/script"
)

// DefaultPPEM is the pixel size samples are measured at.
const DefaultPPEM = 16

// Measurer implements probe.Measurer over parsed fonts. Legacy and Unicode
// are the substitute faces bound to the markers; a nil face means the
// substitution did not load and the device face is used instead.
type Measurer struct {
	Device  *sfnt.Font
	Legacy  *sfnt.Font
	Unicode *sfnt.Font
	PPEM    int
}

var _ probe.Measurer = (*Measurer)(nil)

// Width implements probe.Measurer.
func (m *Measurer) Width(_ context.Context, s probe.Sample) (float64, error) {
	f := m.face(s)
	if f == nil {
		return 0, fmt.Errorf("sfntmeasure: no device font")
	}
	ppem := m.PPEM
	if ppem <= 0 {
		ppem = DefaultPPEM
	}
	return Advance(f, s.Text(), ppem)
}

func (m *Measurer) face(s probe.Sample) *sfnt.Font {
	if label, ok := s.Marker(); ok {
		if label == script.Legacy && m.Legacy != nil {
			return m.Legacy
		}
		if label == script.Unicode && m.Unicode != nil {
			return m.Unicode
		}
	}
	return m.Device
}

// Advance returns the summed horizontal advance of text in pixels. Runes
// the font lacks are measured as its .notdef glyph, like a browser would.
func Advance(f *sfnt.Font, text string, ppem int) (float64, error) {
	var buf sfnt.Buffer
	var total fixed.Int26_6
	for _, r := range text {
		gid, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return 0, fmt.Errorf("sfntmeasure: glyph index %U: %w", r, err)
		}
		adv, err := f.GlyphAdvance(&buf, gid, fixed.I(ppem), font.HintingNone)
		if err != nil {
			return 0, fmt.Errorf("sfntmeasure: advance %U: %w", r, err)
		}
		total += adv
	}
	return float64(total) / 64, nil
}

// ParseFile reads and parses a TrueType/OpenType font.
func ParseFile(path string) (*sfnt.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sfntmeasure: read font: %w", err)
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("sfntmeasure: parse font %s: %w", path, err)
	}
	return f, nil
}

// Load parses the device font and the optional substitute faces. Empty
// paths leave the corresponding face nil.
func Load(device, legacy, unicode string) (*Measurer, error) {
	m := &Measurer{PPEM: DefaultPPEM}
	var err error
	if m.Device, err = ParseFile(device); err != nil {
		return nil, err
	}
	if legacy != "" {
		if m.Legacy, err = ParseFile(legacy); err != nil {
			return nil, err
		}
	}
	if unicode != "" {
		if m.Unicode, err = ParseFile(unicode); err != nil {
			return nil, err
		}
	}
	return m, nil
}
