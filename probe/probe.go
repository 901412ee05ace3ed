// Package probe infers which Myanmar encoding the device font renders and
// whether substituted font faces took effect. Neither is observable
// directly; both are read off glyph widths of a few probe samples.
package probe

import (
	"context"
	"log/slog"
	"math"

	"github.com/hazyhaar/mmfont/script"
)

// Profile is the encoding the device's default font renders natively.
type Profile int

const (
	NativeUnicode Profile = iota
	NativeLegacy
)

// Label returns the classification label that renders without help.
func (p Profile) Label() script.Label {
	if p == NativeLegacy {
		return script.Legacy
	}
	return script.Unicode
}

func (p Profile) String() string {
	if p == NativeLegacy {
		return "native-legacy"
	}
	return "native-unicode"
}

// ProfileOf returns the profile whose native label is l.
func ProfileOf(l script.Label) Profile {
	if l == script.Legacy {
		return NativeLegacy
	}
	return NativeUnicode
}

// Capability is whether substituted font faces render on this device.
type Capability int

const (
	Unknown Capability = iota
	Supported
	Unsupported
)

func (c Capability) String() string {
	switch c {
	case Supported:
		return "supported"
	case Unsupported:
		return "unsupported"
	}
	return "unknown"
}

// Measurer returns the rendered width of a probe sample.
type Measurer interface {
	Width(ctx context.Context, s Sample) (float64, error)
}

// Scaffold is implemented by measurers that need probe elements placed
// in the document before measuring and taken out afterwards.
type Scaffold interface {
	Install(ctx context.Context) error
	Remove(ctx context.Context) error
}

// Thresholds are empirically tuned and need calibration per rendering stack.
type Thresholds struct {
	// LegacyRatio: the ambiguous sample at this multiple of the reference
	// width or wider means the device font is legacy. Default: 2.
	LegacyRatio float64 `yaml:"legacy_ratio"`
	// EqualEpsilon is the tolerance for "same width" comparisons. Default: 0.5.
	EqualEpsilon float64 `yaml:"equal_epsilon"`
	// SubstitutionUnits: on a Unicode device, the legacy-marked sample must
	// differ from the reference by at least this many reference widths for
	// substitution to count as applied. Default: 1.
	SubstitutionUnits float64 `yaml:"substitution_units"`
}

// DefaultThresholds returns the calibrated defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{LegacyRatio: 2, EqualEpsilon: 0.5, SubstitutionUnits: 1}
}

func (t *Thresholds) defaults() {
	d := DefaultThresholds()
	if t.LegacyRatio <= 0 {
		t.LegacyRatio = d.LegacyRatio
	}
	if t.EqualEpsilon <= 0 {
		t.EqualEpsilon = d.EqualEpsilon
	}
	if t.SubstitutionUnits <= 0 {
		t.SubstitutionUnits = d.SubstitutionUnits
	}
}

// Probe runs the capability measurements against one Measurer.
type Probe struct {
	m      Measurer
	th     Thresholds
	logger *slog.Logger
}

// New creates a Probe. Zero thresholds take their defaults.
func New(m Measurer, th Thresholds, logger *slog.Logger) *Probe {
	th.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Probe{m: m, th: th, logger: logger}
}

// Install places probe scaffolding, if the measurer needs any.
func (p *Probe) Install(ctx context.Context) error {
	if s, ok := p.m.(Scaffold); ok {
		return s.Install(ctx)
	}
	return nil
}

// Remove takes probe scaffolding out again.
func (p *Probe) Remove(ctx context.Context) error {
	if s, ok := p.m.(Scaffold); ok {
		return s.Remove(ctx)
	}
	return nil
}

func (p *Probe) width(ctx context.Context, s Sample) (float64, bool) {
	w, err := p.m.Width(ctx, s)
	if err != nil {
		p.logger.Warn("probe: measure failed", "sample", s, "error", err)
		return 0, false
	}
	if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		p.logger.Warn("probe: unusable width", "sample", s, "width", w)
		return 0, false
	}
	return w, true
}

// NativeEncoding compares the ambiguous sample with the reference under
// the device's default font. A legacy font draws the ambiguous code point
// as a multi-glyph cluster, roughly double width or more. Any measurement
// failure yields NativeUnicode.
func (p *Probe) NativeEncoding(ctx context.Context) Profile {
	ref, ok := p.width(ctx, SampleReference)
	if !ok {
		return NativeUnicode
	}
	amb, ok := p.width(ctx, SampleAmbiguous)
	if !ok {
		return NativeUnicode
	}

	profile := NativeLegacy
	if p.same(amb, ref) || amb < ref*p.th.LegacyRatio {
		profile = NativeUnicode
	}
	p.logger.Debug("probe: native encoding", "reference", ref, "ambiguous", amb, "profile", profile)
	return profile
}

// EmbeddingCapability re-measures the marked samples once styling has
// applied. Any measurement failure yields Unsupported.
func (p *Probe) EmbeddingCapability(ctx context.Context, profile Profile) Capability {
	ref, ok := p.width(ctx, SampleReference)
	if !ok {
		return Unsupported
	}

	capability := Supported
	switch profile {
	case NativeLegacy:
		// The Unicode face draws the ambiguous code point as one glyph.
		uni, ok := p.width(ctx, SampleUnicode)
		if !ok || !p.same(uni, ref) {
			capability = Unsupported
		}
		p.logger.Debug("probe: embedding", "reference", ref, "unicode_marked", uni, "capability", capability)
	default:
		zg, ok := p.width(ctx, SampleLegacy)
		if !ok || math.Abs(zg-ref) < ref*p.th.SubstitutionUnits {
			capability = Unsupported
		}
		p.logger.Debug("probe: embedding", "reference", ref, "legacy_marked", zg, "capability", capability)
	}
	return capability
}

func (p *Probe) same(a, b float64) bool {
	return math.Abs(a-b) <= p.th.EqualEpsilon
}
