package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/hazyhaar/mmfont/script"
)

func TestNativeEncoding(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		m    Static
		want Profile
	}{
		{"unicode device", StaticFor(NativeUnicode, false), NativeUnicode},
		{"legacy device", StaticFor(NativeLegacy, false), NativeLegacy},
		{"exactly double", Static{SampleReference: 10, SampleAmbiguous: 20}, NativeLegacy},
		{"just under double", Static{SampleReference: 10, SampleAmbiguous: 19.9}, NativeUnicode},
		{"zero widths", Static{SampleReference: 0, SampleAmbiguous: 0}, NativeUnicode},
		{"missing sample", Static{SampleReference: 10}, NativeUnicode},
	}
	for _, tc := range cases {
		p := New(tc.m, Thresholds{}, nil)
		if got := p.NativeEncoding(ctx); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEmbeddingCapability(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name   string
		native Profile
		m      Static
		want   Capability
	}{
		{"unicode device, face applied", NativeUnicode, StaticFor(NativeUnicode, true), Supported},
		{"unicode device, no face", NativeUnicode, StaticFor(NativeUnicode, false), Unsupported},
		{"legacy device, face applied", NativeLegacy, StaticFor(NativeLegacy, true), Supported},
		{"legacy device, no face", NativeLegacy, StaticFor(NativeLegacy, false), Unsupported},
		{"unicode device, within one unit", NativeUnicode,
			Static{SampleReference: 10, SampleLegacy: 19}, Unsupported},
		{"unicode device, one unit apart", NativeUnicode,
			Static{SampleReference: 10, SampleLegacy: 20}, Supported},
		{"probe removed", NativeUnicode, Static{}, Unsupported},
		{"legacy device, marked sample missing", NativeLegacy,
			Static{SampleReference: 10}, Unsupported},
	}
	for _, tc := range cases {
		p := New(tc.m, Thresholds{}, nil)
		if got := p.EmbeddingCapability(ctx, tc.native); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestThresholdsConfigurable(t *testing.T) {
	ctx := context.Background()
	m := Static{SampleReference: 10, SampleAmbiguous: 15}
	if got := New(m, Thresholds{}, nil).NativeEncoding(ctx); got != NativeUnicode {
		t.Errorf("default ratio: got %v", got)
	}
	if got := New(m, Thresholds{LegacyRatio: 1.4}, nil).NativeEncoding(ctx); got != NativeLegacy {
		t.Errorf("ratio 1.4: got %v", got)
	}
}

type scaffoldMeasurer struct {
	Static
	installed, removed int
}

func (s *scaffoldMeasurer) Install(context.Context) error { s.installed++; return nil }
func (s *scaffoldMeasurer) Remove(context.Context) error  { s.removed++; return errors.New("gone") }

func TestScaffold(t *testing.T) {
	ctx := context.Background()
	m := &scaffoldMeasurer{Static: StaticFor(NativeUnicode, true)}
	p := New(m, Thresholds{}, nil)
	if err := p.Install(ctx); err != nil {
		t.Fatal(err)
	}
	if err := p.Remove(ctx); err == nil {
		t.Error("Remove: expected measurer error to surface")
	}
	if m.installed != 1 || m.removed != 1 {
		t.Errorf("scaffold calls: installed=%d removed=%d", m.installed, m.removed)
	}

	plain := New(StaticFor(NativeUnicode, true), Thresholds{}, nil)
	if err := plain.Install(ctx); err != nil {
		t.Errorf("Install without scaffold: %v", err)
	}
}

func TestSamples(t *testing.T) {
	if SampleReference.Text() == SampleAmbiguous.Text() {
		t.Error("reference and ambiguous samples share text")
	}
	if l, ok := SampleLegacy.Marker(); !ok || l != script.Legacy {
		t.Errorf("SampleLegacy.Marker: got %v %v", l, ok)
	}
	if _, ok := SampleAmbiguous.Marker(); ok {
		t.Error("SampleAmbiguous carries a marker")
	}
	if NativeLegacy.Label() != script.Legacy || ProfileOf(script.Unicode) != NativeUnicode {
		t.Error("profile/label mapping broken")
	}
	if len(Samples) != 4 {
		t.Errorf("Samples: got %d", len(Samples))
	}
}
