package probe

import (
	"context"
	"fmt"
)

// Static is a Measurer with fixed widths, for hosts that cannot render.
type Static map[Sample]float64

func (s Static) Width(_ context.Context, sample Sample) (float64, error) {
	w, ok := s[sample]
	if !ok {
		return 0, fmt.Errorf("probe: no width for %s", sample)
	}
	return w, nil
}

// StaticFor synthesises the widths a device with the given native profile
// would report, with or without working font substitution.
func StaticFor(native Profile, embed bool) Static {
	const unit, wide = 10, 25
	s := Static{SampleReference: unit}
	switch native {
	case NativeLegacy:
		s[SampleAmbiguous] = wide
		s[SampleLegacy] = wide
		s[SampleUnicode] = wide
		if embed {
			s[SampleUnicode] = unit
		}
	default:
		s[SampleAmbiguous] = unit
		s[SampleUnicode] = unit
		s[SampleLegacy] = unit
		if embed {
			s[SampleLegacy] = wide
		}
	}
	return s
}
