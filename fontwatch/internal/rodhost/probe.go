package rodhost

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/mmfont/probe"
	"github.com/hazyhaar/mmfont/script"
)

// Probe measures the probe samples as hidden paragraphs appended to the
// page body. It implements probe.Measurer and probe.Scaffold.
type Probe struct {
	page         *rod.Page
	legacyClass  string
	unicodeClass string
	attr         string
}

var (
	_ probe.Measurer = (*Probe)(nil)
	_ probe.Scaffold = (*Probe)(nil)
)

// NewProbe creates a Probe. The classes must be the marker classes the
// engine uses, and attr its probe attribute.
func NewProbe(page *rod.Page, legacyClass, unicodeClass, attr string) *Probe {
	return &Probe{page: page, legacyClass: legacyClass, unicodeClass: unicodeClass, attr: attr}
}

type sampleSpec struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Text  string `json:"text"`
	Class string `json:"class,omitempty"`
}

func (p *Probe) specs() []sampleSpec {
	out := make([]sampleSpec, 0, len(probe.Samples))
	for _, s := range probe.Samples {
		spec := sampleSpec{ID: s.ID(), Name: s.String(), Text: s.Text()}
		if l, ok := s.Marker(); ok {
			spec.Class = p.unicodeClass
			if l == script.Legacy {
				spec.Class = p.legacyClass
			}
		}
		out = append(out, spec)
	}
	return out
}

const installJS = `(attr, specs) => {
	for (const s of specs) {
		if (document.getElementById(s.id)) continue;
		const p = document.createElement("p");
		p.id = s.id;
		p.textContent = s.text;
		p.setAttribute(attr, s.name);
		if (s.class) p.classList.add(s.class);
		p.style.position = "absolute";
		p.style.visibility = "hidden";
		p.style.whiteSpace = "nowrap";
		document.body.appendChild(p);
	}
}`

func (p *Probe) Install(ctx context.Context) error {
	if _, err := p.page.Context(ctx).Eval(installJS, p.attr, p.specs()); err != nil {
		return fmt.Errorf("rodhost: install probes: %w", err)
	}
	return nil
}

func (p *Probe) Width(ctx context.Context, s probe.Sample) (float64, error) {
	res, err := p.page.Context(ctx).Eval(`id => {
		const e = document.getElementById(id);
		return e ? e.getBoundingClientRect().width : -1;
	}`, s.ID())
	if err != nil {
		return 0, fmt.Errorf("rodhost: measure %s: %w", s, err)
	}
	w := res.Value.Num()
	if w < 0 {
		return 0, fmt.Errorf("rodhost: probe %s not installed", s)
	}
	return w, nil
}

func (p *Probe) Remove(ctx context.Context) error {
	if _, err := p.page.Context(ctx).Eval(`attr => {
		document.querySelectorAll("[" + attr + "]").forEach(e => e.remove());
	}`, p.attr); err != nil {
		return fmt.Errorf("rodhost: remove probes: %w", err)
	}
	return nil
}
