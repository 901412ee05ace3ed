package fontwatch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/mmfont/dom/htmldoc"
	"github.com/hazyhaar/mmfont/engine"
	"github.com/hazyhaar/mmfont/fontface"
	"github.com/hazyhaar/mmfont/probe"
	"github.com/hazyhaar/mmfont/probe/sfntmeasure"
	"github.com/hazyhaar/mmfont/report"
	"github.com/hazyhaar/mmfont/script"
	"github.com/hazyhaar/mmfont/translit"
)

// Normalizer holds the pieces shared by every page: the classifier, the
// converter and the measurer used when no browser renders the page.
type Normalizer struct {
	cls      *script.Classifier
	conv     translit.Converter
	offline  probe.Measurer
	th       probe.Thresholds
	engine   engine.Config
	faces    fontface.Faces
	logger   *slog.Logger
	rulesets string
}

// NewNormalizer builds a Normalizer from cfg. It fails when the rule file
// or a configured font cannot be loaded.
func NewNormalizer(cfg *Config, logger *slog.Logger) (*Normalizer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cls := script.NewClassifier(nil)
	if cfg.Classifier.Threshold > 0 {
		cls.Threshold = cfg.Classifier.Threshold
	}

	rules := translit.Default()
	if cfg.Rules != "" {
		r, err := translit.LoadFile(cfg.Rules)
		if err != nil {
			return nil, fmt.Errorf("fontwatch: rules: %w", err)
		}
		rules = r
	}

	m, err := offlineMeasurer(cfg.Offline)
	if err != nil {
		return nil, err
	}

	return &Normalizer{
		cls:     cls,
		conv:    rules,
		offline: m,
		th:      cfg.Probe,
		engine:  cfg.Engine,
		faces: fontface.Faces{
			LegacyURL:     cfg.Fonts.LegacyURL,
			UnicodeURL:    cfg.Fonts.UnicodeURL,
			LegacyFamily:  cfg.Fonts.LegacyFamily,
			UnicodeFamily: cfg.Fonts.UnicodeFamily,
		},
		logger:   logger,
		rulesets: rules.Name(),
	}, nil
}

// offlineMeasurer measures glyph advances of the configured device font,
// or falls back to the widths a device of the declared kind would give.
func offlineMeasurer(c OfflineConfig) (probe.Measurer, error) {
	if c.DeviceFont != "" {
		m, err := sfntmeasure.Load(c.DeviceFont, c.LegacyFont, c.UnicodeFont)
		if err != nil {
			return nil, fmt.Errorf("fontwatch: device font: %w", err)
		}
		if c.PPEM > 0 {
			m.PPEM = int(c.PPEM)
		}
		return m, nil
	}

	native := probe.NativeUnicode
	if c.Native != "" {
		l, ok := script.ParseLabel(c.Native)
		if !ok {
			return nil, fmt.Errorf("fontwatch: unknown native encoding %q", c.Native)
		}
		native = probe.ProfileOf(l)
	}
	var embed bool
	switch c.Embed {
	case "supported", "yes", "true":
		embed = true
	case "", "unsupported", "no", "false":
	default:
		return nil, fmt.Errorf("fontwatch: unknown embed capability %q", c.Embed)
	}
	return probe.StaticFor(native, embed), nil
}

// Result is the outcome of normalizing one static document.
type Result struct {
	Document   report.Document
	Native     probe.Profile
	Capability probe.Capability
	Stats      engine.Stats
}

// Normalize runs the whole pipeline over an HTML document in one pass:
// tagging, the settle checkpoint and the rendering of the result. When
// the device substitutes fonts, the marker stylesheet is added to the
// head so the markers left in the output take effect. Decisions go to
// onDecision when it is not nil.
func (n *Normalizer) Normalize(ctx context.Context, page PageConfig, html []byte, onDecision func(report.Decision)) (*Result, error) {
	doc, err := htmldoc.Parse(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("fontwatch: parse %s: %w", page.URL, err)
	}

	opts := []engine.Option{
		engine.WithConfig(n.engine),
		engine.WithLogger(n.logger),
		engine.WithPage(page.ID, page.URL),
	}
	if onDecision != nil {
		opts = append(opts, engine.WithReporter(onDecision))
	}
	e := engine.New(doc, n.cls, n.conv, probe.New(n.offline, n.th, n.logger), opts...)
	if err := e.Start(ctx); err != nil {
		return nil, fmt.Errorf("fontwatch: start %s: %w", page.URL, err)
	}
	if err := e.Settle(ctx); err != nil {
		return nil, fmt.Errorf("fontwatch: settle %s: %w", page.URL, err)
	}

	if e.Capability() == probe.Supported {
		css := n.faces.CSS(n.engine.LegacyClass, n.engine.UnicodeClass)
		if err := doc.AddStyle(css); err != nil {
			n.logger.Warn("fontwatch: add marker stylesheet", "url", page.URL, "error", err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return nil, fmt.Errorf("fontwatch: render %s: %w", page.URL, err)
	}
	out := buf.Bytes()

	st := e.Stats()
	n.logger.Info("fontwatch: normalized",
		"url", page.URL, "rules", n.rulesets, "native", e.Native(),
		"capability", e.Capability(), "converted", st.Converted, "marked", st.Marked)

	return &Result{
		Document: report.Document{
			ID:        report.NewID(),
			PageURL:   page.URL,
			PageID:    page.ID,
			HTML:      out,
			HTMLHash:  report.HashHTML(out),
			Timestamp: time.Now().UnixMilli(),
		},
		Native:     e.Native(),
		Capability: e.Capability(),
		Stats:      st,
	}, nil
}
