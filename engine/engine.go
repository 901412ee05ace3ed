// Package engine reconciles Myanmar text in a host document with the
// encoding the device renders natively. One Engine serves one page
// session: it measures the device once, tags the initial tree, defers
// conversions until font styling has settled and then keeps reconciling
// every mutation the host reports.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hazyhaar/mmfont/dom"
	"github.com/hazyhaar/mmfont/probe"
	"github.com/hazyhaar/mmfont/report"
	"github.com/hazyhaar/mmfont/script"
	"github.com/hazyhaar/mmfont/translit"
)

var (
	// ErrCapabilityResolved is returned by Settle once the embedding
	// capability has already been decided for the session.
	ErrCapabilityResolved = errors.New("engine: capability already resolved")
	// ErrNotStarted is returned when Settle or Run precede Start.
	ErrNotStarted = errors.New("engine: not started")
	// ErrStarted is returned by a second Start.
	ErrStarted = errors.New("engine: already started")
)

// NoEmbedRule matches elements whose text must never be marked or
// converted, such as the spans rich-text editors type into.
type NoEmbedRule struct {
	Tag   string `yaml:"tag"`
	Attr  string `yaml:"attr"`
	Value string `yaml:"value"`
}

// Config controls marker names, exclusions and reconciler batching.
type Config struct {
	// LegacyClass marks elements holding legacy text. Default: "zgFont".
	LegacyClass string `yaml:"legacy_class"`
	// UnicodeClass marks elements holding Unicode text. Default: "uniFont".
	UnicodeClass string `yaml:"unicode_class"`
	// ProbeAttr is carried by probe scaffolding. Default: "data-mmfont-probe".
	ProbeAttr string `yaml:"probe_attr"`
	// NoEmbed rules. Default: span[data-text="true"].
	NoEmbed []NoEmbedRule `yaml:"no_embed"`
	// MaxBatch caps how many buffered records Run drains at once. Default: 256.
	MaxBatch int `yaml:"max_batch"`
}

func (c *Config) defaults() {
	if c.LegacyClass == "" {
		c.LegacyClass = "zgFont"
	}
	if c.UnicodeClass == "" {
		c.UnicodeClass = "uniFont"
	}
	if c.ProbeAttr == "" {
		c.ProbeAttr = "data-mmfont-probe"
	}
	if c.NoEmbed == nil {
		c.NoEmbed = []NoEmbedRule{{Tag: "span", Attr: "data-text", Value: "true"}}
	}
	if c.MaxBatch <= 0 {
		c.MaxBatch = 256
	}
}

// DefaultConfig returns the configuration with every default applied.
func DefaultConfig() Config {
	var c Config
	c.defaults()
	return c
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the default configuration. Zero fields take their
// defaults.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithReporter registers fn to receive one Decision per engine action.
// fn runs on the engine's goroutine and must not block.
func WithReporter(fn func(report.Decision)) Option {
	return func(e *Engine) { e.reporter = fn }
}

// WithPage sets the page identity stamped on reports.
func WithPage(id, url string) Option {
	return func(e *Engine) { e.pageID, e.pageURL = id, url }
}

// Stats counts engine actions over the session.
type Stats struct {
	Marked    int `json:"marked"`
	Unmarked  int `json:"unmarked"`
	Queued    int `json:"queued"`
	Flushed   int `json:"flushed"`
	Converted int `json:"converted"` // text nodes rewritten
	Tooltips  int `json:"tooltips"`
	Titles    int `json:"titles"`
	Failures  int `json:"failures"` // host writes refused
}

// Engine is the per-page reconciliation session. It is not safe for
// concurrent use: Start, Settle and Tag are called by the goroutine that
// owns it, normally through Run.
type Engine struct {
	doc   dom.Document
	cls   *script.Classifier
	conv  translit.Converter
	probe *probe.Probe

	cfg      Config
	logger   *slog.Logger
	reporter func(report.Decision)
	pageID   string
	pageURL  string

	started    bool
	native     probe.Profile
	capability capabilityCell

	pending *queue
	title   titleState
	stats   Stats
}

// New creates an Engine over doc. A nil classifier selects the built-in
// pattern scorer; a nil converter selects the embedded rule set.
func New(doc dom.Document, cls *script.Classifier, conv translit.Converter, p *probe.Probe, opts ...Option) *Engine {
	e := &Engine{
		doc:     doc,
		cls:     cls,
		conv:    conv,
		probe:   p,
		pending: newQueue(),
	}
	for _, o := range opts {
		o(e)
	}
	e.cfg.defaults()
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.cls == nil {
		e.cls = script.NewClassifier(nil)
	}
	if e.conv == nil {
		e.conv = translit.Default()
	}
	return e
}

// Start measures the device's native encoding, normalizes the title and
// tags the whole tree with the capability still unknown.
func (e *Engine) Start(ctx context.Context) error {
	if e.started {
		return ErrStarted
	}
	e.started = true

	if err := e.probe.Install(ctx); err != nil {
		e.logger.Warn("engine: install probes", "error", err)
	}
	e.native = e.probe.NativeEncoding(ctx)
	e.report(report.Decision{Action: report.ActionProfile, Label: e.native.Label().String(), Detail: e.native.String()})
	e.logger.Info("engine: started", "url", e.pageURL, "native", e.native)

	e.title.init(e)
	e.Tag(e.doc.Root())
	return nil
}

// Settle is the one-shot checkpoint after styling and font faces have
// applied: it measures embedding capability, flushes the pending queue
// when the device cannot embed and discards it otherwise.
func (e *Engine) Settle(ctx context.Context) error {
	if !e.started {
		return ErrNotStarted
	}
	if e.capability.resolved() {
		return ErrCapabilityResolved
	}

	c := e.probe.EmbeddingCapability(ctx, e.native)
	if err := e.probe.Remove(ctx); err != nil {
		e.logger.Warn("engine: remove probes", "error", err)
	}
	if err := e.capability.resolve(c); err != nil {
		return err
	}
	e.report(report.Decision{Action: report.ActionCapability, Detail: c.String()})
	e.logger.Info("engine: settled", "url", e.pageURL, "capability", c, "pending", e.pending.len())

	if c == probe.Unsupported {
		e.flush()
	}
	e.pending.discard()
	return nil
}

// Native returns the profile measured at Start.
func (e *Engine) Native() probe.Profile { return e.native }

// Capability returns the embedding capability, Unknown before Settle.
func (e *Engine) Capability() probe.Capability { return e.capability.get() }

// Pending returns how many elements wait for the checkpoint.
func (e *Engine) Pending() int { return e.pending.len() }

// Stats returns the action counters.
func (e *Engine) Stats() Stats { return e.stats }

func (e *Engine) report(d report.Decision) {
	if e.reporter == nil {
		return
	}
	d.ID = report.NewID()
	d.PageID = e.pageID
	d.PageURL = e.pageURL
	d.Timestamp = time.Now().UnixMilli()
	e.reporter(d)
}

func (e *Engine) reportNode(action report.Action, n dom.Node, label script.Label, before, after string) {
	if e.reporter == nil {
		return
	}
	e.report(report.Decision{
		Action: action,
		Label:  label.String(),
		Tag:    e.doc.Tag(n),
		Path:   dom.PathOf(e.doc, n),
		Before: before,
		After:  after,
	})
}

func (e *Engine) failed(op string, n dom.Node, err error) {
	e.stats.Failures++
	e.logger.Warn("engine: host write failed", "op", op, "tag", e.doc.Tag(n), "error", err)
	if e.reporter != nil {
		e.report(report.Decision{Action: report.ActionFailed, Tag: e.doc.Tag(n), Path: dom.PathOf(e.doc, n), Detail: op + ": " + err.Error()})
	}
}

// capabilityCell holds the embedding capability. Only the first
// resolution takes effect.
type capabilityCell struct {
	v probe.Capability
}

func (c *capabilityCell) get() probe.Capability { return c.v }

func (c *capabilityCell) resolved() bool { return c.v != probe.Unknown }

func (c *capabilityCell) resolve(v probe.Capability) error {
	if c.resolved() {
		return ErrCapabilityResolved
	}
	if v == probe.Unknown {
		v = probe.Unsupported
	}
	c.v = v
	return nil
}
