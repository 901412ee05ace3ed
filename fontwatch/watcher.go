// Package fontwatch runs the Myanmar encoding reconciliation engine over
// watched pages. Pages are either fetched and normalized once over HTTP
// or opened in Chrome, where the engine keeps reconciling the live DOM as
// it changes.
//
// Every engine decision and every normalized document is emitted to sinks
// (stdout, webhook, callback).
package fontwatch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/mmfont/engine"
	"github.com/hazyhaar/mmfont/fontwatch/internal/browser"
	"github.com/hazyhaar/mmfont/fontwatch/internal/config"
	"github.com/hazyhaar/mmfont/fontwatch/internal/fetcher"
	"github.com/hazyhaar/mmfont/fontwatch/internal/rodhost"
	"github.com/hazyhaar/mmfont/fontwatch/internal/sink"
	"github.com/hazyhaar/mmfont/mutation"
	"github.com/hazyhaar/mmfont/probe"
	"github.com/hazyhaar/mmfont/report"
)

// pollInterval is how often the page store is checked for changes.
const pollInterval = 5 * time.Second

// Watcher is the top-level orchestrator. It manages the browser, the
// per-page engines and the sinks.
type Watcher struct {
	cfg      *config.Config
	mgr      *browser.Manager
	fetch    *fetcher.Fetcher
	norm     *Normalizer
	sinkR    *sink.Router
	sessions map[string]*session // keyed by page ID
	static   map[string]bool     // pages normalized over HTTP
	db       *sql.DB
	mu       sync.Mutex
	started  bool
	logger   *slog.Logger
}

// session is one page reconciled live in a tab.
type session struct {
	page   config.PageConfig
	tab    *browser.Tab
	eng    *engine.Engine
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Watcher from configuration.
func New(cfg *Config, logger *slog.Logger, sinks ...Sink) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	norm, err := NewNormalizer(cfg, logger)
	if err != nil {
		return nil, err
	}

	mgr := browser.NewManager(browser.Config{
		RemoteURL:       cfg.Browser.Remote,
		RecycleInterval: cfg.Browser.RecycleInterval,
		Block:           cfg.Browser.Block,
		Mode:            browser.ParseMode(cfg.Browser.Stealth),
		XvfbDisplay:     cfg.Browser.XvfbDisplay,
		NavigateTimeout: cfg.Browser.NavigateTimeout,
		Logger:          logger,
	})

	return &Watcher{
		cfg:      cfg,
		mgr:      mgr,
		fetch:    fetcher.New(fetcher.WithLogger(logger)),
		norm:     norm,
		sinkR:    sink.NewRouter(logger, sinks...),
		sessions: make(map[string]*session),
		static:   make(map[string]bool),
		logger:   logger,
	}, nil
}

// Start loads the page store, if any, and begins reconciling every
// configured page. Chrome is launched on the first page that needs it.
func (w *Watcher) Start(ctx context.Context) error {
	if w.cfg.DB != "" {
		db, err := config.OpenDB(w.cfg.DB)
		if err != nil {
			return fmt.Errorf("fontwatch: page store: %w", err)
		}
		pages, err := config.LoadPages(ctx, db)
		if err != nil {
			db.Close()
			return fmt.Errorf("fontwatch: page store: %w", err)
		}
		w.cfg.MergePages(pages)
		w.db = db
		go config.WatchPages(ctx, db, pollInterval, w.logger, func(p []config.PageConfig) {
			w.addPages(ctx, p)
		})
	}

	for _, page := range w.cfg.Pages {
		if err := w.ObservePage(ctx, page); err != nil {
			w.logger.Error("fontwatch: failed to observe page",
				"url", page.URL, "error", err)
		}
	}
	return nil
}

// ObservePage reconciles a single page.
func (w *Watcher) ObservePage(ctx context.Context, page PageConfig) error {
	if page.ID == "" {
		page.ID = page.URL
	}
	mode, fetched := w.resolveMode(ctx, page)
	if mode == browser.ModeHTTP {
		return w.normalizeHTTP(ctx, page, fetched)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.sessions[page.ID]; ok {
		return nil
	}
	if err := w.ensureBrowser(ctx); err != nil {
		return err
	}
	return w.observeLocked(ctx, page, mode)
}

// Stop shuts down every session, the sinks and the browser.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, s := range w.sessions {
		s.stop()
		w.logger.Info("fontwatch: stopped page", "id", id, "stats", s.eng.Stats())
	}
	w.sessions = make(map[string]*session)

	if w.db != nil {
		w.db.Close()
		w.db = nil
	}
	w.sinkR.Close()
	w.mgr.Close()
}

// resolveMode picks the rendering mode for a page. In auto mode the page
// is fetched first; the fetched HTML is returned for reuse when it is
// served as is.
func (w *Watcher) resolveMode(ctx context.Context, page PageConfig) (browser.Mode, *fetcher.Result) {
	if page.StealthLevel != "auto" && page.StealthLevel != "" {
		return browser.ParseMode(page.StealthLevel), nil
	}
	res, err := w.fetch.Fetch(ctx, page.URL)
	if err != nil {
		w.logger.Warn("fontwatch: auto-detect fetch failed, escalating to headless",
			"url", page.URL, "error", err)
		return browser.ModeHeadless, nil
	}
	if !res.NeedsBrowser {
		return browser.ModeHTTP, res
	}
	w.logger.Info("fontwatch: text rendered by scripts, escalating to headless",
		"url", page.URL)
	return browser.ModeHeadless, nil
}

func (w *Watcher) normalizeHTTP(ctx context.Context, page PageConfig, res *fetcher.Result) error {
	if res == nil {
		var err error
		if res, err = w.fetch.Fetch(ctx, page.URL); err != nil {
			return err
		}
	}

	out, err := w.norm.Normalize(ctx, page, res.HTML, w.reporter(ctx))
	if err != nil {
		return err
	}
	if err := w.sinkR.SendDocument(ctx, out.Document); err != nil {
		return err
	}
	w.mu.Lock()
	w.static[page.ID] = true
	w.mu.Unlock()
	w.logger.Info("fontwatch: HTTP document emitted",
		"url", page.URL, "size", len(out.Document.HTML))
	return nil
}

func (w *Watcher) reporter(ctx context.Context) func(report.Decision) {
	return func(d report.Decision) {
		if err := w.sinkR.Send(ctx, d); err != nil {
			w.logger.Debug("fontwatch: send decision", "action", d.Action, "error", err)
		}
	}
}

// liveReporter forwards decisions to the sinks from its own goroutine.
// Decisions are dropped when the buffer is full.
func (w *Watcher) liveReporter(ctx context.Context, pageURL string) func(report.Decision) {
	ch := make(chan report.Decision, w.cfg.Reconcile.Buffer)
	send := w.reporter(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d := <-ch:
				send(d)
			}
		}
	}()
	return func(d report.Decision) {
		select {
		case ch <- d:
		default:
			w.logger.Warn("fontwatch: decision dropped", "url", pageURL, "action", d.Action)
		}
	}
}

func (w *Watcher) ensureBrowser(ctx context.Context) error {
	if w.started {
		return nil
	}
	if _, err := w.mgr.Start(ctx); err != nil {
		return fmt.Errorf("fontwatch: start browser: %w", err)
	}
	w.mgr.OnRecycle(func(*rod.Browser) { w.reconnect(ctx) })
	w.started = true
	return nil
}

// observeLocked opens a tab and runs an engine over it until ctx is
// cancelled or the session is stopped.
func (w *Watcher) observeLocked(ctx context.Context, page config.PageConfig, mode browser.Mode) error {
	tab, err := browser.OpenTab(ctx, w.mgr, page.URL, page.ID, mode)
	if err != nil {
		return fmt.Errorf("fontwatch: open tab: %w", err)
	}

	ec := w.cfg.Engine
	if err := rodhost.InjectFonts(tab.Page, w.norm.faces, ec.LegacyClass, ec.UnicodeClass); err != nil {
		tab.Close()
		return err
	}

	sctx, cancel := context.WithCancel(ctx)
	records := make(chan mutation.Record, w.cfg.Reconcile.Buffer)
	listener, err := rodhost.Listen(sctx, tab.Page, records, w.cfg.Reconcile.SettleTimeout, w.logger)
	if err != nil {
		cancel()
		tab.Close()
		return fmt.Errorf("fontwatch: listen: %w", err)
	}

	measurer := rodhost.NewProbe(tab.Page, ec.LegacyClass, ec.UnicodeClass, ec.ProbeAttr)
	eng := engine.New(rodhost.New(tab.Page, w.logger), w.norm.cls, w.norm.conv,
		probe.New(measurer, w.cfg.Probe, w.logger),
		engine.WithConfig(ec),
		engine.WithLogger(w.logger),
		engine.WithPage(page.ID, page.URL),
		engine.WithReporter(w.liveReporter(sctx, page.URL)),
	)
	if err := eng.Start(sctx); err != nil {
		cancel()
		tab.Close()
		return fmt.Errorf("fontwatch: start engine: %w", err)
	}
	// The checkpoint waits for the faces the first pass brought in.
	listener.AwaitSettled(sctx)

	s := &session{page: page, tab: tab, eng: eng, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		if err := eng.Run(sctx, records); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("fontwatch: reconcile stopped", "url", page.URL, "error", err)
		}
	}()
	w.sessions[page.ID] = s

	w.logger.Info("fontwatch: observing page",
		"url", page.URL, "id", page.ID, "mode", mode, "native", eng.Native())
	return nil
}

func (s *session) stop() {
	s.cancel()
	<-s.done
	s.tab.Close()
}

// addPages starts the pages of a page store update that are not observed
// yet.
func (w *Watcher) addPages(ctx context.Context, pages []config.PageConfig) {
	for _, p := range pages {
		w.mu.Lock()
		_, ok := w.sessions[p.ID]
		ok = ok || w.static[p.ID]
		w.mu.Unlock()
		if ok {
			continue
		}
		if err := w.ObservePage(ctx, p); err != nil {
			w.logger.Error("fontwatch: failed to observe page", "url", p.URL, "error", err)
		}
	}
}

// reconnect reopens every live page after a browser recycle. A recycled
// page starts over with fresh probes since its document is new.
func (w *Watcher) reconnect(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	old := w.sessions
	w.sessions = make(map[string]*session)
	for _, s := range old {
		s.cancel()
		<-s.done
		if err := w.observeLocked(ctx, s.page, s.tab.Mode); err != nil {
			w.logger.Error("fontwatch: reconnect failed", "url", s.page.URL, "error", err)
		}
	}
}
