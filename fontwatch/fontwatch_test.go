package fontwatch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hazyhaar/mmfont/probe"
	"github.com/hazyhaar/mmfont/report"
)

const (
	legacyWord  = "\u1031\u1000\u102c\u1004\u1039\u1038"
	unicodeWord = "\u1000\u1031\u102c\u1004\u103a\u1038"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func legacyPage() string {
	return "<html><head><title>" + legacyWord + "</title></head><body><p id=\"p\">" +
		legacyWord + "</p><p>hello</p></body></html>"
}

type collector struct {
	mu        sync.Mutex
	decisions []report.Decision
	documents []report.Document
}

func (c *collector) sink() Sink {
	return NewCallbackSink(
		func(_ context.Context, d report.Decision) error {
			c.mu.Lock()
			c.decisions = append(c.decisions, d)
			c.mu.Unlock()
			return nil
		},
		func(_ context.Context, doc report.Document) error {
			c.mu.Lock()
			c.documents = append(c.documents, doc)
			c.mu.Unlock()
			return nil
		},
	)
}

func (c *collector) count(a report.Action) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.decisions {
		if d.Action == a {
			n++
		}
	}
	return n
}

func TestNormalize_UnicodeDevice(t *testing.T) {
	n, err := NewNormalizer(DefaultConfig(), quiet())
	if err != nil {
		t.Fatal(err)
	}
	page := PageConfig{ID: "p1", URL: "file://page.html"}
	var decisions []report.Decision
	res, err := n.Normalize(context.Background(), page, []byte(legacyPage()), func(d report.Decision) {
		decisions = append(decisions, d)
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Native != probe.NativeUnicode {
		t.Errorf("native: got %v, want %v", res.Native, probe.NativeUnicode)
	}
	if res.Capability != probe.Unsupported {
		t.Errorf("capability: got %v, want %v", res.Capability, probe.Unsupported)
	}
	html := string(res.Document.HTML)
	if !strings.Contains(html, "<p id=\"p\">"+unicodeWord+"</p>") {
		t.Errorf("paragraph not converted: %s", html)
	}
	if !strings.Contains(html, "<title>"+unicodeWord+"</title>") {
		t.Errorf("title not converted: %s", html)
	}
	if strings.Contains(html, "zgFont") || strings.Contains(html, "uniFont") {
		t.Errorf("markers or marker stylesheet left after flush: %s", html)
	}
	if res.Document.HTMLHash != report.HashHTML(res.Document.HTML) {
		t.Error("document hash mismatch")
	}
	if res.Document.PageID != "p1" {
		t.Errorf("page id: got %q, want p1", res.Document.PageID)
	}
	if res.Stats.Converted == 0 {
		t.Error("stats: no conversions counted")
	}
	if len(decisions) == 0 {
		t.Error("no decisions reported")
	}
}

func TestNormalize_EmbeddingSupported(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Offline.Embed = "supported"
	n, err := NewNormalizer(cfg, quiet())
	if err != nil {
		t.Fatal(err)
	}
	res, err := n.Normalize(context.Background(), PageConfig{ID: "p"}, []byte(legacyPage()), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Capability != probe.Supported {
		t.Errorf("capability: got %v, want %v", res.Capability, probe.Supported)
	}
	html := string(res.Document.HTML)
	if !strings.Contains(html, legacyWord+"</p>") {
		t.Errorf("paragraph rewritten on an embedding device: %s", html)
	}
	if !strings.Contains(html, "zgFont") {
		t.Errorf("legacy marker missing: %s", html)
	}
	if !strings.Contains(html, `.zgFont, .zgFont * { font-family: "Zawgyi-One" !important; }`) {
		t.Errorf("marker stylesheet missing: %s", html)
	}
}

func TestNormalize_FontFaceInOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Offline.Embed = "supported"
	cfg.Fonts.LegacyURL = "https://fonts.example/zawgyi.woff2"
	n, err := NewNormalizer(cfg, quiet())
	if err != nil {
		t.Fatal(err)
	}
	res, err := n.Normalize(context.Background(), PageConfig{ID: "p"}, []byte(legacyPage()), nil)
	if err != nil {
		t.Fatal(err)
	}
	html := string(res.Document.HTML)
	want := `@font-face { font-family: "Zawgyi-One"; src: url("https://fonts.example/zawgyi.woff2"); }`
	if !strings.Contains(html, want) {
		t.Errorf("font-face rule missing: %s", html)
	}
	if i, j := strings.Index(html, "@font-face"), strings.Index(html, "</head>"); i < 0 || i > j {
		t.Errorf("stylesheet not in head: %s", html)
	}
}

func TestNormalize_LegacyDevice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Offline.Native = "legacy"
	n, err := NewNormalizer(cfg, quiet())
	if err != nil {
		t.Fatal(err)
	}
	page := "<html><body><p>" + unicodeWord + "</p></body></html>"
	res, err := n.Normalize(context.Background(), PageConfig{ID: "p"}, []byte(page), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Native != probe.NativeLegacy {
		t.Errorf("native: got %v, want %v", res.Native, probe.NativeLegacy)
	}
	if !strings.Contains(string(res.Document.HTML), "<p>"+legacyWord+"</p>") {
		t.Errorf("paragraph not converted to legacy: %s", res.Document.HTML)
	}
}

func TestNewNormalizer_BadOffline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Offline.Native = "klingon"
	if _, err := NewNormalizer(cfg, quiet()); err == nil {
		t.Error("unknown native encoding: want error")
	}
	cfg = DefaultConfig()
	cfg.Offline.Embed = "maybe"
	if _, err := NewNormalizer(cfg, quiet()); err == nil {
		t.Error("unknown embed capability: want error")
	}
	cfg = DefaultConfig()
	cfg.Rules = "/nonexistent/rules.yaml"
	if _, err := NewNormalizer(cfg, quiet()); err == nil {
		t.Error("missing rules file: want error")
	}
}

func TestWatcher_HTTPPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, legacyPage())
	}))
	defer srv.Close()

	c := &collector{}
	w, err := New(DefaultConfig(), quiet(), c.sink())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Myanmar text in the static HTML keeps auto mode on the HTTP path.
	if err := w.ObservePage(context.Background(), PageConfig{ID: "news", URL: srv.URL, StealthLevel: "auto"}); err != nil {
		t.Fatal(err)
	}

	c.mu.Lock()
	docs := len(c.documents)
	var html string
	if docs > 0 {
		html = string(c.documents[0].HTML)
	}
	c.mu.Unlock()
	if docs != 1 {
		t.Fatalf("documents: got %d, want 1", docs)
	}
	if !strings.Contains(html, unicodeWord) {
		t.Errorf("document not converted: %s", html)
	}
	if c.count(report.ActionProfile) != 1 {
		t.Errorf("profile decisions: got %d, want 1", c.count(report.ActionProfile))
	}
	if c.count(report.ActionCapability) != 1 {
		t.Errorf("capability decisions: got %d, want 1", c.count(report.ActionCapability))
	}
	if c.count(report.ActionConverted) == 0 {
		t.Error("no converted decisions")
	}
}

func TestWatcher_HTTPFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	w, err := New(DefaultConfig(), quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.ObservePage(context.Background(), PageConfig{URL: srv.URL, StealthLevel: "0"}); err == nil {
		t.Error("want fetch error")
	}
}

func TestSinksFromConfig(t *testing.T) {
	sinks := SinksFromConfig([]SinkConfig{{Type: "carrier-pigeon"}}, quiet())
	if len(sinks) != 1 {
		t.Fatalf("sinks: got %d, want stdout fallback", len(sinks))
	}
	sinks = SinksFromConfig([]SinkConfig{
		{Type: "stdout"},
		{Type: "webhook", URL: "http://localhost:1/hook"},
	}, quiet())
	if len(sinks) != 2 {
		t.Errorf("sinks: got %d, want 2", len(sinks))
	}
}
