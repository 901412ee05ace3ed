// Package browser owns the Chrome process the watcher renders pages in:
// launch or remote connect through Rod, periodic recycling, and the Xvfb
// display used for headful sessions.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// ErrClosed is returned once the manager has been closed.
var ErrClosed = errors.New("browser: manager is closed")

// Mode selects how a page is rendered.
type Mode int

const (
	ModeHTTP     Mode = 0 // no browser, fetched HTML only
	ModeHeadless Mode = 1 // headless Chrome with stealth
	ModeHeadful  Mode = 2 // headful Chrome on Xvfb
)

func (m Mode) String() string {
	switch m {
	case ModeHTTP:
		return "http"
	case ModeHeadful:
		return "headful"
	}
	return "headless"
}

// ParseMode maps a configured stealth level ("0", "1", "2", "http",
// "headless", "headful") to a Mode. Unknown values are headless.
func ParseMode(s string) Mode {
	switch s {
	case "0", "http":
		return ModeHTTP
	case "2", "headful":
		return ModeHeadful
	}
	return ModeHeadless
}

// Config configures the Manager.
type Config struct {
	// RemoteURL is the DevTools WebSocket URL of an existing Chrome.
	// Empty launches a local one.
	RemoteURL string
	// RecycleInterval bounds the lifetime of a Chrome process. Default: 4h.
	RecycleInterval time.Duration
	// Block lists resource types never loaded (images, media). Fonts and
	// stylesheets are always let through.
	Block []string
	// Mode is the default rendering mode. Default: ModeHeadless.
	Mode Mode
	// XvfbDisplay for headful mode. Default: ":99".
	XvfbDisplay string
	// NavigateTimeout bounds the navigation request. Default: 30s.
	NavigateTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.RecycleInterval <= 0 {
		c.RecycleInterval = 4 * time.Hour
	}
	if c.Mode == ModeHTTP {
		c.Mode = ModeHeadless
	}
	if c.XvfbDisplay == "" {
		c.XvfbDisplay = ":99"
	}
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager manages one Chrome process.
type Manager struct {
	cfg       Config
	mu        sync.RWMutex
	browser   *rod.Browser
	lnch      *launcher.Launcher
	xvfb      *exec.Cmd
	startedAt time.Time
	closed    bool
	onRecycle func(*rod.Browser)
}

// NewManager creates a Manager. Call Start to launch Chrome.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// OnRecycle registers fn to run after Chrome has been restarted. Tabs
// opened before the recycle are gone by then.
func (m *Manager) OnRecycle(fn func(*rod.Browser)) {
	m.mu.Lock()
	m.onRecycle = fn
	m.mu.Unlock()
}

// Start launches or connects to Chrome and starts the recycle timer.
func (m *Manager) Start(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	b, err := m.launch()
	if err != nil {
		return nil, err
	}
	m.browser = b
	m.startedAt = time.Now()

	go m.recycleLoop(ctx)
	return b, nil
}

// Browser returns the current Rod handle.
func (m *Manager) Browser() *rod.Browser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser
}

// Recycle restarts Chrome.
func (m *Manager) Recycle() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.cfg.Logger.Info("browser: recycling", "uptime", time.Since(m.startedAt))
	m.cleanup()
	b, err := m.launch()
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("browser: relaunch: %w", err)
	}
	m.browser = b
	m.startedAt = time.Now()
	fn := m.onRecycle
	m.mu.Unlock()

	if fn != nil {
		fn(b)
	}
	return nil
}

// Close shuts Chrome and Xvfb down.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cleanup()
	return nil
}

func (m *Manager) launch() (*rod.Browser, error) {
	log := m.cfg.Logger

	if m.cfg.Mode == ModeHeadful {
		if err := m.startXvfb(); err != nil {
			return nil, fmt.Errorf("browser: xvfb: %w", err)
		}
	}

	wsURL := m.cfg.RemoteURL
	if wsURL != "" {
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().
			Headless(m.cfg.Mode != ModeHeadful).
			Set("disable-blink-features", "AutomationControlled")
		if m.cfg.Mode == ModeHeadful {
			l = l.Env("DISPLAY", m.cfg.XvfbDisplay)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("browser: launched local chrome", "url", wsURL, "mode", m.cfg.Mode)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		log.Warn("browser: ignore cert errors", "error", err)
	}
	return b, nil
}

func (m *Manager) cleanup() {
	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	m.stopXvfb()
}

func (m *Manager) recycleLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.RLock()
			closed, started := m.closed, m.startedAt
			m.mu.RUnlock()
			if closed {
				return
			}
			if time.Since(started) < m.cfg.RecycleInterval {
				continue
			}
			if err := m.Recycle(); err != nil {
				m.cfg.Logger.Error("browser: recycle failed", "error", err)
			}
		}
	}
}
