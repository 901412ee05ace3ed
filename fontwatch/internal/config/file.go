// Package config handles watcher configuration from YAML files and the
// SQLite page table.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/mmfont/engine"
	"github.com/hazyhaar/mmfont/probe"
)

// Config is the top-level watcher configuration.
type Config struct {
	Browser    BrowserConfig    `yaml:"browser"`
	Pages      []PageConfig     `yaml:"pages"`
	Engine     engine.Config    `yaml:"engine"`
	Probe      probe.Thresholds `yaml:"probe"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Fonts      FontConfig       `yaml:"fonts"`
	Offline    OfflineConfig    `yaml:"offline"`
	// Rules is a YAML rule file. Empty selects the embedded rules.
	Rules     string          `yaml:"rules"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Sinks     []SinkConfig    `yaml:"sinks"`
	// DB is a SQLite database holding a font_pages table.
	DB string `yaml:"db"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote          string        `yaml:"remote"`
	RecycleInterval time.Duration `yaml:"recycle_interval"`
	Block           []string      `yaml:"block"`   // images | media | pings
	Stealth         string        `yaml:"stealth"` // headless | headful
	XvfbDisplay     string        `yaml:"xvfb_display"`
	NavigateTimeout time.Duration `yaml:"navigate_timeout"`
}

// PageConfig defines a page to reconcile.
type PageConfig struct {
	ID           string `yaml:"id"`
	URL          string `yaml:"url"`
	StealthLevel string `yaml:"stealth_level"` // 0 | 1 | 2 | auto
}

// ClassifierConfig tunes the script classifier.
type ClassifierConfig struct {
	// Threshold is the legacy probability cut-off. Default: 0.5.
	Threshold float64 `yaml:"threshold"`
}

// FontConfig binds the marker classes to web fonts in live pages.
type FontConfig struct {
	LegacyURL     string `yaml:"legacy_url"`
	UnicodeURL    string `yaml:"unicode_url"`
	LegacyFamily  string `yaml:"legacy_family"`
	UnicodeFamily string `yaml:"unicode_family"`
}

// OfflineConfig describes the device the HTTP and file paths normalize
// for, since no browser measures it.
type OfflineConfig struct {
	// DeviceFont is a font file measured as the device default. When
	// set, LegacyFont and UnicodeFont are the faces marker classes
	// substitute, if any.
	DeviceFont  string  `yaml:"device_font"`
	LegacyFont  string  `yaml:"legacy_font"`
	UnicodeFont string  `yaml:"unicode_font"`
	PPEM        float64 `yaml:"ppem"`
	// Native and Embed describe the device when no font is given:
	// native "unicode" | "legacy", embed "supported" | "unsupported".
	Native string `yaml:"native"`
	Embed  string `yaml:"embed"`
}

// ReconcileConfig sizes the mutation feed.
type ReconcileConfig struct {
	// Buffer is the record channel capacity. Default: 4096.
	Buffer int `yaml:"buffer"`
	// SettleTimeout bounds the wait for load and font faces. Default: 30s.
	SettleTimeout time.Duration `yaml:"settle_timeout"`
}

// SinkConfig defines an output backend.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | webhook
	URL  string `yaml:"url"`  // for webhook
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.Browser.RecycleInterval <= 0 {
		c.Browser.RecycleInterval = 4 * time.Hour
	}
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}
	if c.Browser.XvfbDisplay == "" {
		c.Browser.XvfbDisplay = ":99"
	}
	if c.Browser.NavigateTimeout <= 0 {
		c.Browser.NavigateTimeout = 30 * time.Second
	}
	if c.Classifier.Threshold <= 0 {
		c.Classifier.Threshold = 0.5
	}
	if c.Offline.PPEM <= 0 {
		c.Offline.PPEM = 16
	}
	if c.Offline.Native == "" {
		c.Offline.Native = "unicode"
	}
	if c.Offline.Embed == "" {
		c.Offline.Embed = "unsupported"
	}
	if c.Reconcile.Buffer <= 0 {
		c.Reconcile.Buffer = 4096
	}
	if c.Reconcile.SettleTimeout <= 0 {
		c.Reconcile.SettleTimeout = 30 * time.Second
	}
	c.Engine = c.engineDefaults()
	if c.Probe == (probe.Thresholds{}) {
		c.Probe = probe.DefaultThresholds()
	}
	for i := range c.Pages {
		if c.Pages[i].StealthLevel == "" {
			c.Pages[i].StealthLevel = "auto"
		}
		if c.Pages[i].ID == "" {
			c.Pages[i].ID = c.Pages[i].URL
		}
	}
}

func (c *Config) engineDefaults() engine.Config {
	d := engine.DefaultConfig()
	e := c.Engine
	if e.LegacyClass == "" {
		e.LegacyClass = d.LegacyClass
	}
	if e.UnicodeClass == "" {
		e.UnicodeClass = d.UnicodeClass
	}
	if e.ProbeAttr == "" {
		e.ProbeAttr = d.ProbeAttr
	}
	if e.NoEmbed == nil {
		e.NoEmbed = d.NoEmbed
	}
	if e.MaxBatch <= 0 {
		e.MaxBatch = d.MaxBatch
	}
	return e
}
