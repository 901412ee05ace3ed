package fontwatch

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/hazyhaar/mmfont/fontwatch/internal/config"
)

// Config is the top-level fontwatch configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig = config.BrowserConfig

// PageConfig defines a page to reconcile.
type PageConfig = config.PageConfig

// OfflineConfig describes the device for pages normalized without a browser.
type OfflineConfig = config.OfflineConfig

// SinkConfig defines an output backend.
type SinkConfig = config.SinkConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	return config.Default()
}

// OpenPageStore opens the SQLite database holding the font_pages table.
func OpenPageStore(path string) (*sql.DB, error) {
	return config.OpenDB(path)
}

// LoadPages reads the active pages of a page store.
func LoadPages(ctx context.Context, db *sql.DB) ([]PageConfig, error) {
	return config.LoadPages(ctx, db)
}

// AddPage inserts or updates a page in a page store.
func AddPage(ctx context.Context, db *sql.DB, p PageConfig) error {
	return config.UpsertPage(ctx, db, p, "active")
}

// WatchPageStore calls fn with the active pages whenever the store changes.
func WatchPageStore(ctx context.Context, db *sql.DB, interval time.Duration, logger *slog.Logger, fn func([]PageConfig)) {
	config.WatchPages(ctx, db, interval, logger, fn)
}
