package config

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Schema for the font_pages table.
const Schema = `
CREATE TABLE IF NOT EXISTS font_pages (
	id            TEXT PRIMARY KEY,
	url           TEXT NOT NULL,
	stealth_level TEXT DEFAULT 'auto',
	status        TEXT DEFAULT 'active',
	updated_at    INTEGER NOT NULL
);
`

// pragmas applied to every page store connection.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// OpenDB opens the SQLite page store at path and creates the table.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("config: open db: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("config: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("config: create schema: %w", err)
	}
	return db, nil
}

// LoadPages reads all active pages from the database.
func LoadPages(ctx context.Context, db *sql.DB) ([]PageConfig, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, url, stealth_level
		FROM font_pages
		WHERE status = 'active'
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("config: load pages: %w", err)
	}
	defer rows.Close()

	var pages []PageConfig
	for rows.Next() {
		var p PageConfig
		var level sql.NullString
		if err := rows.Scan(&p.ID, &p.URL, &level); err != nil {
			return nil, fmt.Errorf("config: scan page: %w", err)
		}
		p.StealthLevel = level.String
		if p.StealthLevel == "" {
			p.StealthLevel = "auto"
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// UpsertPage inserts or replaces a page row.
func UpsertPage(ctx context.Context, db *sql.DB, p PageConfig, status string) error {
	if status == "" {
		status = "active"
	}
	err := execBusy(ctx, db, `
		INSERT INTO font_pages (id, url, stealth_level, status, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			stealth_level = excluded.stealth_level,
			status = excluded.status,
			updated_at = excluded.updated_at
	`, p.ID, p.URL, p.StealthLevel, status, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("config: upsert page %s: %w", p.ID, err)
	}
	return nil
}

// busyRetries bounds retries of a write that hits a locked database.
const busyRetries = 3

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// execBusy runs a statement, retrying with 100/200 ms backoff while
// another writer holds the lock.
func execBusy(ctx context.Context, db *sql.DB, query string, args ...any) error {
	for i := range busyRetries {
		_, err := db.ExecContext(ctx, query, args...)
		if !isBusy(err) || i == busyRetries-1 {
			return err
		}
		t := time.NewTimer(time.Duration(100*(i+1)) * time.Millisecond)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

// MergePages appends pages not already configured, by ID.
func (c *Config) MergePages(pages []PageConfig) {
	seen := make(map[string]bool, len(c.Pages))
	for _, p := range c.Pages {
		seen[p.ID] = true
	}
	for _, p := range pages {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		c.Pages = append(c.Pages, p)
	}
}

type tableVersion struct {
	updated int64
	rows    int64
}

func version(ctx context.Context, db *sql.DB) (tableVersion, error) {
	var v tableVersion
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(updated_at), 0), COUNT(*) FROM font_pages`).Scan(&v.updated, &v.rows)
	return v, err
}

// WatchPages polls the table every interval until ctx is cancelled and
// calls fn with the active pages whenever a row is added, removed or
// updated. A failed reload is retried on the next poll.
func WatchPages(ctx context.Context, db *sql.DB, interval time.Duration, logger *slog.Logger, fn func([]PageConfig)) {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	last, err := version(ctx, db)
	if err != nil {
		logger.Warn("config: initial page version", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur, err := version(ctx, db)
			if err != nil {
				logger.Warn("config: page version", "error", err)
				continue
			}
			if cur == last {
				continue
			}
			pages, err := LoadPages(ctx, db)
			if err != nil {
				logger.Error("config: reload pages", "error", err)
				continue
			}
			last = cur
			logger.Info("config: pages changed", "active", len(pages))
			fn(pages)
		}
	}
}
