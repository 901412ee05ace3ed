// Command mmfont reconciles Myanmar text encodings in web pages.
//
// Usage:
//
//	mmfont -config mmfont.yaml            # reconcile pages from YAML config
//	mmfont -url https://example.com       # reconcile a single page live
//	mmfont -file page.html [-o out.html]  # normalize a static file
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/mmfont/fontwatch"
	"github.com/hazyhaar/mmfont/report"
)

type options struct {
	configPath  string
	url         string
	file        string
	out         string
	db          string
	rules       string
	deviceFont  string
	legacyFont  string
	unicodeFont string
	native      string
	embed       string
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "path to mmfont.yaml config file")
	flag.StringVar(&o.url, "url", "", "reconcile a single URL (stdout sink)")
	flag.StringVar(&o.file, "file", "", "normalize a static HTML file")
	flag.StringVar(&o.out, "o", "", "output file for -file (default stdout)")
	flag.StringVar(&o.db, "db", "", "SQLite page store to merge into the page list")
	flag.StringVar(&o.rules, "rules", "", "YAML conversion rules (default: embedded)")
	flag.StringVar(&o.deviceFont, "device-font", "", "font file measured as the device default")
	flag.StringVar(&o.legacyFont, "legacy-font", "", "font file substituted for legacy-marked text")
	flag.StringVar(&o.unicodeFont, "unicode-font", "", "font file substituted for Unicode-marked text")
	flag.StringVar(&o.native, "native", "", "device encoding without -device-font: unicode, legacy")
	flag.StringVar(&o.embed, "embed", "", "font substitution without -device-font: supported, unsupported")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, o); err != nil {
		logger.Error("mmfont: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, o options) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	switch {
	case o.file != "":
		return runFile(ctx, logger, cfg, o.file, o.out)
	case o.url != "":
		cfg.Pages = []fontwatch.PageConfig{{ID: report.NewID(), URL: o.url, StealthLevel: "auto"}}
		return runWatch(ctx, logger, cfg, fontwatch.NewStdoutSink(nil))
	case o.configPath != "" || o.db != "":
		return runWatch(ctx, logger, cfg, fontwatch.SinksFromConfig(cfg.Sinks, logger)...)
	}

	fmt.Fprintln(os.Stderr, "usage: mmfont -config <file> | -url <url> | -file <page.html> [-o out.html]")
	flag.PrintDefaults()
	os.Exit(2)
	return nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(o options) (*fontwatch.Config, error) {
	cfg := fontwatch.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = fontwatch.LoadConfigFile(o.configPath); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if o.db != "" {
		cfg.DB = o.db
	}
	if o.rules != "" {
		cfg.Rules = o.rules
	}
	if o.deviceFont != "" {
		cfg.Offline.DeviceFont = o.deviceFont
		cfg.Offline.LegacyFont = o.legacyFont
		cfg.Offline.UnicodeFont = o.unicodeFont
	}
	if o.native != "" {
		cfg.Offline.Native = o.native
	}
	if o.embed != "" {
		cfg.Offline.Embed = o.embed
	}
	return cfg, nil
}

func runFile(ctx context.Context, logger *slog.Logger, cfg *fontwatch.Config, path, out string) error {
	html, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	n, err := fontwatch.NewNormalizer(cfg, logger)
	if err != nil {
		return err
	}
	page := fontwatch.PageConfig{ID: path, URL: "file://" + path}
	res, err := n.Normalize(ctx, page, html, nil)
	if err != nil {
		return err
	}
	if out == "" {
		_, err = os.Stdout.Write(res.Document.HTML)
		return err
	}
	if err := os.WriteFile(out, res.Document.HTML, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info("mmfont: wrote", "path", out, "converted", res.Stats.Converted,
		"native", res.Native, "capability", res.Capability)
	return nil
}

func runWatch(ctx context.Context, logger *slog.Logger, cfg *fontwatch.Config, sinks ...fontwatch.Sink) error {
	w, err := fontwatch.New(cfg, logger, sinks...)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	<-ctx.Done()
	w.Stop()
	return nil
}
