package sink

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/mmfont/report"
)

// Router fans reports out to every sink. A failing sink does not stop
// the others: errors are logged and the first one is returned.
type Router struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewRouter creates a fan-out router.
func NewRouter(logger *slog.Logger, sinks ...Sink) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{sinks: sinks, logger: logger}
}

// Len returns the number of sinks.
func (r *Router) Len() int { return len(r.sinks) }

func (r *Router) Send(ctx context.Context, d report.Decision) error {
	return r.each("decision", func(s Sink) error { return s.Send(ctx, d) })
}

func (r *Router) SendDocument(ctx context.Context, doc report.Document) error {
	return r.each("document", func(s Sink) error { return s.SendDocument(ctx, doc) })
}

func (r *Router) Close() error {
	return r.each("close", func(s Sink) error { return s.Close() })
}

func (r *Router) each(what string, fn func(Sink) error) error {
	var firstErr error
	for _, s := range r.sinks {
		if err := fn(s); err != nil {
			r.logger.Warn("sink: "+what+" failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
