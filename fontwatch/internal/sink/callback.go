package sink

import (
	"context"

	"github.com/hazyhaar/mmfont/report"
)

// DecisionFunc is called for each decision.
type DecisionFunc func(ctx context.Context, d report.Decision) error

// DocumentFunc is called for each normalized document.
type DocumentFunc func(ctx context.Context, doc report.Document) error

// Callback delivers reports through Go function calls, for embedding the
// watcher in another program.
type Callback struct {
	onDecision DecisionFunc
	onDocument DocumentFunc
}

// NewCallback creates a Callback sink. Either handler may be nil.
func NewCallback(onDecision DecisionFunc, onDocument DocumentFunc) *Callback {
	return &Callback{onDecision: onDecision, onDocument: onDocument}
}

func (c *Callback) Send(ctx context.Context, d report.Decision) error {
	if c.onDecision == nil {
		return nil
	}
	return c.onDecision(ctx, d)
}

func (c *Callback) SendDocument(ctx context.Context, doc report.Document) error {
	if c.onDocument == nil {
		return nil
	}
	return c.onDocument(ctx, doc)
}

func (c *Callback) Close() error { return nil }
