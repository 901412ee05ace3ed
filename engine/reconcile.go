package engine

import (
	"context"
	"errors"

	"github.com/hazyhaar/mmfont/mutation"
)

// Run reconciles the records a host delivers until ctx is cancelled or
// records is closed. Records already buffered are drained into one batch
// and compressed before they are applied. Run owns the engine while it
// runs.
func (e *Engine) Run(ctx context.Context, records <-chan mutation.Record) error {
	if !e.started {
		return ErrNotStarted
	}
	batch := make([]mutation.Record, 0, e.cfg.MaxBatch)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec, ok := <-records:
			if !ok {
				return nil
			}
			batch = append(batch[:0], rec)
			var open bool
			batch, open = e.drain(records, batch)
			for _, r := range mutation.Compress(batch) {
				e.Apply(ctx, r)
			}
			if !open {
				return nil
			}
		}
	}
}

// drain appends records that are already buffered, without blocking.
func (e *Engine) drain(records <-chan mutation.Record, batch []mutation.Record) ([]mutation.Record, bool) {
	for len(batch) < e.cfg.MaxBatch {
		select {
		case rec, ok := <-records:
			if !ok {
				return batch, false
			}
			batch = append(batch, rec)
		default:
			return batch, true
		}
	}
	return batch, true
}

// Apply reconciles a single record.
func (e *Engine) Apply(ctx context.Context, rec mutation.Record) {
	switch rec.Op {
	case mutation.OpInsert, mutation.OpText:
		e.Tag(rec.Node)
	case mutation.OpSettled:
		if err := e.Settle(ctx); err != nil {
			if errors.Is(err, ErrCapabilityResolved) {
				e.logger.Debug("engine: repeated settle ignored", "url", e.pageURL)
				return
			}
			e.logger.Warn("engine: settle", "error", err)
		}
	case mutation.OpRemove:
	}
}
