// Package mutation defines the messages a host delivers to the engine's
// reconciler: structural inserts, character-data changes, removals and the
// one-shot "document settled" checkpoint.
package mutation

import (
	"time"

	"github.com/hazyhaar/mmfont/dom"
)

// Op is the type of document change observed.
type Op string

const (
	OpInsert  Op = "insert"  // node inserted (its subtree comes with it)
	OpRemove  Op = "remove"  // node removed
	OpText    Op = "text"    // character data modified
	OpSettled Op = "settled" // styling and font faces have been applied
)

// Record is a single document change. Node is nil for OpSettled.
type Record struct {
	Op   Op
	Node dom.Node
	At   time.Time
}

// Insert returns an insert record for n.
func Insert(n dom.Node) Record { return Record{Op: OpInsert, Node: n, At: time.Now()} }

// Text returns a character-data record for n.
func Text(n dom.Node) Record { return Record{Op: OpText, Node: n, At: time.Now()} }

// Remove returns a removal record for n.
func Remove(n dom.Node) Record { return Record{Op: OpRemove, Node: n, At: time.Now()} }

// Settled returns the checkpoint record.
func Settled() Record { return Record{Op: OpSettled, At: time.Now()} }

// Compress collapses runs of consecutive text records on the same node into
// the last one. Inserts, removals and the settled checkpoint are never
// compressed or reordered.
func Compress(records []Record) []Record {
	if len(records) <= 1 {
		return records
	}

	result := make([]Record, 0, len(records))
	for i := 0; i < len(records); i++ {
		rec := records[i]
		if rec.Op == OpText {
			j := i + 1
			for j < len(records) && records[j].Op == OpText && records[j].Node == rec.Node {
				rec = records[j]
				j++
			}
			i = j - 1
		}
		result = append(result, rec)
	}
	return result
}
