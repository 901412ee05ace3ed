package engine

import (
	"github.com/hazyhaar/mmfont/dom"
	"github.com/hazyhaar/mmfont/script"
)

// entry is an element marked while capability was unknown, with the
// label its text was classified as.
type entry struct {
	el    dom.Node
	label script.Label
}

// queue keeps entries in insertion order, one per element.
type queue struct {
	entries []entry
	seen    map[dom.Node]struct{}
}

func newQueue() *queue {
	return &queue{seen: make(map[dom.Node]struct{})}
}

// push appends el unless it is queued already.
func (q *queue) push(el dom.Node, l script.Label) bool {
	if _, ok := q.seen[el]; ok {
		return false
	}
	q.seen[el] = struct{}{}
	q.entries = append(q.entries, entry{el: el, label: l})
	return true
}

func (q *queue) len() int { return len(q.entries) }

func (q *queue) discard() {
	q.entries = nil
	q.seen = make(map[dom.Node]struct{})
}

// flush converts every queued element, in insertion order, whose own
// live text is still outside the native encoding. Markers come off either
// way since the device cannot honour them.
func (e *Engine) flush() {
	native := e.native.Label()
	for _, ent := range e.pending.entries {
		if e.doc.Kind(ent.el) == dom.KindControl {
			e.convert(ent.el, ent.label)
		} else if text := e.ownText(ent.el); script.ContainsMyanmar(text) && e.cls.Classify(text) != native {
			e.convert(ent.el, ent.label)
		}
		e.unmark(ent.el)
		e.stats.Flushed++
	}
	e.logger.Debug("engine: queue flushed", "entries", len(e.pending.entries))
}
