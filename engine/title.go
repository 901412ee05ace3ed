package engine

import (
	"github.com/hazyhaar/mmfont/report"
	"github.com/hazyhaar/mmfont/script"
	"github.com/hazyhaar/mmfont/translit"
)

// titleState holds the title found at start and its native rendering,
// which is what the document keeps for the whole session.
type titleState struct {
	raw       string
	canonical string
}

func (t *titleState) init(e *Engine) {
	t.raw = e.doc.Title()
	t.canonical = e.nativeText(t.raw)
	if t.canonical != t.raw {
		e.setTitle(t.raw, t.canonical)
	}
}

// sync puts the canonical title back whenever the live one drifted.
func (t *titleState) sync(e *Engine) {
	live := e.doc.Title()
	if live == t.canonical {
		return
	}
	e.setTitle(live, t.canonical)
}

func (e *Engine) setTitle(before, after string) {
	if err := e.doc.SetTitle(after); err != nil {
		e.stats.Failures++
		e.logger.Warn("engine: set title", "error", err)
		return
	}
	e.stats.Titles++
	e.report(report.Decision{Action: report.ActionTitle, Tag: "title", Before: before, After: after})
}

// nativeText converts text into the native encoding when it holds
// Myanmar text classified otherwise.
func (e *Engine) nativeText(text string) string {
	if !script.ContainsMyanmar(text) {
		return text
	}
	native := e.native.Label()
	l := e.cls.Classify(text)
	if l == native {
		return text
	}
	return translit.To(e.conv, l, native, text)
}
