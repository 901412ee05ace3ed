package engine

import (
	"strings"

	"github.com/hazyhaar/mmfont/dom"
	"github.com/hazyhaar/mmfont/probe"
	"github.com/hazyhaar/mmfont/report"
	"github.com/hazyhaar/mmfont/script"
	"github.com/hazyhaar/mmfont/translit"
)

// Tag classifies n and its subtree and marks, queues or converts what
// is not in the native encoding. Tagging the same tree again changes
// nothing.
func (e *Engine) Tag(n dom.Node) {
	if n == nil {
		return
	}
	container := e.tag(n)
	if container {
		e.title.sync(e)
	}
}

// tag reports whether n was visited as a container.
func (e *Engine) tag(n dom.Node) bool {
	switch e.doc.Kind(n) {
	case dom.KindText:
		e.tagText(n)
		return false
	case dom.KindElement, dom.KindControl, dom.KindOption:
		if e.excluded(n) {
			return false
		}
		e.tooltip(n)
		for _, c := range e.doc.Children(n) {
			e.tag(c)
		}
		return true
	}
	// KindSkip, KindOther
	return false
}

// excluded reports whether an element is marked already or belongs to
// the probe.
func (e *Engine) excluded(n dom.Node) bool {
	if _, ok := e.doc.Attr(n, e.cfg.ProbeAttr); ok {
		return true
	}
	return dom.HasClass(e.doc, n, e.cfg.LegacyClass) || dom.HasClass(e.doc, n, e.cfg.UnicodeClass)
}

func (e *Engine) noEmbed(n dom.Node) bool {
	tag := e.doc.Tag(n)
	for _, r := range e.cfg.NoEmbed {
		if r.Tag != "" && r.Tag != tag {
			continue
		}
		v, ok := e.doc.Attr(n, r.Attr)
		if ok && v == r.Value {
			return true
		}
	}
	return false
}

func (e *Engine) tooltip(n dom.Node) {
	title, ok := e.doc.Attr(n, "title")
	if !ok || !script.ContainsMyanmar(title) {
		return
	}
	native := e.native.Label()
	label := e.cls.Classify(title)
	if label == native {
		return
	}
	next := translit.To(e.conv, label, native, title)
	if next == title {
		return
	}
	if err := e.doc.SetAttr(n, "title", next); err != nil {
		e.failed("tooltip", n, err)
		return
	}
	e.stats.Tooltips++
	e.reportNode(report.ActionTooltip, n, label, title, next)
}

func (e *Engine) tagText(n dom.Node) {
	parent := e.doc.Parent(n)
	if parent == nil {
		return
	}
	switch e.doc.Kind(parent) {
	case dom.KindSkip, dom.KindOther, dom.KindText:
		return
	}
	if e.noEmbed(parent) {
		return
	}
	if _, ok := e.doc.Attr(parent, e.cfg.ProbeAttr); ok {
		return
	}
	if !script.ContainsMyanmar(e.doc.TextContent(n)) {
		return
	}

	text := e.doc.TextContent(parent)
	el := parent
	if e.doc.Kind(parent) == dom.KindOption {
		if c := e.control(parent); c != nil {
			el = c
		}
	}

	label := e.cls.Classify(text)
	if label == e.native.Label() {
		e.unmark(el)
		return
	}

	switch e.capability.get() {
	case probe.Unknown:
		e.mark(el, label)
		if e.pending.push(el, label) {
			e.stats.Queued++
			e.reportNode(report.ActionQueued, el, label, "", "")
		}
	case probe.Supported:
		e.mark(el, label)
	default:
		e.convert(el, label)
	}
}

// control returns the select-like element enclosing an option.
func (e *Engine) control(option dom.Node) dom.Node {
	for p := e.doc.Parent(option); p != nil; p = e.doc.Parent(p) {
		switch e.doc.Kind(p) {
		case dom.KindControl:
			return p
		case dom.KindElement:
			// optgroup
			if e.doc.Tag(p) == "optgroup" {
				continue
			}
			return nil
		default:
			return nil
		}
	}
	return nil
}

func (e *Engine) marker(l script.Label) (add, drop string) {
	if l == script.Legacy {
		return e.cfg.LegacyClass, e.cfg.UnicodeClass
	}
	return e.cfg.UnicodeClass, e.cfg.LegacyClass
}

func (e *Engine) mark(el dom.Node, l script.Label) {
	add, drop := e.marker(l)
	if dom.HasClass(e.doc, el, add) && !dom.HasClass(e.doc, el, drop) {
		return
	}
	if err := dom.AddClass(e.doc, el, add, drop); err != nil {
		e.failed("mark", el, err)
		return
	}
	e.stats.Marked++
	e.reportNode(report.ActionMarked, el, l, "", add)
}

func (e *Engine) unmark(el dom.Node) {
	if !dom.HasClass(e.doc, el, e.cfg.LegacyClass) && !dom.HasClass(e.doc, el, e.cfg.UnicodeClass) {
		return
	}
	if err := dom.RemoveClass(e.doc, el, e.cfg.LegacyClass, e.cfg.UnicodeClass); err != nil {
		e.failed("unmark", el, err)
		return
	}
	e.stats.Unmarked++
	e.reportNode(report.ActionUnmarked, el, e.native.Label(), "", "")
}

// convert rewrites el's text from the label it was authored in to the
// native encoding. Controls convert each option on its own.
func (e *Engine) convert(el dom.Node, from script.Label) {
	if e.doc.Kind(el) == dom.KindControl {
		native := e.native.Label()
		dom.Walk(e.doc, el, func(n dom.Node) bool {
			if e.doc.Kind(n) != dom.KindOption {
				return n == el || e.doc.Tag(n) == "optgroup"
			}
			text := e.doc.TextContent(n)
			if !script.ContainsMyanmar(text) {
				return false
			}
			if l := e.cls.Classify(text); l != native {
				e.convertText(n, l)
			}
			return false
		})
		return
	}
	e.convertText(el, from)
}

// convertText converts the text nodes directly under el. Text in child
// elements belongs to those children, which are tagged, queued and
// converted on their own, so nothing is converted twice.
func (e *Engine) convertText(el dom.Node, from script.Label) {
	native := e.native.Label()
	before := ""
	if e.reporter != nil {
		before = e.doc.TextContent(el)
	}
	changed := 0
	for _, n := range e.doc.Children(el) {
		if e.doc.Kind(n) != dom.KindText {
			continue
		}
		data := e.doc.TextContent(n)
		if !script.ContainsMyanmar(data) {
			continue
		}
		next := translit.To(e.conv, from, native, data)
		if next == data {
			continue
		}
		if err := e.doc.SetText(n, next); err != nil {
			e.failed("convert", n, err)
			continue
		}
		changed++
	}
	if changed == 0 {
		return
	}
	e.stats.Converted += changed
	if e.reporter != nil {
		e.reportNode(report.ActionConverted, el, from, before, e.doc.TextContent(el))
	}
}

// ownText joins the text nodes directly under el.
func (e *Engine) ownText(el dom.Node) string {
	var sb strings.Builder
	for _, n := range e.doc.Children(el) {
		if e.doc.Kind(n) == dom.KindText {
			sb.WriteString(e.doc.TextContent(n))
		}
	}
	return sb.String()
}
