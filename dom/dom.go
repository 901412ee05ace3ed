// Package dom is the narrow view of a host document that the engine
// works through. A host (a parsed HTML tree, a live browser tab) implements
// Document; nodes are opaque comparable handles.
package dom

import "strings"

// Node is an opaque handle to a host node. Handles must be comparable and
// stable for the lifetime of the node: the engine uses them as map keys.
type Node interface{}

// Kind is the closed set of node variants the engine dispatches on.
type Kind int

const (
	KindOther   Kind = iota // document, doctype, comment, processing instruction
	KindText                // character data
	KindElement             // ordinary element, container of other nodes
	KindControl             // select-like element whose text lives in options
	KindOption              // option of a control
	KindSkip                // script, style, meta, link, input, textarea
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindElement:
		return "element"
	case KindControl:
		return "control"
	case KindOption:
		return "option"
	case KindSkip:
		return "skip"
	}
	return "other"
}

// IsElement reports whether nodes of this kind carry attributes.
func (k Kind) IsElement() bool {
	return k == KindElement || k == KindControl || k == KindOption || k == KindSkip
}

// KindOfTag maps an element tag name to its Kind.
func KindOfTag(tag string) Kind {
	switch strings.ToLower(tag) {
	case "script", "style", "meta", "link", "input", "textarea":
		return KindSkip
	case "select", "datalist":
		return KindControl
	case "option":
		return KindOption
	}
	return KindElement
}

// Document is the host environment as seen by the engine.
//
// Getters never fail: a host that cannot answer (detached node, closed
// tab) logs and returns the zero value, which the engine treats as "nothing
// to do". Setters report failures so callers can log them.
type Document interface {
	// Root is the body (or the top content element).
	Root() Node
	Kind(n Node) Kind
	Tag(n Node) string
	// Parent returns the parent node, or nil for the root of the tree.
	Parent(n Node) Node
	Children(n Node) []Node
	Attr(n Node, name string) (string, bool)
	SetAttr(n Node, name, value string) error
	RemoveAttr(n Node, name string) error
	// TextContent is the concatenated character data of n's subtree.
	TextContent(n Node) string
	// SetText replaces the data of a text node.
	SetText(n Node, data string) error
	Title() string
	SetTitle(title string) error
}

// Pather is implemented by hosts that can locate a node for reports.
type Pather interface {
	Path(n Node) string
}

// PathOf returns the node path when the host supports it.
func PathOf(d Document, n Node) string {
	if p, ok := d.(Pather); ok {
		return p.Path(n)
	}
	return ""
}

// HasClass reports whether the element's class attribute contains token.
func HasClass(d Document, n Node, token string) bool {
	v, ok := d.Attr(n, "class")
	if !ok {
		return false
	}
	for _, f := range strings.Fields(v) {
		if f == token {
			return true
		}
	}
	return false
}

// AddClass adds token to the element's class attribute and drops every
// token listed in remove.
func AddClass(d Document, n Node, token string, remove ...string) error {
	v, _ := d.Attr(n, "class")
	fields := strings.Fields(v)
	out := make([]string, 0, len(fields)+1)
	found := false
	for _, f := range fields {
		if contains(remove, f) {
			continue
		}
		if f == token {
			found = true
		}
		out = append(out, f)
	}
	if !found {
		out = append(out, token)
	}
	next := strings.Join(out, " ")
	if next == v {
		return nil
	}
	return d.SetAttr(n, "class", next)
}

// RemoveClass drops every listed token from the element's class attribute.
func RemoveClass(d Document, n Node, tokens ...string) error {
	v, ok := d.Attr(n, "class")
	if !ok {
		return nil
	}
	fields := strings.Fields(v)
	out := fields[:0]
	for _, f := range fields {
		if !contains(tokens, f) {
			out = append(out, f)
		}
	}
	next := strings.Join(out, " ")
	if next == v {
		return nil
	}
	if next == "" {
		return d.RemoveAttr(n, "class")
	}
	return d.SetAttr(n, "class", next)
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants in document order. Returning false
// from fn skips the node's children.
func Walk(d Document, n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range d.Children(n) {
		Walk(d, c, fn)
	}
}
