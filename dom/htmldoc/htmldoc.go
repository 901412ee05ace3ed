// Package htmldoc implements dom.Document over a golang.org/x/net/html
// tree. It backs the static and HTTP paths, and its page-side mutators
// emit mutation records so reconciliation can run without a browser.
package htmldoc

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/mmfont/dom"
	"github.com/hazyhaar/mmfont/mutation"
)

// Document is a parsed HTML document. Not safe for concurrent use.
type Document struct {
	doc    *html.Node
	notify func(mutation.Record)
}

var _ dom.Document = (*Document)(nil)

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parse: %w", err)
	}
	return New(doc), nil
}

// New wraps an already parsed document node.
func New(doc *html.Node) *Document {
	return &Document{doc: doc}
}

// OnMutation registers fn to receive a record for every insert, removal
// and character-data change, including the ones the engine makes itself.
func (d *Document) OnMutation(fn func(mutation.Record)) {
	d.notify = fn
}

func (d *Document) emit(rec mutation.Record) {
	if d.notify != nil {
		d.notify(rec)
	}
}

// Render serialises the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.doc)
}

// String renders the document, for tests and logs.
func (d *Document) String() string {
	var sb strings.Builder
	html.Render(&sb, d.doc)
	return sb.String()
}

func node(n dom.Node) *html.Node {
	h, _ := n.(*html.Node)
	return h
}

// handle converts to dom.Node without producing a typed nil.
func handle(h *html.Node) dom.Node {
	if h == nil {
		return nil
	}
	return h
}

func (d *Document) Root() dom.Node {
	if body := find(d.doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	}); body != nil {
		return body
	}
	return d.doc
}

func (d *Document) Kind(n dom.Node) dom.Kind {
	h := node(n)
	if h == nil {
		return dom.KindOther
	}
	switch h.Type {
	case html.TextNode:
		return dom.KindText
	case html.ElementNode:
		return dom.KindOfTag(h.Data)
	}
	return dom.KindOther
}

func (d *Document) Tag(n dom.Node) string {
	h := node(n)
	if h == nil || h.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(h.Data)
}

func (d *Document) Parent(n dom.Node) dom.Node {
	h := node(n)
	if h == nil {
		return nil
	}
	return handle(h.Parent)
}

func (d *Document) Children(n dom.Node) []dom.Node {
	h := node(n)
	if h == nil {
		return nil
	}
	var out []dom.Node
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func (d *Document) Attr(n dom.Node, name string) (string, bool) {
	h := node(n)
	if h == nil {
		return "", false
	}
	for _, a := range h.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (d *Document) SetAttr(n dom.Node, name, value string) error {
	h := node(n)
	if h == nil || h.Type != html.ElementNode {
		return fmt.Errorf("htmldoc: set attribute %q on non-element", name)
	}
	for i, a := range h.Attr {
		if a.Namespace == "" && a.Key == name {
			h.Attr[i].Val = value
			return nil
		}
	}
	h.Attr = append(h.Attr, html.Attribute{Key: name, Val: value})
	return nil
}

func (d *Document) RemoveAttr(n dom.Node, name string) error {
	h := node(n)
	if h == nil || h.Type != html.ElementNode {
		return fmt.Errorf("htmldoc: remove attribute %q on non-element", name)
	}
	out := h.Attr[:0]
	for _, a := range h.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		out = append(out, a)
	}
	h.Attr = out
	return nil
}

func (d *Document) TextContent(n dom.Node) string {
	h := node(n)
	if h == nil {
		return ""
	}
	if h.Type == html.TextNode {
		return h.Data
	}
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(h)
	return sb.String()
}

func (d *Document) SetText(n dom.Node, data string) error {
	h := node(n)
	if h == nil || h.Type != html.TextNode {
		return fmt.Errorf("htmldoc: set text on non-text node")
	}
	if h.Data == data {
		return nil
	}
	h.Data = data
	d.emit(mutation.Text(h))
	return nil
}

func (d *Document) titleElement() *html.Node {
	return find(d.doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Title
	})
}

func (d *Document) Title() string {
	t := d.titleElement()
	if t == nil {
		return ""
	}
	return d.TextContent(t)
}

func (d *Document) SetTitle(title string) error {
	t := d.titleElement()
	if t == nil {
		head := find(d.doc, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.DataAtom == atom.Head
		})
		if head == nil {
			return fmt.Errorf("htmldoc: document has no head")
		}
		t = &html.Node{Type: html.ElementNode, Data: "title", DataAtom: atom.Title}
		head.AppendChild(t)
	}
	for c := t.FirstChild; c != nil; {
		next := c.NextSibling
		t.RemoveChild(c)
		c = next
	}
	t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	return nil
}

// Path returns an XPath-like location of n, e.g. /html/body/div[2]/p.
func (d *Document) Path(n dom.Node) string {
	h := node(n)
	if h == nil {
		return ""
	}
	var parts []string
	for cur := h; cur != nil && cur.Type != html.DocumentNode; cur = cur.Parent {
		parts = append(parts, step(cur))
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}

func step(n *html.Node) string {
	var name string
	switch n.Type {
	case html.TextNode:
		name = "text()"
	case html.CommentNode:
		name = "comment()"
	default:
		name = strings.ToLower(n.Data)
	}
	if n.Parent == nil {
		return name
	}
	idx, total := 0, 0
	for s := n.Parent.FirstChild; s != nil; s = s.NextSibling {
		if sameStep(s, n) {
			total++
			if s == n {
				idx = total
			}
		}
	}
	if total > 1 {
		return fmt.Sprintf("%s[%d]", name, idx)
	}
	return name
}

func sameStep(a, b *html.Node) bool {
	if a.Type != b.Type {
		return false
	}
	if a.Type == html.ElementNode {
		return strings.EqualFold(a.Data, b.Data)
	}
	return true
}

func find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := find(c, pred); f != nil {
			return f
		}
	}
	return nil
}
