package htmldoc

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/mmfont/mutation"
)

// The methods below play the part of page scripts: they change the tree
// and emit the records a browser would.

// ByID returns the element with the given id attribute, or nil.
func (d *Document) ByID(id string) *html.Node {
	return find(d.doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return true
			}
		}
		return false
	})
}

// InsertHTML parses fragment in the context of parent, appends the
// resulting nodes and emits one insert record per top-level node.
func (d *Document) InsertHTML(parent *html.Node, fragment string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parse fragment: %w", err)
	}
	for _, n := range nodes {
		parent.AppendChild(n)
		d.emit(mutation.Insert(n))
	}
	return nodes, nil
}

// AppendText appends a text node to parent and emits an insert record.
func (d *Document) AppendText(parent *html.Node, data string) *html.Node {
	t := &html.Node{Type: html.TextNode, Data: data}
	parent.AppendChild(t)
	d.emit(mutation.Insert(t))
	return t
}

// SetData rewrites a text node's data and emits a character-data record.
func (d *Document) SetData(n *html.Node, data string) {
	n.Data = data
	d.emit(mutation.Text(n))
}

// Remove detaches n and emits a removal record.
func (d *Document) Remove(n *html.Node) {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
	d.emit(mutation.Remove(n))
}

// AddStyle appends a <style> element holding css to the head.
func (d *Document) AddStyle(css string) error {
	head := find(d.doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Head
	})
	if head == nil {
		return fmt.Errorf("htmldoc: document has no head")
	}
	style := &html.Node{Type: html.ElementNode, Data: "style", DataAtom: atom.Style}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: css})
	head.AppendChild(style)
	d.emit(mutation.Insert(style))
	return nil
}
