// Package rodhost implements dom.Document, the probe measurer and the
// mutation feed over a live Chrome tab driven through Rod. Node handles
// are CDP backend node ids, which stay valid for the node's lifetime.
package rodhost

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/mmfont/dom"
)

// objectGroup names the remote objects this package creates.
const objectGroup = "mmfont"

type nodeInfo struct {
	kind dom.Kind
	tag  string
}

// Document is a live tab seen as a dom.Document. Not safe for concurrent
// use: the engine goroutine is its only caller.
type Document struct {
	page   *rod.Page
	logger *slog.Logger
	info   map[proto.DOMBackendNodeID]nodeInfo
}

var _ dom.Document = (*Document)(nil)

// New wraps page.
func New(page *rod.Page, logger *slog.Logger) *Document {
	if logger == nil {
		logger = slog.Default()
	}
	return &Document{page: page, logger: logger, info: make(map[proto.DOMBackendNodeID]nodeInfo)}
}

func backendID(n dom.Node) proto.DOMBackendNodeID {
	id, _ := n.(proto.DOMBackendNodeID)
	return id
}

func handle(id proto.DOMBackendNodeID) dom.Node {
	if id == 0 {
		return nil
	}
	return id
}

// kindOf maps a CDP node type and name to a dom.Kind.
func kindOf(nodeType int, name string) dom.Kind {
	switch nodeType {
	case 1:
		return dom.KindOfTag(name)
	case 3, 4:
		return dom.KindText
	}
	return dom.KindOther
}

func (d *Document) remember(n *proto.DOMNode) nodeInfo {
	name := n.LocalName
	if name == "" {
		name = strings.ToLower(n.NodeName)
	}
	ni := nodeInfo{kind: kindOf(n.NodeType, name)}
	if n.NodeType == 1 {
		ni.tag = name
	}
	d.info[n.BackendNodeID] = ni
	return ni
}

func (d *Document) describe(id proto.DOMBackendNodeID, depth int) (*proto.DOMNode, error) {
	res, err := proto.DOMDescribeNode{BackendNodeID: id, Depth: &depth}.Call(d.page)
	if err != nil {
		return nil, fmt.Errorf("rodhost: describe %d: %w", id, err)
	}
	return res.Node, nil
}

func (d *Document) nodeInfo(n dom.Node) nodeInfo {
	id := backendID(n)
	if id == 0 {
		return nodeInfo{}
	}
	if ni, ok := d.info[id]; ok {
		return ni
	}
	node, err := d.describe(id, 0)
	if err != nil {
		d.logger.Debug("rodhost: node gone", "node", id, "error", err)
		return nodeInfo{}
	}
	return d.remember(node)
}

// call runs fn with this bound to the node.
func (d *Document) call(id proto.DOMBackendNodeID, byValue bool, fn string, args ...interface{}) (*proto.RuntimeRemoteObject, error) {
	res, err := proto.DOMResolveNode{BackendNodeID: id, ObjectGroup: objectGroup}.Call(d.page)
	if err != nil {
		return nil, fmt.Errorf("rodhost: resolve %d: %w", id, err)
	}
	defer proto.RuntimeReleaseObject{ObjectID: res.Object.ObjectID}.Call(d.page)

	opts := rod.Eval(fn, args...).This(res.Object)
	if !byValue {
		opts = opts.ByObject()
	}
	return d.page.Evaluate(opts)
}

// backendOf returns the backend id of a node object and releases it.
func (d *Document) backendOf(obj *proto.RuntimeRemoteObject) proto.DOMBackendNodeID {
	if obj == nil || obj.ObjectID == "" {
		return 0
	}
	defer proto.RuntimeReleaseObject{ObjectID: obj.ObjectID}.Call(d.page)
	res, err := proto.DOMDescribeNode{ObjectID: obj.ObjectID}.Call(d.page)
	if err != nil {
		d.logger.Debug("rodhost: describe object", "error", err)
		return 0
	}
	d.remember(res.Node)
	return res.Node.BackendNodeID
}

func (d *Document) Root() dom.Node {
	obj, err := d.page.Evaluate(rod.Eval(`() => document.body || document.documentElement`).ByObject())
	if err != nil {
		d.logger.Warn("rodhost: root", "error", err)
		return nil
	}
	return handle(d.backendOf(obj))
}

func (d *Document) Kind(n dom.Node) dom.Kind { return d.nodeInfo(n).kind }

func (d *Document) Tag(n dom.Node) string { return d.nodeInfo(n).tag }

func (d *Document) Parent(n dom.Node) dom.Node {
	id := backendID(n)
	if id == 0 {
		return nil
	}
	obj, err := d.call(id, false, `function () { return this.parentNode }`)
	if err != nil {
		d.logger.Debug("rodhost: parent", "node", id, "error", err)
		return nil
	}
	return handle(d.backendOf(obj))
}

func (d *Document) Children(n dom.Node) []dom.Node {
	id := backendID(n)
	if id == 0 {
		return nil
	}
	node, err := d.describe(id, 1)
	if err != nil {
		d.logger.Debug("rodhost: children", "node", id, "error", err)
		return nil
	}
	out := make([]dom.Node, 0, len(node.Children))
	for _, c := range node.Children {
		d.remember(c)
		out = append(out, c.BackendNodeID)
	}
	return out
}

func (d *Document) Attr(n dom.Node, name string) (string, bool) {
	id := backendID(n)
	if id == 0 || !d.Kind(n).IsElement() {
		return "", false
	}
	res, err := d.call(id, true, `function (name) { return this.getAttribute(name) }`, name)
	if err != nil {
		d.logger.Debug("rodhost: attr", "node", id, "name", name, "error", err)
		return "", false
	}
	if res.Value.Nil() {
		return "", false
	}
	return res.Value.Str(), true
}

func (d *Document) SetAttr(n dom.Node, name, value string) error {
	id := backendID(n)
	if !d.Kind(n).IsElement() {
		return fmt.Errorf("rodhost: set attribute on non-element %d", id)
	}
	if _, err := d.call(id, true, `function (name, value) { this.setAttribute(name, value) }`, name, value); err != nil {
		return fmt.Errorf("rodhost: set attribute %s: %w", name, err)
	}
	return nil
}

func (d *Document) RemoveAttr(n dom.Node, name string) error {
	id := backendID(n)
	if !d.Kind(n).IsElement() {
		return fmt.Errorf("rodhost: remove attribute on non-element %d", id)
	}
	if _, err := d.call(id, true, `function (name) { this.removeAttribute(name) }`, name); err != nil {
		return fmt.Errorf("rodhost: remove attribute %s: %w", name, err)
	}
	return nil
}

func (d *Document) TextContent(n dom.Node) string {
	id := backendID(n)
	if id == 0 {
		return ""
	}
	res, err := d.call(id, true, `function () { return this.textContent || "" }`)
	if err != nil {
		d.logger.Debug("rodhost: text", "node", id, "error", err)
		return ""
	}
	return res.Value.Str()
}

func (d *Document) SetText(n dom.Node, data string) error {
	id := backendID(n)
	if d.Kind(n) != dom.KindText {
		return fmt.Errorf("rodhost: set text on non-text node %d", id)
	}
	if _, err := d.call(id, true, `function (data) { this.data = data }`, data); err != nil {
		return fmt.Errorf("rodhost: set text: %w", err)
	}
	return nil
}

func (d *Document) Title() string {
	res, err := d.page.Eval(`() => document.title`)
	if err != nil {
		d.logger.Debug("rodhost: title", "error", err)
		return ""
	}
	return res.Value.Str()
}

func (d *Document) SetTitle(title string) error {
	if _, err := d.page.Eval(`t => { document.title = t }`, title); err != nil {
		return fmt.Errorf("rodhost: set title: %w", err)
	}
	return nil
}

// xpathJS builds an indexed path from the document down to this.
const xpathJS = `function () {
	const steps = [];
	for (let n = this; n && n.nodeType !== 9; n = n.parentNode) {
		let name = n.nodeType === 3 ? "text()" : n.nodeName.toLowerCase();
		let i = 1;
		for (let s = n.previousSibling; s; s = s.previousSibling) {
			if (s.nodeType === n.nodeType && s.nodeName === n.nodeName) i++;
		}
		steps.unshift(name + "[" + i + "]");
	}
	return "/" + steps.join("/");
}`

// Path returns an XPath locating n, for reports.
func (d *Document) Path(n dom.Node) string {
	id := backendID(n)
	if id == 0 {
		return ""
	}
	res, err := d.call(id, true, xpathJS)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}
