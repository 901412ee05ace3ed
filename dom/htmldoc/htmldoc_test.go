package htmldoc

import (
	"strings"
	"testing"

	"github.com/hazyhaar/mmfont/dom"
	"github.com/hazyhaar/mmfont/mutation"
)

const page = `<!DOCTYPE html>
<html><head><title>Old</title></head>
<body>
<div id="a" class="x y" title="tip"><p id="p1">one<b>two</b></p><p id="p2">three</p></div>
<select id="s"><option>o1</option><option>o2</option></select>
<script>var x = 1;</script>
<!-- note -->
</body></html>`

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	d, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestKinds(t *testing.T) {
	d := mustParse(t, page)
	cases := map[string]dom.Kind{
		"a":  dom.KindElement,
		"p1": dom.KindElement,
		"s":  dom.KindControl,
	}
	for id, want := range cases {
		if got := d.Kind(d.ByID(id)); got != want {
			t.Errorf("Kind(%s): got %v, want %v", id, got, want)
		}
	}
	opt := d.ByID("s").FirstChild
	if got := d.Kind(opt); got != dom.KindOption {
		t.Errorf("Kind(option): got %v", got)
	}
	if got := d.Kind(d.ByID("p2").FirstChild); got != dom.KindText {
		t.Errorf("Kind(text): got %v", got)
	}
	if got := d.Tag(d.Root()); got != "body" {
		t.Errorf("Root tag: got %q, want body", got)
	}

	var skip, other int
	dom.Walk(d, d.Root(), func(n dom.Node) bool {
		switch d.Kind(n) {
		case dom.KindSkip:
			skip++
		case dom.KindOther:
			other++
		}
		return true
	})
	if skip != 1 || other != 1 {
		t.Errorf("walk: got skip=%d other=%d, want 1 and 1", skip, other)
	}
}

func TestParentOfRootChain(t *testing.T) {
	d := mustParse(t, page)
	n := dom.Node(d.ByID("p1"))
	depth := 0
	for n != nil {
		n = d.Parent(n)
		depth++
	}
	// p, div, body, html, document
	if depth != 5 {
		t.Errorf("parent chain: got %d, want 5", depth)
	}
}

func TestTextContent(t *testing.T) {
	d := mustParse(t, page)
	if got := d.TextContent(d.ByID("p1")); got != "onetwo" {
		t.Errorf("TextContent: got %q, want %q", got, "onetwo")
	}
}

func TestAttrAndClass(t *testing.T) {
	d := mustParse(t, page)
	a := d.ByID("a")

	if v, ok := d.Attr(a, "title"); !ok || v != "tip" {
		t.Errorf("Attr(title): got %q %v", v, ok)
	}
	if err := dom.AddClass(d, a, "zgFont", "uniFont"); err != nil {
		t.Fatal(err)
	}
	if !dom.HasClass(d, a, "zgFont") || !dom.HasClass(d, a, "x") {
		t.Errorf("AddClass: class=%q", mustAttr(d, a, "class"))
	}
	if err := dom.AddClass(d, a, "uniFont", "zgFont"); err != nil {
		t.Fatal(err)
	}
	if dom.HasClass(d, a, "zgFont") || !dom.HasClass(d, a, "uniFont") {
		t.Errorf("marker swap: class=%q", mustAttr(d, a, "class"))
	}
	if err := dom.RemoveClass(d, a, "uniFont", "x", "y"); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.Attr(a, "class"); ok {
		t.Errorf("RemoveClass: class attribute still present")
	}
}

func mustAttr(d *Document, n dom.Node, name string) string {
	v, _ := d.Attr(n, name)
	return v
}

func TestTitle(t *testing.T) {
	d := mustParse(t, page)
	if got := d.Title(); got != "Old" {
		t.Errorf("Title: got %q", got)
	}
	if err := d.SetTitle("New"); err != nil {
		t.Fatal(err)
	}
	if got := d.Title(); got != "New" {
		t.Errorf("Title after set: got %q", got)
	}

	bare := mustParse(t, `<p>x</p>`)
	if err := bare.SetTitle("Made"); err != nil {
		t.Fatal(err)
	}
	if got := bare.Title(); got != "Made" {
		t.Errorf("created title: got %q", got)
	}
}

func TestPath(t *testing.T) {
	d := mustParse(t, page)
	if got := d.Path(d.ByID("p2")); got != "/html/body/div/p[2]" {
		t.Errorf("Path(p2): got %q", got)
	}
	if got := d.Path(d.ByID("p2").FirstChild); got != "/html/body/div/p[2]/text()" {
		t.Errorf("Path(text): got %q", got)
	}
	if got := dom.PathOf(d, d.ByID("a")); got != "/html/body/div" {
		t.Errorf("PathOf: got %q", got)
	}
}

func TestMutatorsEmit(t *testing.T) {
	d := mustParse(t, page)
	var got []mutation.Op
	d.OnMutation(func(r mutation.Record) { got = append(got, r.Op) })

	div := d.ByID("a")
	nodes, err := d.InsertHTML(div, `<p>x</p><p>y</p>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 {
		t.Fatalf("InsertHTML: got %d nodes", len(nodes))
	}
	txt := d.AppendText(div, "z")
	d.SetData(txt, "zz")
	if err := d.SetText(txt, "zz"); err != nil {
		t.Fatal(err)
	}
	if err := d.SetText(txt, "zzz"); err != nil {
		t.Fatal(err)
	}
	d.Remove(nodes[0])

	want := []mutation.Op{
		mutation.OpInsert, mutation.OpInsert, mutation.OpInsert,
		mutation.OpText, mutation.OpText, mutation.OpRemove,
	}
	if len(got) != len(want) {
		t.Fatalf("records: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record[%d]: got %s, want %s", i, got[i], want[i])
		}
	}
	if !strings.Contains(d.String(), "zzz") {
		t.Error("render does not contain updated text")
	}
}

func TestSetTextRejectsElements(t *testing.T) {
	d := mustParse(t, page)
	if err := d.SetText(d.ByID("a"), "x"); err == nil {
		t.Error("SetText on element: expected error")
	}
	if err := d.SetAttr(d.ByID("p1").FirstChild, "class", "x"); err == nil {
		t.Error("SetAttr on text: expected error")
	}
}

func TestAddStyle(t *testing.T) {
	d := mustParse(t, page)
	var recs []mutation.Record
	d.OnMutation(func(r mutation.Record) { recs = append(recs, r) })

	if err := d.AddStyle(`.zgFont { font-family: "Zawgyi-One"; }`); err != nil {
		t.Fatal(err)
	}
	out := d.String()
	if !strings.Contains(out, `<style>.zgFont { font-family: "Zawgyi-One"; }</style></head>`) {
		t.Errorf("style not in head:\n%s", out)
	}
	if len(recs) != 1 || recs[0].Op != mutation.OpInsert {
		t.Errorf("records: got %+v", recs)
	}
}
