package fetcher

import (
	"bytes"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/mmfont/script"
)

// minText is the visible text, in runes, below which a page without
// Myanmar text is taken for a script-rendered shell.
const minText = 200

// shellMarkers are mount points of client-rendered apps.
var shellMarkers = []string{
	`<div id="root"></div>`,
	`<div id="app"></div>`,
	`<div id="__next"></div>`,
	`<noscript>you need to enable javascript`,
	`<noscript>enable javascript`,
}

// textStats summarises the visible text of a page.
type textStats struct {
	text    int // non-space runes outside script and style
	myanmar int // runes in the Myanmar blocks
	scripts int // script elements
}

func measure(body []byte) textStats {
	var st textStats
	z := html.NewTokenizer(bytes.NewReader(body))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return st
		case html.StartTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script:
				st.scripts++
				skip++
			case atom.Style, atom.Noscript, atom.Template:
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				if skip > 0 {
					skip--
				}
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			for _, r := range string(z.Text()) {
				if unicode.IsSpace(r) {
					continue
				}
				st.text++
				if unicode.Is(script.Myanmar, r) {
					st.myanmar++
				}
			}
		}
	}
}

// NeedsBrowser reports whether the static HTML lacks the text the page
// shows once its scripts run. Pages already carrying Myanmar text are
// normalized as fetched.
func NeedsBrowser(body []byte) bool {
	st := measure(body)
	if st.myanmar > 0 {
		return false
	}
	lower := strings.ToLower(string(body))
	for _, m := range shellMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return st.scripts > 0 && st.text < minText
}
