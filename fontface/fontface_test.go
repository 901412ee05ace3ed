package fontface

import (
	"strings"
	"testing"
)

func TestCSS(t *testing.T) {
	css := Faces{LegacyURL: "https://fonts.example/zawgyi.woff2"}.CSS("zgFont", "uniFont")
	for _, want := range []string{
		`@font-face { font-family: "Zawgyi-One"; src: url("https://fonts.example/zawgyi.woff2"); }`,
		`.zgFont, .zgFont * { font-family: "Zawgyi-One" !important; }`,
		`.uniFont, .uniFont * { font-family: "Pyidaungsu" !important; }`,
	} {
		if !strings.Contains(css, want) {
			t.Errorf("CSS missing %q:\n%s", want, css)
		}
	}
	if strings.Count(css, "@font-face") != 1 {
		t.Errorf("font-face without URL:\n%s", css)
	}
}

func TestQuote(t *testing.T) {
	cases := map[string]string{
		"Zawgyi-One":         `"Zawgyi-One"`,
		`a"b`:                `"a\22 b"`,
		`C:\fonts\zg.ttf`:    `"C:\5c fonts\5c zg.ttf"`,
		"line\nbreak":        `"line\a break"`,
		"</style><script>":   `"\3c /style\3e \3c script\3e "`,
		"\u1015\u102d\u102f": "\"\u1015\u102d\u102f\"",
	}
	for in, want := range cases {
		if got := Quote(in); got != want {
			t.Errorf("Quote(%q): got %s, want %s", in, got, want)
		}
	}
}

func TestIdent(t *testing.T) {
	cases := map[string]string{
		"zgFont":   "zgFont",
		"uni-font": "uni-font",
		"1st":      `\31 st`,
		"a.b":      `a\.b`,
		"x y":      `x\ y`,
	}
	for in, want := range cases {
		if got := Ident(in); got != want {
			t.Errorf("Ident(%q): got %s, want %s", in, got, want)
		}
	}
}

func TestCSS_EscapesHostileValues(t *testing.T) {
	css := Faces{
		LegacyURL:    `x"); } body { display: none; } @import url("`,
		LegacyFamily: `Evil"Font`,
	}.CSS("zgFont", "uniFont")
	if strings.Contains(css, `x");`) {
		t.Errorf("URL broke out of its string:\n%s", css)
	}
	if !strings.Contains(css, `url("x\22 ); }`) {
		t.Errorf("URL not escaped:\n%s", css)
	}
	if !strings.Contains(css, `"Evil\22 Font"`) {
		t.Errorf("family not escaped:\n%s", css)
	}
}
