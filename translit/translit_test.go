package translit

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazyhaar/mmfont/script"
)

func TestDefault_RoundTrip(t *testing.T) {
	r := Default()
	words := []string{
		"\u1000\u1031\u102c\u1004\u103a\u1038", // kaung
		"\u1000\u103c\u1031",                   // medial ra + e-vowel
		"\u1019\u103b\u102c\u1038",             // medial ya
		"\u1015\u103b\u103c\u1031",             // ya + ra + e-vowel
		"\u104e\u1004\u103a\u1038",             // ligature
	}
	for _, w := range words {
		zg := r.UnicodeToLegacy(w)
		if zg == w {
			t.Errorf("UnicodeToLegacy(%+q): unchanged", w)
		}
		if back := r.LegacyToUnicode(zg); back != w {
			t.Errorf("round trip %+q: got %+q via %+q", w, back, zg)
		}
	}
}

func TestDefault_KnownPairs(t *testing.T) {
	r := Default()
	uni := "\u1000\u1031\u102c\u1004\u103a\u1038"
	zg := "\u1031\u1000\u102c\u1004\u1039\u1038"
	if got := r.UnicodeToLegacy(uni); got != zg {
		t.Errorf("UnicodeToLegacy: got %+q, want %+q", got, zg)
	}
	if got := r.LegacyToUnicode(zg); got != uni {
		t.Errorf("LegacyToUnicode: got %+q, want %+q", got, uni)
	}
	if got := r.LegacyToUnicode("\u104e"); got != "\u104e\u1004\u103a\u1038" {
		t.Errorf("ligature: got %+q", got)
	}
}

func TestDefault_ASCIIUntouched(t *testing.T) {
	r := Default()
	for _, s := range []string{"", "hello, world", "42 < 43"} {
		if got := r.LegacyToUnicode(s); got != s {
			t.Errorf("LegacyToUnicode(%q): got %q", s, got)
		}
		if got := r.UnicodeToLegacy(s); got != s {
			t.Errorf("UnicodeToLegacy(%q): got %q", s, got)
		}
	}
}

func TestTo(t *testing.T) {
	r := Default()
	zg := "\u1031\u1000"
	if got := To(r, script.Legacy, script.Legacy, zg); got != zg {
		t.Errorf("same label: got %+q", got)
	}
	if got := To(r, script.Legacy, script.Unicode, zg); got != "\u1000\u1031" {
		t.Errorf("legacy->unicode: got %+q", got)
	}
	if got := To(r, script.Unicode, script.Legacy, "\u1000\u1031"); got != zg {
		t.Errorf("unicode->legacy: got %+q", got)
	}
}

func TestLoad_Custom(t *testing.T) {
	src := `
name: custom
legacy_to_unicode:
  map:
    - {from: "ab", to: "x"}
    - {from: "a", to: "y"}
  post:
    - pattern: 'x+'
      replace: "X"
unicode_to_legacy:
  map:
    - {from: "X", to: "ab"}
`
	r, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if r.Name() != "custom" {
		t.Errorf("Name: got %q", r.Name())
	}
	if got := r.LegacyToUnicode("abab a"); got != "X y" {
		t.Errorf("LegacyToUnicode: got %q, want %q", got, "X y")
	}
	if got := r.UnicodeToLegacy("X"); got != "ab" {
		t.Errorf("UnicodeToLegacy: got %q", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(strings.NewReader("name: empty\n")); !errors.Is(err, ErrNoRules) {
		t.Errorf("empty: got %v, want ErrNoRules", err)
	}
	bad := "legacy_to_unicode:\n  pre:\n    - pattern: '('\n      replace: ''\n"
	if _, err := Load(strings.NewReader(bad)); err == nil {
		t.Error("bad regexp: expected error")
	}
	if _, err := Load(strings.NewReader("legacy_to_unicode: [")); err == nil {
		t.Error("bad yaml: expected error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, basicYAML, 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if r.Name() != "basic" {
		t.Errorf("Name: got %q", r.Name())
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file: expected error")
	}
}
