package script

import "testing"

func TestContainsMyanmar(t *testing.T) {
	cases := map[string]bool{
		"":                     false,
		"hello":                false,
		"\u1000":               true,
		"abc \u104e":           true,
		"\uaa60":               true,
		"\uaa80":               false,
		"\u10a0 georgian only": false,
	}
	for in, want := range cases {
		if got := ContainsMyanmar(in); got != want {
			t.Errorf("ContainsMyanmar(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestClassifier_Threshold(t *testing.T) {
	var p float64
	c := NewClassifier(ScorerFunc(func(string) float64 { return p }))

	p = 0.5
	if got := c.Classify("\u1000"); got != Legacy {
		t.Errorf("p=0.5: got %v, want legacy", got)
	}
	p = 0.49
	if got := c.Classify("\u1000"); got != Unicode {
		t.Errorf("p=0.49: got %v, want unicode", got)
	}
}

func TestClassifier_SkipsNonMyanmar(t *testing.T) {
	called := false
	c := NewClassifier(ScorerFunc(func(string) float64 {
		called = true
		return 1
	}))
	if got := c.Classify("plain latin text"); got != Unicode {
		t.Errorf("Classify: got %v, want unicode", got)
	}
	if called {
		t.Error("scorer called on text without Myanmar code points")
	}
}

func TestPatternScorer(t *testing.T) {
	s := NewPatternScorer()

	// "kaung" typed in legacy visual order.
	legacy := "\u1031\u1000\u102c\u1004\u1039\u1038"
	if p := s.Probability(legacy); p < 0.5 {
		t.Errorf("legacy sample: got %v, want >= 0.5", p)
	}

	// Same word in Unicode logical order.
	uni := "\u1000\u1031\u102c\u1004\u103a\u1038"
	if p := s.Probability(uni); p >= 0.5 {
		t.Errorf("unicode sample: got %v, want < 0.5", p)
	}

	if p := s.Probability("\u1000"); p != 0 {
		t.Errorf("no evidence: got %v, want 0", p)
	}
}

func TestParseLabel(t *testing.T) {
	if l, ok := ParseLabel("zawgyi"); !ok || l != Legacy {
		t.Errorf("zawgyi: got %v %v", l, ok)
	}
	if l, ok := ParseLabel("unicode"); !ok || l != Unicode {
		t.Errorf("unicode: got %v %v", l, ok)
	}
	if _, ok := ParseLabel("klingon"); ok {
		t.Error("klingon: expected !ok")
	}
	if Legacy.Other() != Unicode || Unicode.Other() != Legacy {
		t.Error("Other is not an involution")
	}
}
