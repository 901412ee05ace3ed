package report

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Fatalf("NewID: duplicate %q", a)
	}
	u, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if u.Version() != 7 {
		t.Errorf("NewID: got version %d, want 7", u.Version())
	}
}

func TestHashHTML(t *testing.T) {
	html := []byte("<html><body>test</body></html>")
	h1 := HashHTML(html)
	if h1 != HashHTML(html) {
		t.Error("HashHTML not deterministic")
	}
	if len(h1) != 64 {
		t.Errorf("HashHTML length: got %d, want 64", len(h1))
	}
}

func TestDecisionOmitsEmpty(t *testing.T) {
	data, err := MarshalDecision(&Decision{ID: "x", Action: ActionQueued, Timestamp: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"x","action":"queued","timestamp":1}`
	if string(data) != want {
		t.Errorf("MarshalDecision: got %s, want %s", data, want)
	}
	d, err := UnmarshalDecision(data)
	if err != nil {
		t.Fatal(err)
	}
	if d.Action != ActionQueued {
		t.Errorf("Action: got %q", d.Action)
	}
}
