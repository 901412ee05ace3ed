package sink

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/hazyhaar/mmfont/report"
)

// Stdout writes JSON lines to an io.Writer (default os.Stdout).
type Stdout struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewStdout creates a Stdout sink. A nil w selects os.Stdout.
func NewStdout(w io.Writer) *Stdout {
	if w == nil {
		w = os.Stdout
	}
	return &Stdout{enc: json.NewEncoder(w)}
}

func (s *Stdout) Send(_ context.Context, d report.Decision) error {
	return s.encode(envelope{Type: "decision", Data: d})
}

func (s *Stdout) SendDocument(_ context.Context, doc report.Document) error {
	return s.encode(envelope{Type: "document", Data: doc})
}

func (s *Stdout) Close() error { return nil }

func (s *Stdout) encode(e envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(e)
}
