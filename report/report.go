// Package report defines what the engine and the watcher emit: one
// Decision per marking, queueing or conversion, and a Document for every
// page normalized without a browser. Consumers import this package to
// receive them through a Sink.
package report

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Action is what the engine did to a node.
type Action string

const (
	ActionMarked     Action = "marked"     // marker attached, font substitution expected
	ActionUnmarked   Action = "unmarked"   // stale marker removed, text now native
	ActionQueued     Action = "queued"     // recorded for conversion pending capability
	ActionConverted  Action = "converted"  // text rewritten into the native encoding
	ActionTooltip    Action = "tooltip"    // title attribute rewritten
	ActionTitle      Action = "title"      // document title rewritten
	ActionProfile    Action = "profile"    // native encoding measured
	ActionCapability Action = "capability" // embedding capability resolved
	ActionFailed     Action = "failed"     // host refused a write
)

// Decision is a single engine action.
type Decision struct {
	ID        string `json:"id"` // UUIDv7
	PageID    string `json:"page_id,omitempty"`
	PageURL   string `json:"page_url,omitempty"`
	Action    Action `json:"action"`
	Label     string `json:"label,omitempty"` // classified encoding of the text
	Tag       string `json:"tag,omitempty"`
	Path      string `json:"path,omitempty"`
	Before    string `json:"before,omitempty"`
	After     string `json:"after,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// Document is a normalized page produced without a live browser.
type Document struct {
	ID        string `json:"id"`
	PageURL   string `json:"page_url"`
	PageID    string `json:"page_id"`
	HTML      []byte `json:"html"`
	HTMLHash  string `json:"html_hash"` // SHA-256 hex
	Timestamp int64  `json:"timestamp"`
}

// Sink receives reports. Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, d Decision) error
	SendDocument(ctx context.Context, doc Document) error
	Close() error
}

// NewID returns a time-sortable UUIDv7 string.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// MarshalDecision serialises a Decision to JSON.
func MarshalDecision(d *Decision) ([]byte, error) {
	return json.Marshal(d)
}

// UnmarshalDecision deserialises a Decision from JSON.
func UnmarshalDecision(data []byte) (*Decision, error) {
	var d Decision
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// MarshalDocument serialises a Document to JSON.
func MarshalDocument(doc *Document) ([]byte, error) {
	return json.Marshal(doc)
}

// HashHTML returns the SHA-256 hex digest of raw HTML bytes.
func HashHTML(html []byte) string {
	h := sha256.Sum256(html)
	return fmt.Sprintf("%x", h)
}
