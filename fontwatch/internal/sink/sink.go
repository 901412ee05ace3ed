// Package sink delivers engine reports: JSON lines on a writer, webhook
// POSTs, in-process callbacks, and a router fanning out to several.
package sink

import (
	"github.com/hazyhaar/mmfont/report"
)

// Sink is report.Sink, restated here for the implementations' sake.
type Sink = report.Sink

// envelope tags each JSON payload with its kind.
type envelope struct {
	Type string `json:"type"` // decision | document
	Data any    `json:"data"`
}
