package fontwatch

import (
	"context"
	"io"
	"log/slog"

	"github.com/hazyhaar/mmfont/fontwatch/internal/sink"
	"github.com/hazyhaar/mmfont/report"
)

// Sink is the output interface for decisions and normalized documents.
type Sink = sink.Sink

// NewStdoutSink creates a stdout JSON-lines sink.
func NewStdoutSink(w io.Writer) Sink {
	return sink.NewStdout(w)
}

// NewWebhookSink creates a webhook POST sink with retry.
func NewWebhookSink(url string, logger *slog.Logger) Sink {
	return sink.NewWebhook(url, sink.WithWebhookLogger(logger))
}

// NewCallbackSink creates an in-process sink. Nil functions drop the
// corresponding output.
func NewCallbackSink(
	onDecision func(ctx context.Context, d report.Decision) error,
	onDocument func(ctx context.Context, doc report.Document) error,
) Sink {
	return sink.NewCallback(onDecision, onDocument)
}

// SinksFromConfig builds the configured sinks. Unknown types are logged
// and skipped; with none left, a stdout sink is returned.
func SinksFromConfig(cfgs []SinkConfig, logger *slog.Logger) []Sink {
	if logger == nil {
		logger = slog.Default()
	}
	var sinks []Sink
	for _, sc := range cfgs {
		switch sc.Type {
		case "stdout":
			sinks = append(sinks, NewStdoutSink(nil))
		case "webhook":
			sinks = append(sinks, NewWebhookSink(sc.URL, logger))
		default:
			logger.Warn("fontwatch: unknown sink type", "type", sc.Type)
		}
	}
	if len(sinks) == 0 {
		sinks = append(sinks, NewStdoutSink(nil))
	}
	return sinks
}
