package observability

import (
	"context"
	"log/slog"
)

// SlogObserver emits events to a slog.Logger. The event type becomes
// the log message, Source and Data keys become attributes, and events
// below the observer's floor are dropped before the logger sees them.
// Per-turn pipeline events are verbose, so the floor is what keeps a
// production log readable.
type SlogObserver struct {
	logger *slog.Logger
	floor  Level
}

// NewSlogObserver creates an observer with no level floor; the logger's
// own handler level still applies.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

// NewSlogObserverAt creates an observer that drops events below min.
func NewSlogObserverAt(logger *slog.Logger, min Level) *SlogObserver {
	return &SlogObserver{logger: logger, floor: min}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	if event.Level < o.floor {
		return
	}

	attrs := make([]slog.Attr, 0, len(event.Data)+1)
	attrs = append(attrs, slog.String("source", event.Source))
	for k, v := range event.Data {
		attrs = append(attrs, slog.Any(k, v))
	}

	o.logger.LogAttrs(ctx, event.Level.SlogLevel(), string(event.Type), attrs...)
}
