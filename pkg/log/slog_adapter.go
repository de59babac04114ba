package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes adapter events to an slog.Logger.
// Useful for development when you want to watch the state machine in
// console output.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Fatal and error events log at
// Error level, everything else at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("component", event.Component.String()),
		slog.String("category", event.Category.String()),
	}

	switch {
	case event.Dispatch != nil:
		attrs = append(attrs,
			slog.String("state", event.Dispatch.State),
			slog.String("event", event.Dispatch.Event),
			slog.String("outcome", event.Dispatch.Outcome.String()),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Broadcast != nil:
		attrs = append(attrs,
			slog.String("old_state", event.Broadcast.OldState),
			slog.String("new_state", event.Broadcast.NewState),
		)
	case event.Subscriber != nil:
		attrs = append(attrs,
			slog.String("action", event.Subscriber.Action.String()),
			slog.Int("count", event.Subscriber.Count),
		)
		if event.Subscriber.Handle != "" {
			attrs = append(attrs, slog.String("handle", event.Subscriber.Handle))
		}
		if event.Subscriber.Size > 0 {
			attrs = append(attrs, slog.Int("size", event.Subscriber.Size))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("op", event.Error.Op),
			slog.String("error", event.Error.Message),
		)
	}

	level := slog.LevelDebug
	if event.Category == CategoryError || event.Category == CategoryFatal {
		level = slog.LevelError
	}

	a.logger.LogAttrs(context.Background(), level, "adapter event", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
