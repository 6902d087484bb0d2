package worker

import (
	"context"
	"log/slog"

	"onestack/internal/events"
)

// Worker consumes progress events from a channel and persists them. A failed
// append is logged and skipped; the feed is advisory, not transactional.
type Worker struct {
	store  events.Store
	inbox  <-chan events.Event
	logger *slog.Logger
}

func New(store events.Store, inbox <-chan events.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to persist event",
					"error", err,
					"action", string(event.Action),
				)
			}
		}
	}
}
