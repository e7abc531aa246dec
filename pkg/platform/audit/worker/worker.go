package worker

import (
	"context"
	"log/slog"

	audit "duesgate/pkg/platform/audit"
)

// Worker drains the recorder's publish queue into the external sink. It keeps
// background processing testable without wiring queue implementations into
// the recorder itself.
type Worker struct {
	publisher audit.Publisher
	inbox     <-chan audit.Event
	logger    *slog.Logger
}

func New(publisher audit.Publisher, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{publisher: publisher, inbox: inbox, logger: logger}
}

// Run publishes until the context is cancelled. Publish failures are logged
// and skipped; the event is already persisted in the store.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.publisher.Publish(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit publish failed",
					"action", event.Action,
					"error", err,
				)
			}
		}
	}
}
