package audit

import (
	"context"
	"log/slog"
	"time"
)

// Recorder is the single audit entry point for domain logic. The store append
// is synchronous and fail-closed: if the event cannot be persisted, the
// calling operation must not commit. Publishing to the external sink is
// queued and handled by the worker, fire-and-forget.
type Recorder struct {
	store     Store
	queue     chan Event
	logger    *slog.Logger
	clock     func() time.Time
	requestID func(context.Context) string
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithRequestIDFunc wires correlation-ID extraction so events carry the
// request ID without the audit package knowing about HTTP middleware.
func WithRequestIDFunc(fn func(context.Context) string) RecorderOption {
	return func(r *Recorder) {
		r.requestID = fn
	}
}

// NewRecorder creates a recorder backed by the given store. queueSize bounds
// the publish backlog; a full queue drops the publish, never the append.
func NewRecorder(store Store, logger *slog.Logger, queueSize int, opts ...RecorderOption) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	r := &Recorder{
		store:  store,
		queue:  make(chan Event, queueSize),
		logger: logger,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends the event to the store and queues it for publishing.
// Returns an error only when the append fails; the caller must then abort
// its operation so no state commits without its audit record.
func (r *Recorder) Record(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = r.clock()
	}
	if event.RequestID == "" && r.requestID != nil {
		event.RequestID = r.requestID(ctx)
	}
	if err := r.store.Append(ctx, event); err != nil {
		return err
	}
	select {
	case r.queue <- event:
	default:
		r.logger.Warn("audit publish queue full, event persisted but not forwarded",
			"action", event.Action,
		)
	}
	return nil
}

// Queue exposes the publish backlog for the worker.
func (r *Recorder) Queue() <-chan Event { return r.queue }
