package audit

import "context"

// Store persists audit events. Append is the only operation the core needs;
// querying is a concern of whichever backend holds the log.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher forwards audit events to an external sink (e.g. Kafka). Publishing
// is best-effort and decoupled from the fail-closed store append.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
