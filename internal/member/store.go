package member

import (
	"context"

	id "duesgate/pkg/domain"
)

// Store persists member cells. Get returns sentinel.ErrNotFound for members
// that were never written; cells are never deleted, only overwritten.
type Store interface {
	Get(ctx context.Context, member id.MemberID) (Record, error)
	Put(ctx context.Context, member id.MemberID, record Record) error
}
