package acl

import (
	"context"

	"duesgate/internal/fhe"
	id "duesgate/pkg/domain"
)

// Store persists grants. Appending an already-present grant is a no-op, not
// an error; grants never expire and are never removed.
type Store interface {
	Append(ctx context.Context, grant Grant) error

	// SystemMayUse reports whether the handle carries a self grant.
	SystemMayUse(ctx context.Context, handle fhe.HandleID) (bool, error)

	// MayDecrypt reports whether the principal can obtain the plaintext of
	// the handle: a private grant naming it, or a public grant.
	MayDecrypt(ctx context.Context, handle fhe.HandleID, principal id.PrincipalID) (bool, error)

	// IsPublic reports whether the handle carries a public grant.
	IsPublic(ctx context.Context, handle fhe.HandleID) (bool, error)
}
