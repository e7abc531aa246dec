package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and the homomorphic
// capability return these (optionally wrapped) so services can translate them
// into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrProofInvalid: attested ciphertext failed cryptographic verification
// - ErrBudgetExceeded: homomorphic work exceeded the operation budget
// - ErrPermissionMissing: handle referenced without a standing self-grant
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: service or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound          = errors.New("not found")
	ErrProofInvalid      = errors.New("proof invalid")
	ErrBudgetExceeded    = errors.New("budget exceeded")
	ErrPermissionMissing = errors.New("permission missing")
	ErrInvalidState      = errors.New("invalid state")
	ErrUnavailable       = errors.New("unavailable")
)
