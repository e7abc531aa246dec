// Package fhe defines the contract with the external homomorphic arithmetic
// capability. The core never sees plaintext: every encrypted value is an
// opaque handle, and all arithmetic happens behind the Capability interface.
//
// Encrypted integers are unsigned 32-bit. Sums that exceed the 32-bit range
// wrap per the underlying encrypted integer width; callers must not rely on
// saturation.
package fhe

import (
	"context"
	"encoding/hex"
)

// HandleID is the exported identity of a ciphertext handle: a fixed-size
// opaque tag that reveals nothing about the plaintext. The zero tag marks an
// absent handle and is never produced for a real ciphertext.
type HandleID [32]byte

// IsZero reports whether the tag is the absent-handle sentinel.
func (h HandleID) IsZero() bool { return h == HandleID{} }

func (h HandleID) String() string { return hex.EncodeToString(h[:]) }

// ParseHandleID decodes a hex tag. It returns false when the input is not a
// 64-character hex string.
func ParseHandleID(s string) (HandleID, bool) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(HandleID{}) {
		return HandleID{}, false
	}
	var id HandleID
	copy(id[:], b)
	return id, true
}

// Kind is the encrypted type behind a handle.
type Kind uint8

const (
	KindUint32 Kind = iota
	KindBool
)

// Handle references an encrypted value held by the capability.
type Handle struct {
	ID   HandleID
	Kind Kind
}

// Export returns the handle's exported identity. Audit events and API
// responses carry this tag, never the plaintext.
func (h Handle) Export() HandleID { return h.ID }

// AttestedCiphertext is a ciphertext submitted together with a proof that it
// was honestly generated for this system. Ingestion verifies the proof before
// the ciphertext enters the store.
type AttestedCiphertext struct {
	Ciphertext []byte
	Proof      []byte
}

// Capability is the external homomorphic arithmetic provider.
//
// Failure modes shared by all operations:
//   - sentinel.ErrBudgetExceeded when the metered cost of the call would
//     exceed the operation budget carried in ctx (see Meter); the operation
//     must then abort as a whole.
//   - sentinel.ErrPermissionMissing when an operand handle produced by an
//     earlier operation is referenced without a standing self-grant.
//
// Ingest additionally fails with sentinel.ErrProofInvalid when the attestation
// does not verify. All operations are synchronous and bounded-cost.
type Capability interface {
	// Ingest verifies the attestation and imports the ciphertext, returning a
	// fresh uint32 handle.
	Ingest(ctx context.Context, att AttestedCiphertext) (Handle, error)

	// Lift encrypts a public constant so it can be combined with sensitive
	// operands without revealing which operand is which.
	Lift(ctx context.Context, value uint32) (Handle, error)

	// Zero returns a fresh handle over an all-zero plaintext. Used by member
	// reset, never distinguishable from any other ciphertext by its tag.
	Zero(ctx context.Context) (Handle, error)

	// Add returns a handle over a+b (wrapping uint32).
	Add(ctx context.Context, a, b Handle) (Handle, error)

	// Ge returns a boolean handle over a >= b (inclusive comparison).
	Ge(ctx context.Context, a, b Handle) (Handle, error)

	// Select returns a handle over (cond ? ifTrue : ifFalse) without
	// decrypting cond.
	Select(ctx context.Context, cond, ifTrue, ifFalse Handle) (Handle, error)
}

// UsePolicy answers whether the system holds standing permission to use a
// stored handle as an operand. The capability consults it for every operand
// that was not produced within the current operation, making the
// grant-then-use rule a checked precondition instead of caller discipline.
type UsePolicy interface {
	SystemMayUse(ctx context.Context, handle HandleID) (bool, error)
}
