// Package member owns the per-member ciphertext cells: one opaque encrypted
// paid-through handle per member, merged monotonically and never decrypted.
package member

import (
	"time"

	"duesgate/internal/fhe"
)

// Record is one member's cell. The handle is opaque; the cell knows when it
// was last reassigned but never what it contains.
//
// Registered is an explicit flag rather than a zero-tag sentinel on the
// handle. A sentinel cannot distinguish "never written" from "written with a
// genuinely zero handle", so registration is tracked directly; the
// non-zero-tag check remains as a consistency assertion on every write.
type Record struct {
	Handle     fhe.Handle
	Registered bool
	UpdatedAt  time.Time
}
