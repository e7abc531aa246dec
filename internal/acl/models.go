// Package acl manages decryption and use grants on ciphertext handles.
//
// Grants are additive and irrevocable: a handle may hold a self grant, any
// number of private grants, and a public grant at once, and whichever grant
// exists is honored. There is no revoke operation in this design.
package acl

import (
	"time"

	"duesgate/internal/fhe"
	id "duesgate/pkg/domain"
)

// Scope classifies what a grant permits.
type Scope string

const (
	// ScopeSelf gives the system standing permission to use the handle as an
	// operand in future homomorphic operations. Required after every newly
	// produced or newly stored ciphertext.
	ScopeSelf Scope = "self"

	// ScopePrivate authorizes exactly one principal to obtain the plaintext
	// of this handle through the out-of-band decryption protocol.
	ScopePrivate Scope = "private"

	// ScopePublic flags the handle as globally decryptable by any party.
	ScopePublic Scope = "public"
)

// Grant is one authorization record, scoped to a single handle. Private
// grants name a principal; self and public grants do not.
type Grant struct {
	Handle    fhe.HandleID
	Scope     Scope
	Principal id.PrincipalID
	GrantedAt time.Time
}
