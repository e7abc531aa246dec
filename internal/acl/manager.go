package acl

import (
	"context"
	"time"

	"duesgate/internal/fhe"
	"duesgate/internal/platform/metrics"
	id "duesgate/pkg/domain"
	dErrors "duesgate/pkg/domain-errors"
)

// Manager is the access control surface the rest of the core talks to. It
// validates grant requests, stamps them, and records metrics. Manager also
// implements fhe.UsePolicy so the capability can enforce grant-then-use.
type Manager struct {
	store   Store
	metrics *metrics.Metrics
	clock   func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mx
	}
}

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{store: store, clock: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GrantSelf records the system's standing permission to keep operating on a
// handle. Must be called after every newly produced or newly stored
// ciphertext; a stale grant on an old handle does not carry over.
func (m *Manager) GrantSelf(ctx context.Context, handle fhe.HandleID) error {
	return m.append(ctx, Grant{Handle: handle, Scope: ScopeSelf})
}

// GrantPrivate authorizes exactly one principal to later obtain the plaintext
// of this specific handle. The grant does not extend to the member or to
// future recomputations.
func (m *Manager) GrantPrivate(ctx context.Context, handle fhe.HandleID, principal id.PrincipalID) error {
	if principal.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "private grant requires a principal")
	}
	return m.append(ctx, Grant{Handle: handle, Scope: ScopePrivate, Principal: principal})
}

// GrantPublic flags the handle as globally decryptable.
func (m *Manager) GrantPublic(ctx context.Context, handle fhe.HandleID) error {
	return m.append(ctx, Grant{Handle: handle, Scope: ScopePublic})
}

func (m *Manager) append(ctx context.Context, grant Grant) error {
	if grant.Handle.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "grant requires a handle")
	}
	grant.GrantedAt = m.clock()
	if err := m.store.Append(ctx, grant); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append grant")
	}
	if m.metrics != nil {
		m.metrics.GrantsIssued.WithLabelValues(string(grant.Scope)).Inc()
	}
	return nil
}

// SystemMayUse implements fhe.UsePolicy.
func (m *Manager) SystemMayUse(ctx context.Context, handle fhe.HandleID) (bool, error) {
	return m.store.SystemMayUse(ctx, handle)
}

// MayDecrypt answers the out-of-band private decryption path.
func (m *Manager) MayDecrypt(ctx context.Context, handle fhe.HandleID, principal id.PrincipalID) (bool, error) {
	return m.store.MayDecrypt(ctx, handle, principal)
}

// IsPublic answers the out-of-band public decryption path.
func (m *Manager) IsPublic(ctx context.Context, handle fhe.HandleID) (bool, error) {
	return m.store.IsPublic(ctx, handle)
}

var _ fhe.UsePolicy = (*Manager)(nil)
