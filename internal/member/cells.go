package member

import (
	"context"
	"errors"
	"time"

	"duesgate/internal/acl"
	"duesgate/internal/fhe"
	"duesgate/internal/platform/metrics"
	id "duesgate/pkg/domain"
	dErrors "duesgate/pkg/domain-errors"
	"duesgate/pkg/platform/audit"
	"duesgate/pkg/platform/sentinel"
)

// Cells is the ciphertext store: it ingests attested updates, merges them
// monotonically without decrypting either side, and re-acquires the system's
// standing permission on every reassignment.
//
// Commit ordering inside Set and Reset keeps operations atomic: all
// homomorphic work, the self-grant, and the audit append happen before the
// cell is written, so any failure leaves the stored state untouched.
type Cells struct {
	store      Store
	capability fhe.Capability
	grants     *acl.Manager
	recorder   *audit.Recorder
	metrics    *metrics.Metrics
	clock      func() time.Time
}

// CellsOption configures Cells.
type CellsOption func(*Cells)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) CellsOption {
	return func(c *Cells) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) CellsOption {
	return func(c *Cells) {
		c.metrics = m
	}
}

func NewCells(store Store, capability fhe.Capability, grants *acl.Manager, recorder *audit.Recorder, opts ...CellsOption) *Cells {
	c := &Cells{
		store:      store,
		capability: capability,
		grants:     grants,
		recorder:   recorder,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the member's cell.
//
// Errors: CodeNotRegistered when the member was never written.
func (c *Cells) Get(ctx context.Context, member id.MemberID) (Record, error) {
	record, err := c.store.Get(ctx, member)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Record{}, dErrors.Wrap(err, dErrors.CodeNotRegistered, "member has no ciphertext cell")
		}
		return Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load member cell")
	}
	return record, nil
}

// Lookup returns the member's cell and whether one exists, without treating
// absence as an error. Used by the raw-handle audit endpoint.
func (c *Cells) Lookup(ctx context.Context, member id.MemberID) (Record, bool, error) {
	record, err := c.store.Get(ctx, member)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Record{}, false, nil
		}
		return Record{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load member cell")
	}
	return record, true, nil
}

// Set ingests an attested encrypted paid-through value and merges it into the
// member's cell. The first write for a member stores the value directly;
// later writes store select(incoming >= current, incoming, current), so the
// cell never decreases regardless of submission order. Returns the new handle
// and whether this was a first-time registration.
//
// Errors: CodeProofInvalid when the attestation fails verification,
// CodeResourceExhausted when the merge exceeds the operation budget,
// CodePermissionMissing when the stored handle lost its self-grant.
func (c *Cells) Set(ctx context.Context, member id.MemberID, actor id.PrincipalID, att fhe.AttestedCiphertext) (fhe.Handle, bool, error) {
	incoming, err := c.capability.Ingest(ctx, att)
	if err != nil {
		return fhe.Handle{}, false, fhe.Translate(err)
	}

	current, exists, err := c.Lookup(ctx, member)
	if err != nil {
		return fhe.Handle{}, false, err
	}

	updated := incoming
	if exists {
		notBehind, err := c.capability.Ge(ctx, incoming, current.Handle)
		if err != nil {
			return fhe.Handle{}, false, fhe.Translate(err)
		}
		updated, err = c.capability.Select(ctx, notBehind, incoming, current.Handle)
		if err != nil {
			return fhe.Handle{}, false, fhe.Translate(err)
		}
	}

	if err := c.commit(ctx, member, actor, updated, !exists); err != nil {
		return fhe.Handle{}, false, err
	}
	if c.metrics != nil {
		if exists {
			c.metrics.UpdatesMerged.Inc()
		} else {
			c.metrics.MembersRegistered.Inc()
		}
	}
	return updated, !exists, nil
}

// Reset overwrites a registered member's cell with a fresh zero-valued
// ciphertext. The cell stays registered; it is never deleted.
//
// Errors: CodeNotRegistered when the member was never written.
func (c *Cells) Reset(ctx context.Context, member id.MemberID, actor id.PrincipalID) (fhe.Handle, error) {
	if _, err := c.Get(ctx, member); err != nil {
		return fhe.Handle{}, err
	}
	zero, err := c.capability.Zero(ctx)
	if err != nil {
		return fhe.Handle{}, fhe.Translate(err)
	}
	if err := c.commitEvent(ctx, member, actor, zero, audit.EventMemberReset); err != nil {
		return fhe.Handle{}, err
	}
	if c.metrics != nil {
		c.metrics.MembersReset.Inc()
	}
	return zero, nil
}

func (c *Cells) commit(ctx context.Context, member id.MemberID, actor id.PrincipalID, handle fhe.Handle, created bool) error {
	action := audit.EventMemberUpdated
	if created {
		action = audit.EventMemberRegistered
	}
	return c.commitEvent(ctx, member, actor, handle, action)
}

// commitEvent performs the write sequence shared by Set and Reset: assert the
// handle tag, re-acquire the self-grant for the new handle, append the audit
// event, then store the cell. The store write goes last, so a failure at any
// earlier step leaves the cell untouched. If the store write itself fails,
// the self-grant and audit event remain but refer to a tag that never became
// the member's cell; the grant admits nothing readable.
func (c *Cells) commitEvent(ctx context.Context, member id.MemberID, actor id.PrincipalID, handle fhe.Handle, action audit.AuditEvent) error {
	// Consistency assertion: a real ciphertext never exports the zero tag.
	if handle.Export().IsZero() {
		return dErrors.New(dErrors.CodeInvariantViolation, "capability produced a zero handle tag")
	}
	if err := c.grants.GrantSelf(ctx, handle.Export()); err != nil {
		return err
	}
	event := audit.Event{
		Member: member,
		Actor:  actor,
		Action: string(action),
		Handle: handle.Export().String(),
	}
	if err := c.recorder.Record(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit event")
	}
	record := Record{Handle: handle, Registered: true, UpdatedAt: c.clock()}
	if err := c.store.Put(ctx, member, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store member cell")
	}
	return nil
}
