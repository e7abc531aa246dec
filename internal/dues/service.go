// Package dues coordinates the dues-tracking entry points: role-gated
// mutations, status checks, and the public grace window. It owns the global
// role/config state and serializes mutations the way the hosting ledger
// would, so every operation observes a fully materialized prior state.
package dues

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"duesgate/internal/acl"
	"duesgate/internal/fhe"
	"duesgate/internal/member"
	"duesgate/internal/platform/metrics"
	"duesgate/internal/status"
	id "duesgate/pkg/domain"
	dErrors "duesgate/pkg/domain-errors"
	"duesgate/pkg/platform/audit"
)

// Visibility labels for status-check events.
const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
)

// Service is the top-level coordinator. Role and grace state is initialized
// once at construction and mutated only through the gated setters.
type Service struct {
	mu        sync.Mutex
	owner     id.PrincipalID
	treasurer id.PrincipalID
	graceDays uint32

	budget    uint64
	cells     *member.Cells
	evaluator *status.Evaluator
	grants    *acl.Manager
	recorder  *audit.Recorder
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	clock     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService constructs the coordinator. The owner principal bootstraps the
// owner role and must be non-nil; there is no treasurer until the owner
// assigns one.
func NewService(
	cells *member.Cells,
	evaluator *status.Evaluator,
	grants *acl.Manager,
	recorder *audit.Recorder,
	logger *slog.Logger,
	owner id.PrincipalID,
	graceDays uint32,
	budget uint64,
	opts ...Option,
) (*Service, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "owner principal cannot be nil")
	}
	s := &Service{
		owner:     owner,
		graceDays: graceDays,
		budget:    budget,
		cells:     cells,
		evaluator: evaluator,
		grants:    grants,
		recorder:  recorder,
		logger:    logger,
		tracer:    otel.Tracer("duesgate/dues"),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterOrUpdate ingests an attested encrypted paid-through value for a
// member and merges it monotonically. Admin-gated: owner or treasurer.
// Returns the new handle tag and whether this registered the member.
func (s *Service) RegisterOrUpdate(ctx context.Context, caller id.PrincipalID, memberID id.MemberID, att fhe.AttestedCiphertext) (fhe.HandleID, bool, error) {
	ctx, done := s.begin(ctx, "RegisterOrUpdate")
	defer done()
	if err := s.requireAdmin(caller); err != nil {
		return fhe.HandleID{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	handle, created, err := s.cells.Set(ctx, memberID, caller, att)
	if err != nil {
		s.observeBudget(err)
		return fhe.HandleID{}, false, err
	}
	return handle.Export(), created, nil
}

// CheckStatusPrivate evaluates the member's standing and grants exactly the
// caller the right to decrypt the resulting boolean handle. Open to any
// authenticated principal.
func (s *Service) CheckStatusPrivate(ctx context.Context, caller id.PrincipalID, memberID id.MemberID) (fhe.HandleID, error) {
	return s.checkStatus(ctx, caller, memberID, VisibilityPrivate)
}

// CheckStatusPublic evaluates the member's standing and marks the resulting
// boolean handle globally decryptable. Open to any authenticated principal.
func (s *Service) CheckStatusPublic(ctx context.Context, caller id.PrincipalID, memberID id.MemberID) (fhe.HandleID, error) {
	return s.checkStatus(ctx, caller, memberID, VisibilityPublic)
}

func (s *Service) checkStatus(ctx context.Context, caller id.PrincipalID, memberID id.MemberID, visibility string) (fhe.HandleID, error) {
	ctx, done := s.begin(ctx, "CheckStatus")
	defer done()

	now := s.nowSeconds()
	grace := s.GraceDays()

	result, err := s.evaluator.Evaluate(ctx, memberID, now, grace)
	if err != nil {
		s.observeBudget(err)
		return fhe.HandleID{}, err
	}
	tag := result.Export()

	// The fresh result handle needs its own grants: self so the system could
	// reuse it, and the requested decryption scope. Grants precede the audit
	// event so a failure commits nothing visible.
	if err := s.grants.GrantSelf(ctx, tag); err != nil {
		return fhe.HandleID{}, err
	}
	action := audit.EventStatusCheckedPrivate
	if visibility == VisibilityPublic {
		action = audit.EventStatusCheckedPublic
		if err := s.grants.GrantPublic(ctx, tag); err != nil {
			return fhe.HandleID{}, err
		}
	} else {
		if err := s.grants.GrantPrivate(ctx, tag, caller); err != nil {
			return fhe.HandleID{}, err
		}
	}

	event := audit.Event{
		Member:     memberID,
		Actor:      caller,
		Action:     string(action),
		Handle:     tag.String(),
		Visibility: visibility,
	}
	if err := s.recorder.Record(ctx, event); err != nil {
		return fhe.HandleID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit event")
	}
	if s.metrics != nil {
		s.metrics.StatusChecks.WithLabelValues(visibility).Inc()
	}
	return tag, nil
}

// SetGraceDays updates the public grace window. Owner only.
func (s *Service) SetGraceDays(ctx context.Context, caller id.PrincipalID, days uint32) error {
	ctx, done := s.begin(ctx, "SetGraceDays")
	defer done()
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.graceDays
	event := audit.Event{
		Actor:  caller,
		Action: string(audit.EventGraceUpdated),
		Detail: fmt.Sprintf("%d -> %d", old, days),
	}
	if err := s.recorder.Record(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit event")
	}
	s.graceDays = days
	return nil
}

// SetTreasurer assigns the singular treasurer role. Owner only; rejects the
// nil principal before any mutation.
func (s *Service) SetTreasurer(ctx context.Context, caller, principal id.PrincipalID) error {
	ctx, done := s.begin(ctx, "SetTreasurer")
	defer done()
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if principal.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "treasurer principal cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	event := audit.Event{
		Actor:  caller,
		Action: string(audit.EventTreasurerChanged),
		Detail: principal.String(),
	}
	if err := s.recorder.Record(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit event")
	}
	s.treasurer = principal
	return nil
}

// TransferOwnership moves the owner role to a new principal. Owner only;
// rejects the nil principal before any mutation.
func (s *Service) TransferOwnership(ctx context.Context, caller, principal id.PrincipalID) error {
	ctx, done := s.begin(ctx, "TransferOwnership")
	defer done()
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if principal.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "owner principal cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	event := audit.Event{
		Actor:  caller,
		Action: string(audit.EventOwnershipTransferred),
		Detail: principal.String(),
	}
	if err := s.recorder.Record(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit event")
	}
	s.owner = principal
	return nil
}

// ResetMember overwrites a member's cell with a zero-valued ciphertext and
// re-grants self on the new handle. Owner only.
func (s *Service) ResetMember(ctx context.Context, caller id.PrincipalID, memberID id.MemberID) (fhe.HandleID, error) {
	ctx, done := s.begin(ctx, "ResetMember")
	defer done()
	if err := s.requireOwner(caller); err != nil {
		return fhe.HandleID{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	handle, err := s.cells.Reset(ctx, memberID, caller)
	if err != nil {
		s.observeBudget(err)
		return fhe.HandleID{}, err
	}
	return handle.Export(), nil
}

// PaidThroughHandle returns the raw handle tag for audit correlation, plus
// whether the member is registered. Open to any caller; the tag reveals
// nothing about the plaintext.
func (s *Service) PaidThroughHandle(ctx context.Context, memberID id.MemberID) (fhe.HandleID, bool, error) {
	record, found, err := s.cells.Lookup(ctx, memberID)
	if err != nil {
		return fhe.HandleID{}, false, err
	}
	if !found {
		return fhe.HandleID{}, false, nil
	}
	return record.Handle.Export(), true, nil
}

// GraceDays returns the current public grace window.
func (s *Service) GraceDays() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graceDays
}

// Owner returns the current owner principal.
func (s *Service) Owner() id.PrincipalID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Treasurer returns the current treasurer principal; zero when unassigned.
func (s *Service) Treasurer() id.PrincipalID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.treasurer
}

// begin installs a fresh homomorphic budget meter, opens a span, and starts
// the duration observation for one entry-point operation.
func (s *Service) begin(ctx context.Context, operation string) (context.Context, func()) {
	ctx = fhe.WithMeter(ctx, fhe.NewMeter(s.budget))
	ctx, span := s.tracer.Start(ctx, "dues."+operation)
	start := s.clock()
	return ctx, func() {
		span.End()
		if s.metrics != nil {
			s.metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		}
	}
}

func (s *Service) requireOwner(caller id.PrincipalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.owner {
		return dErrors.New(dErrors.CodeUnauthorized, "operation requires the owner role")
	}
	return nil
}

func (s *Service) requireAdmin(caller id.PrincipalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.owner && (s.treasurer.IsNil() || caller != s.treasurer) {
		return dErrors.New(dErrors.CodeUnauthorized, "operation requires the owner or treasurer role")
	}
	return nil
}

func (s *Service) observeBudget(err error) {
	if s.metrics != nil && dErrors.HasCode(err, dErrors.CodeResourceExhausted) {
		s.metrics.BudgetExhausted.Inc()
	}
}

// nowSeconds truncates the clock to unsigned 32-bit epoch seconds, matching
// the encrypted integer width.
func (s *Service) nowSeconds() uint32 {
	return uint32(s.clock().Unix())
}
