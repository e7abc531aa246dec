package fhe

import (
	"context"
	"sync"

	"duesgate/pkg/platform/sentinel"
)

// Per-call costs in budget units. Relative weights follow the usual pricing
// of encrypted ops: proof verification dominates, comparisons cost more than
// additions, constant lifting is cheap.
const (
	CostIngest uint64 = 8
	CostLift   uint64 = 1
	CostZero   uint64 = 1
	CostAdd    uint64 = 2
	CostGe     uint64 = 4
	CostSelect uint64 = 4
)

// Meter charges capability calls against a fixed per-operation budget.
// A fresh meter is installed in context at the start of every entry-point
// operation; the meter pointer also scopes handle freshness (operands created
// under the current meter are usable without a standing self-grant).
type Meter struct {
	mu        sync.Mutex
	remaining uint64
}

// NewMeter returns a meter with the given budget in cost units.
func NewMeter(budget uint64) *Meter {
	return &Meter{remaining: budget}
}

// Charge deducts cost from the remaining budget. It fails deterministically
// with sentinel.ErrBudgetExceeded once the budget would be exceeded; the
// meter is left unchanged in that case so the error is stable on retry
// within the same operation.
func (m *Meter) Charge(cost uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cost > m.remaining {
		return sentinel.ErrBudgetExceeded
	}
	m.remaining -= cost
	return nil
}

// Remaining reports the unspent budget.
func (m *Meter) Remaining() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remaining
}

type meterKey struct{}

// WithMeter installs an operation meter in context for capability calls.
func WithMeter(ctx context.Context, m *Meter) context.Context {
	if m == nil {
		return ctx
	}
	return context.WithValue(ctx, meterKey{}, m)
}

// MeterFrom extracts the operation meter from context if present.
func MeterFrom(ctx context.Context) (*Meter, bool) {
	m, ok := ctx.Value(meterKey{}).(*Meter)
	return m, ok
}
