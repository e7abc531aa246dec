// Package status derives the encrypted good-standing boolean: whether a
// member's encrypted paid-through timestamp plus the public grace window
// reaches the current time. The comparison happens entirely in the encrypted
// domain; only the grace arithmetic is plain, because grace is public.
package status

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"duesgate/internal/fhe"
	"duesgate/internal/member"
	id "duesgate/pkg/domain"
)

// SecondsPerDay converts the public grace window to epoch seconds.
const SecondsPerDay uint32 = 86400

// Evaluator combines a member's stored ciphertext, the grace window, and the
// current time into a fresh encrypted boolean. It never mutates the cell, but
// every call produces a new handle.
//
// All values are unsigned 32-bit epoch seconds. paidThrough + graceSeconds
// wraps beyond the 32-bit range per the underlying encrypted integer width;
// this is a known limitation, not special-cased.
type Evaluator struct {
	cells      *member.Cells
	capability fhe.Capability
	tracer     trace.Tracer
}

func NewEvaluator(cells *member.Cells, capability fhe.Capability) *Evaluator {
	return &Evaluator{
		cells:      cells,
		capability: capability,
		tracer:     otel.Tracer("duesgate/status"),
	}
}

// Evaluate returns an encrypted boolean handle over
// paidThrough + graceDays*86400 >= nowSeconds. Equality counts as good
// standing (inclusive comparison).
//
// Errors: CodeNotRegistered when the member has no cell;
// CodeResourceExhausted or CodePermissionMissing from the capability.
func (e *Evaluator) Evaluate(ctx context.Context, memberID id.MemberID, nowSeconds, graceDays uint32) (fhe.Handle, error) {
	ctx, span := e.tracer.Start(ctx, "status.Evaluate")
	defer span.End()

	record, err := e.cells.Get(ctx, memberID)
	if err != nil {
		return fhe.Handle{}, err
	}

	// Grace is public, so this multiply stays outside the encrypted domain.
	graceSeconds := graceDays * SecondsPerDay

	encGrace, err := e.capability.Lift(ctx, graceSeconds)
	if err != nil {
		return fhe.Handle{}, fhe.Translate(err)
	}
	encNow, err := e.capability.Lift(ctx, nowSeconds)
	if err != nil {
		return fhe.Handle{}, fhe.Translate(err)
	}

	paidPlus, err := e.capability.Add(ctx, record.Handle, encGrace)
	if err != nil {
		return fhe.Handle{}, fhe.Translate(err)
	}
	result, err := e.capability.Ge(ctx, paidPlus, encNow)
	if err != nil {
		return fhe.Handle{}, fhe.Translate(err)
	}
	return result, nil
}
