// Package audit defines the append-only event log. Every event references a
// ciphertext handle by its exported tag, never its plaintext meaning; the log
// records that something happened to a handle, not what the handle hides.
package audit

import (
	"time"

	id "duesgate/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require tamper-proof storage and long retention.
	// Examples: registrations, paid-through updates, forced resets.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	// Examples: ownership transfers, treasurer changes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for operational visibility.
	// These can be sampled or aggregated with shorter retention.
	// Examples: status checks, grace window changes.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Member    id.MemberID    // member the event concerns; zero for role/config events
	Actor     id.PrincipalID // caller that triggered the event
	Action    string
	Handle    string // exported handle tag (hex); empty for role/config events
	Visibility string // "private" or "public" for status checks
	Detail    string // free-form, e.g. old/new grace values
	RequestID string // correlation ID from request context
}

// AuditEvent names every action the log records.
type AuditEvent string

const (
	EventMemberRegistered     AuditEvent = "member_registered"
	EventMemberUpdated        AuditEvent = "member_updated"
	EventMemberReset          AuditEvent = "member_reset"
	EventStatusCheckedPrivate AuditEvent = "status_checked_private"
	EventStatusCheckedPublic  AuditEvent = "status_checked_public"
	EventGraceUpdated         AuditEvent = "grace_updated"
	EventTreasurerChanged     AuditEvent = "treasurer_changed"
	EventOwnershipTransferred AuditEvent = "ownership_transferred"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	// Compliance events - require tamper-proof storage
	EventMemberRegistered: CategoryCompliance,
	EventMemberUpdated:    CategoryCompliance,
	EventMemberReset:      CategoryCompliance,

	// Security events - feed into SIEM and alerting
	EventTreasurerChanged:     CategorySecurity,
	EventOwnershipTransferred: CategorySecurity,

	// Operations events - routine activity, can be sampled
	EventStatusCheckedPrivate: CategoryOperations,
	EventStatusCheckedPublic:  CategoryOperations,
	EventGraceUpdated:         CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
