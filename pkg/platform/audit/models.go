package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	id "warden/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so stores
// can apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal or regulatory significance:
	// blocks, KYC outcomes, AML reports. Long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers fraud and anonymizer signals that feed alerting.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers administrative changes and routine activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture a decision or a change. It is
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	// ID is assigned on emit and lets at-least-once sinks drop duplicates.
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	UserID    id.UserID
	// Subject is the entity acted on: a restriction ID, a verification ID or
	// an anonymized IP prefix.
	Subject   string
	Action    string
	Decision  string
	Reason    string
	RequestID string
	// ActorID is the operator or reviewer when different from UserID.
	ActorID  string
	Metadata map[string]string
}

type AuditEvent string

const (
	// Access decisions
	EventAccessBlocked        AuditEvent = "access_blocked"
	EventAccessVerifyRequired AuditEvent = "access_verify_required"
	EventAnonymizerDetected   AuditEvent = "anonymizer_detected"

	// Restriction administration
	EventRestrictionCreated     AuditEvent = "restriction_created"
	EventRestrictionDeactivated AuditEvent = "restriction_deactivated"
	EventRestrictionsSwept      AuditEvent = "restrictions_swept"

	// KYC lifecycle
	EventKYCInitiated    AuditEvent = "kyc_initiated"
	EventKYCApproved     AuditEvent = "kyc_approved"
	EventKYCRejected     AuditEvent = "kyc_rejected"
	EventKYCManualReview AuditEvent = "kyc_manual_review"
	EventKYCExpired      AuditEvent = "kyc_expired"

	// Compliance artifacts
	EventArtifactRecorded AuditEvent = "compliance_artifact_recorded"

	// Payments and fraud
	EventPaymentBlocked   AuditEvent = "payment_blocked"
	EventPaymentReview    AuditEvent = "payment_review"
	EventFraudFlagged     AuditEvent = "fraud_flagged"
	EventAccountFrozen    AuditEvent = "account_frozen"
	EventAMLReportQueued  AuditEvent = "aml_report_queued"
	EventAMLReportFiled   AuditEvent = "aml_report_filed"
	EventNotificationSent AuditEvent = "notification_sent"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAccessBlocked:        CategoryCompliance,
	EventAccessVerifyRequired: CategoryCompliance,
	EventKYCInitiated:         CategoryCompliance,
	EventKYCApproved:          CategoryCompliance,
	EventKYCRejected:          CategoryCompliance,
	EventKYCManualReview:      CategoryCompliance,
	EventKYCExpired:           CategoryCompliance,
	EventArtifactRecorded:     CategoryCompliance,
	EventPaymentBlocked:       CategoryCompliance,
	EventPaymentReview:        CategoryCompliance,
	EventAMLReportQueued:      CategoryCompliance,
	EventAMLReportFiled:       CategoryCompliance,

	EventAnonymizerDetected: CategorySecurity,
	EventFraudFlagged:       CategorySecurity,
	EventAccountFrozen:      CategorySecurity,

	EventRestrictionCreated:     CategoryOperations,
	EventRestrictionDeactivated: CategoryOperations,
	EventRestrictionsSwept:      CategoryOperations,
	EventNotificationSent:       CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Append must be idempotent on Event.ID because
// delivery is at-least-once.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}

// Sink is a write-only destination such as a message stream.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// DeadLetter is an event that exhausted its delivery attempts.
type DeadLetter struct {
	Event    Event
	Cause    string
	Attempts int
	FailedAt time.Time
}

// DeadLetterStore keeps undeliverable events for replay.
type DeadLetterStore interface {
	AppendDeadLetter(ctx context.Context, dl DeadLetter) error
	ListDeadLetters(ctx context.Context, limit int) ([]DeadLetter, error)
	DeleteDeadLetter(ctx context.Context, eventID uuid.UUID) error
}

// Emitter is the narrow view services hold of the publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// EmitLogged emits event and logs instead of failing when delivery cannot be
// arranged. A nil emitter is a no-op.
func EmitLogged(ctx context.Context, emitter Emitter, logger *slog.Logger, event Event) {
	if emitter == nil {
		return
	}
	if err := emitter.Emit(ctx, event); err != nil && logger != nil {
		logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"subject", event.Subject,
			"error", err,
		)
	}
}
