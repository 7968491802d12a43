package payment

import (
	"github.com/google/uuid"

	"warden/internal/fraud"
	"warden/internal/kyc"
	id "warden/pkg/domain"
)

// Type is the kind of money movement being gated.
type Type string

const (
	TypePurchase     Type = "purchase"
	TypeSubscription Type = "subscription"
	TypePayout       Type = "payout"
)

func (t Type) IsValid() bool {
	return t == TypePurchase || t == TypeSubscription || t == TypePayout
}

// Status is the gate's verdict.
type Status string

const (
	StatusApproved Status = "approved"
	StatusBlocked  Status = "blocked"
	StatusReview   Status = "review"
)

// Metadata keys understood by the gate.
const (
	MetaCountry           = "country"
	MetaDeviceFingerprint = "device_fingerprint"
	MetaUserAgent         = "user_agent"
	MetaPaymentMethod     = "payment_method"
)

// tier is one rung of the verification ladder: amounts at or above MinCents
// need at least Level.
type tier struct {
	Level    kyc.Level
	MinCents int64
}

// All amounts are in cents.
var (
	purchaseLadder = []tier{
		{Level: kyc.LevelBasic, MinCents: 50_000},
		{Level: kyc.LevelEnhanced, MinCents: 300_000},
		{Level: kyc.LevelBusiness, MinCents: 1_000_000},
	}
	payoutLadder = []tier{
		{Level: kyc.LevelBasic, MinCents: 50_000},
		{Level: kyc.LevelEnhanced, MinCents: 100_000},
		{Level: kyc.LevelBusiness, MinCents: 1_000_000},
	}
)

func ladderFor(t Type) []tier {
	if t == TypePayout {
		return payoutLadder
	}
	return purchaseLadder
}

// Requirement checks amountCents against the ladder for t. When the user's
// level falls short it returns the first unmet level and the largest amount,
// in cents, the current level allows. Business level has no cap.
func Requirement(t Type, amountCents int64, level kyc.Level) (required kyc.Level, maxAllowedCents int64, met bool) {
	ladder := ladderFor(t)
	for _, rung := range ladder {
		if amountCents >= rung.MinCents && !level.Satisfies(rung.Level) {
			return rung.Level, MaxAllowedCents(t, level), false
		}
	}
	return "", 0, true
}

// MaxAllowedCents is the largest amount a user at level may move for t, or 0
// when the level is uncapped.
func MaxAllowedCents(t Type, level kyc.Level) int64 {
	for _, rung := range ladderFor(t) {
		if !level.Satisfies(rung.Level) {
			return rung.MinCents - 1
		}
	}
	return 0
}

// Request is one payment to gate.
type Request struct {
	UserID      id.UserID
	AmountCents int64
	Type        Type
	Currency    string
	Metadata    map[string]string
}

// Decision is the gate's structured verdict. A blocked decision for an
// insufficient level carries VerificationRequired and MaxAllowedCents so the
// caller can prompt an upgrade.
type Decision struct {
	ID                   uuid.UUID     `json:"id"`
	Status               Status        `json:"status"`
	Approved             bool          `json:"approved"`
	Reason               string        `json:"reason,omitempty"`
	CurrentLevel         kyc.Level     `json:"current_level,omitempty"`
	VerificationRequired kyc.Level     `json:"verification_required,omitempty"`
	MaxAllowedCents      int64         `json:"max_allowed_cents,omitempty"`
	Fraud                *fraud.Result `json:"fraud,omitempty"`
	AMLReportRequired    bool          `json:"aml_report_required"`
	AMLReportQueued      bool          `json:"aml_report_queued"`
	Processor            string        `json:"processor,omitempty"`
	Degraded             bool          `json:"degraded,omitempty"`
}

// inputs is everything decide needs; failures of either check are carried
// as flags rather than errors.
type inputs struct {
	Type        Type
	AmountCents int64
	Level       kyc.Level
	LevelFailed bool
	Fraud       *fraud.Result
	FraudFailed bool
	// RestrictedMethod is set when the payer's country forbids the payment
	// method.
	RestrictedMethod string
	Country          string
	PolicyFailed     bool
}

// decide combines the verification ladder and the fraud verdict. Fraud reject
// or freeze blocks regardless of level; an insufficient level blocks; a
// failed check or a fraud review routes to review.
func decide(in inputs) Decision {
	d := Decision{
		Fraud:             in.Fraud,
		AMLReportRequired: in.AmountCents >= fraud.AMLReportingThresholdCents,
		Degraded:          in.LevelFailed || in.FraudFailed || in.PolicyFailed,
	}
	if !in.LevelFailed {
		d.CurrentLevel = in.Level
		if required, maxAllowed, met := Requirement(in.Type, in.AmountCents, in.Level); !met {
			d.VerificationRequired = required
			d.MaxAllowedCents = maxAllowed
		}
	}

	switch {
	case in.Fraud != nil && in.Fraud.RecommendedAction == fraud.RecommendFreeze:
		d.Status = StatusBlocked
		d.Reason = "Account frozen pending fraud investigation"
	case in.Fraud != nil && in.Fraud.RecommendedAction == fraud.RecommendReject:
		d.Status = StatusBlocked
		d.Reason = "Transaction rejected by fraud screening"
	case in.RestrictedMethod != "":
		d.Status = StatusBlocked
		d.Reason = "Payment method " + in.RestrictedMethod + " is not permitted in " + in.Country
	case d.VerificationRequired != "":
		d.Status = StatusBlocked
		d.Reason = "Verification level " + string(d.VerificationRequired) + " required for this amount"
	case d.Degraded:
		d.Status = StatusReview
		d.Reason = "Risk checks unavailable; queued for manual review"
	case in.Fraud != nil && in.Fraud.RecommendedAction == fraud.RecommendReview:
		d.Status = StatusReview
		d.Reason = "Transaction flagged for manual review"
	default:
		d.Status = StatusApproved
	}
	d.Approved = d.Status == StatusApproved
	return d
}
