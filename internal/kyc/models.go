package kyc

import (
	"time"

	id "warden/pkg/domain"
)

// ValidityPeriod is how long a request may stay unresolved before it expires.
const ValidityPeriod = 30 * 24 * time.Hour

// Type is the verification tier being applied for.
type Type string

const (
	TypeBasic    Type = "basic"
	TypeEnhanced Type = "enhanced"
	TypeBusiness Type = "business"
)

func (t Type) IsValid() bool {
	return t == TypeBasic || t == TypeEnhanced || t == TypeBusiness
}

// Level is the verification tier a user holds. Levels are ordered.
type Level string

const (
	LevelNone     Level = "none"
	LevelBasic    Level = "basic"
	LevelEnhanced Level = "enhanced"
	LevelBusiness Level = "business"
)

var levelRank = map[Level]int{
	LevelNone:     0,
	LevelBasic:    1,
	LevelEnhanced: 2,
	LevelBusiness: 3,
}

// Satisfies reports whether l meets or exceeds required.
func (l Level) Satisfies(required Level) bool {
	return levelRank[l] >= levelRank[required]
}

// LevelFor is the level granted by an approved request of type t.
func LevelFor(t Type) Level {
	return Level(t)
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusExpired    Status = "expired"
)

// Active reports whether a request in this status still counts against the
// one-active-request-per-user limit.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusProcessing
}

type DocumentType string

const (
	DocPassport             DocumentType = "passport"
	DocNationalID           DocumentType = "national_id"
	DocDriversLicense       DocumentType = "drivers_license"
	DocUtilityBill          DocumentType = "utility_bill"
	DocBankStatement        DocumentType = "bank_statement"
	DocSelfie               DocumentType = "selfie"
	DocBusinessRegistration DocumentType = "business_registration"
)

func (d DocumentType) IsValid() bool {
	switch d {
	case DocPassport, DocNationalID, DocDriversLicense, DocUtilityBill,
		DocBankStatement, DocSelfie, DocBusinessRegistration:
		return true
	}
	return false
}

// GovernmentID reports whether the document is a government-issued identity document.
func (d DocumentType) GovernmentID() bool {
	return d == DocPassport || d == DocNationalID || d == DocDriversLicense
}

type Document struct {
	Type       DocumentType `json:"type"`
	URL        string       `json:"url"`
	UploadedAt time.Time    `json:"uploaded_at"`
	Verified   bool         `json:"verified"`
}

type PersonalInfo struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Nationality string `json:"nationality"`
	Address     string `json:"address,omitempty"`
	Email       string `json:"email,omitempty"`
	NationalID  string `json:"national_id,omitempty"`
}

// AMLRisk is the screening outcome. Each level carries a fixed score
// contribution.
type AMLRisk string

const (
	AMLLow      AMLRisk = "low"
	AMLMedium   AMLRisk = "medium"
	AMLHigh     AMLRisk = "high"
	AMLCritical AMLRisk = "critical"
)

func (r AMLRisk) IsValid() bool {
	return r == AMLLow || r == AMLMedium || r == AMLHigh || r == AMLCritical
}

type AMLChecks struct {
	SanctionsList bool    `json:"sanctions_list"`
	PEPCheck      bool    `json:"pep_check"`
	AdverseMedia  bool    `json:"adverse_media"`
	Completed     bool    `json:"completed"`
	RiskLevel     AMLRisk `json:"risk_level,omitempty"`
}

// Verification is one KYC request and its lifecycle.
type Verification struct {
	ID                id.VerificationID `json:"id"`
	UserID            id.UserID         `json:"user_id"`
	Type              Type              `json:"type"`
	Status            Status            `json:"status"`
	Documents         []Document        `json:"documents"`
	PersonalInfo      PersonalInfo      `json:"personal_info"`
	VerificationLevel Level             `json:"verification_level"`
	RiskScore         int               `json:"risk_score"`
	AMLChecks         AMLChecks         `json:"aml_checks"`
	SubmittedAt       time.Time         `json:"submitted_at"`
	ReviewedAt        *time.Time        `json:"reviewed_at,omitempty"`
	ReviewedBy        string            `json:"reviewed_by,omitempty"`
	RejectionReason   string            `json:"rejection_reason,omitempty"`
	ExpiresAt         time.Time         `json:"expires_at"`
}

// ExpiredAt reports whether an unresolved request has outlived its window.
func (v *Verification) ExpiredAt(now time.Time) bool {
	return v.Status.Active() && !now.Before(v.ExpiresAt)
}

// AwaitingReview reports whether scoring routed the request to a reviewer.
func (v *Verification) AwaitingReview() bool {
	return v.Status == StatusProcessing && v.ReviewedAt != nil
}

// LevelGrant records the tier a user holds and the request that earned it.
type LevelGrant struct {
	UserID         id.UserID         `json:"user_id"`
	Level          Level             `json:"level"`
	VerificationID id.VerificationID `json:"verification_id"`
	GrantedAt      time.Time         `json:"granted_at"`
}
