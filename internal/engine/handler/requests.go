package handler

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"warden/internal/compliance"
	"warden/internal/kyc"
	"warden/internal/payment"
	"warden/internal/restriction"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
)

const (
	maxCountries   = 250
	maxDocuments   = 10
	maxMetadata    = 20
	maxFieldLength = 256
)

// AccessCheckRequest is the body of POST /access/check. IP defaults to the
// calling client's address.
type AccessCheckRequest struct {
	IP       string `json:"ip"`
	UserID   string `json:"user_id"`
	TargetID string `json:"target_id"`
	Type     string `json:"type"`
	Category string `json:"category"`

	parsedUserID id.UserID
	parsedType   restriction.Type
}

func (r *AccessCheckRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.TargetID) > maxFieldLength {
		return dErrors.New(dErrors.CodeValidation, "target_id is too long")
	}
	if len(r.Category) > maxFieldLength {
		return dErrors.New(dErrors.CodeValidation, "category is too long")
	}
	t, err := restriction.ParseType(strings.TrimSpace(r.Type))
	if err != nil {
		return err
	}
	r.parsedType = t
	r.IP = strings.TrimSpace(r.IP)
	r.TargetID = strings.TrimSpace(r.TargetID)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	if r.UserID = strings.TrimSpace(r.UserID); r.UserID != "" {
		userID, err := id.ParseUserID(r.UserID)
		if err != nil {
			return err
		}
		r.parsedUserID = userID
	}
	return nil
}

// CreateRestrictionRequest is the body of POST /restrictions.
type CreateRestrictionRequest struct {
	Type        string     `json:"type"`
	TargetID    string     `json:"target_id"`
	Countries   []string   `json:"countries"`
	IsWhitelist bool       `json:"is_whitelist"`
	Reason      string     `json:"reason"`
	ExpiresAt   *time.Time `json:"expires_at"`

	parsedType restriction.Type
}

func (r *CreateRestrictionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Countries) > maxCountries {
		return dErrors.New(dErrors.CodeValidation, "too many countries")
	}
	if len(r.Reason) > 4*maxFieldLength || len(r.TargetID) > maxFieldLength {
		return dErrors.New(dErrors.CodeValidation, "field too long")
	}
	t, err := restriction.ParseType(strings.TrimSpace(r.Type))
	if err != nil {
		return err
	}
	r.parsedType = t
	r.TargetID = strings.TrimSpace(r.TargetID)
	r.Reason = strings.TrimSpace(r.Reason)
	return nil
}

func (r *CreateRestrictionRequest) toDomain() restriction.CreateRequest {
	return restriction.CreateRequest{
		Type:        r.parsedType,
		TargetID:    r.TargetID,
		Countries:   r.Countries,
		IsWhitelist: r.IsWhitelist,
		Reason:      r.Reason,
		ExpiresAt:   r.ExpiresAt,
	}
}

// ComplianceCheckRequest is the body of POST /compliance/check.
type ComplianceCheckRequest struct {
	UserID      string `json:"user_id"`
	CountryCode string `json:"country_code"`

	parsedUserID id.UserID
}

func (r *ComplianceCheckRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	userID, err := id.ParseUserID(strings.TrimSpace(r.UserID))
	if err != nil {
		return err
	}
	r.parsedUserID = userID
	r.CountryCode = strings.ToUpper(strings.TrimSpace(r.CountryCode))
	if len(r.CountryCode) != 2 {
		return dErrors.New(dErrors.CodeValidation, "country_code must be an ISO 3166-1 alpha-2 code")
	}
	return nil
}

// RecordArtifactRequest is the body of POST /compliance/artifacts.
type RecordArtifactRequest struct {
	UserID string `json:"user_id"`
	Kind   string `json:"kind"`

	parsedUserID id.UserID
	parsedKind   compliance.ArtifactKind
}

func (r *RecordArtifactRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	userID, err := id.ParseUserID(strings.TrimSpace(r.UserID))
	if err != nil {
		return err
	}
	r.parsedUserID = userID
	r.parsedKind = compliance.ArtifactKind(strings.ToLower(strings.TrimSpace(r.Kind)))
	if !r.parsedKind.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "kind must be one of age_verification, consent")
	}
	return nil
}

// InitiateKYCRequest is the body of POST /kyc/verifications. Document rules
// are enforced by the workflow so refusals carry its messages.
type InitiateKYCRequest struct {
	UserID       string           `json:"user_id"`
	Type         string           `json:"type"`
	PersonalInfo kyc.PersonalInfo `json:"personal_info"`
	Documents    []DocumentInput  `json:"documents"`

	parsedUserID id.UserID
}

type DocumentInput struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func (r *InitiateKYCRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Documents) > maxDocuments {
		return dErrors.New(dErrors.CodeValidation, "too many documents")
	}
	userID, err := id.ParseUserID(strings.TrimSpace(r.UserID))
	if err != nil {
		return err
	}
	r.parsedUserID = userID
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	return nil
}

func (r *InitiateKYCRequest) toDomain() kyc.InitiateRequest {
	docs := make([]kyc.Document, 0, len(r.Documents))
	for _, d := range r.Documents {
		docs = append(docs, kyc.Document{
			Type: kyc.DocumentType(strings.ToLower(strings.TrimSpace(d.Type))),
			URL:  strings.TrimSpace(d.URL),
		})
	}
	return kyc.InitiateRequest{
		UserID:       r.parsedUserID,
		Type:         kyc.Type(r.Type),
		PersonalInfo: r.PersonalInfo,
		Documents:    docs,
	}
}

// ReviewKYCRequest is the body of POST /kyc/verifications/{id}/review.
type ReviewKYCRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

func (r *ReviewKYCRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if len(r.Reason) > 4*maxFieldLength {
		return dErrors.New(dErrors.CodeValidation, "reason is too long")
	}
	return nil
}

// PaymentCheckRequest is the body of POST /payments/check. Amount is in major
// currency units with at most two decimal places.
type PaymentCheckRequest struct {
	UserID   string            `json:"user_id"`
	Amount   decimal.Decimal   `json:"amount"`
	Type     string            `json:"type"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`

	parsedUserID id.UserID
	amountCents  int64
}

func (r *PaymentCheckRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Metadata) > maxMetadata {
		return dErrors.New(dErrors.CodeValidation, "too many metadata entries")
	}
	userID, err := id.ParseUserID(strings.TrimSpace(r.UserID))
	if err != nil {
		return err
	}
	r.parsedUserID = userID
	cents, err := toCents(r.Amount)
	if err != nil {
		return err
	}
	r.amountCents = cents
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	if !payment.Type(r.Type).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "type must be one of purchase, subscription, payout")
	}
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	return nil
}

func (r *PaymentCheckRequest) toDomain() payment.Request {
	return payment.Request{
		UserID:      r.parsedUserID,
		AmountCents: r.amountCents,
		Type:        payment.Type(r.Type),
		Currency:    r.Currency,
		Metadata:    r.Metadata,
	}
}

// FraudScoreRequest is the body of POST /fraud/score.
type FraudScoreRequest struct {
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	CountryCode string          `json:"country_code"`

	parsedUserID id.UserID
	amountCents  int64
}

func (r *FraudScoreRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	userID, err := id.ParseUserID(strings.TrimSpace(r.UserID))
	if err != nil {
		return err
	}
	r.parsedUserID = userID
	cents, err := toCents(r.Amount)
	if err != nil {
		return err
	}
	r.amountCents = cents
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	r.CountryCode = strings.ToUpper(strings.TrimSpace(r.CountryCode))
	return nil
}

func toCents(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	if !amount.Equal(amount.Truncate(2)) {
		return 0, dErrors.New(dErrors.CodeValidation, "amount must have at most two decimal places")
	}
	cents := amount.Shift(2)
	if !cents.LessThan(decimal.NewFromInt(1 << 53)) {
		return 0, dErrors.New(dErrors.CodeValidation, "amount is too large")
	}
	return cents.IntPart(), nil
}
