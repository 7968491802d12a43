package restriction

import (
	"slices"
	"time"

	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	platformstrings "warden/pkg/platform/strings"
)

// Type is the kind of access a restriction governs.
type Type string

const (
	TypeContent    Type = "content"
	TypeFeature    Type = "feature"
	TypeUserAccess Type = "user_access"
	TypePayment    Type = "payment"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeContent, TypeFeature, TypeUserAccess, TypePayment:
		return true
	}
	return false
}

// HighStakes reports whether failures on this path must close rather than open.
func (t Type) HighStakes() bool {
	return t == TypePayment || t == TypeUserAccess
}

func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "type must be one of content, feature, user_access, payment")
	}
	return t, nil
}

// Restriction is a geographic rule. Exactly one of BlockedCountries and
// AllowedCountries is populated, matching IsWhitelist. Rules are never hard
// deleted: they end through IsActive=false or ExpiresAt.
type Restriction struct {
	ID               id.RestrictionID `json:"id"`
	Type             Type             `json:"type"`
	TargetID         string           `json:"target_id,omitempty"`
	BlockedCountries []string         `json:"blocked_countries"`
	AllowedCountries []string         `json:"allowed_countries"`
	IsWhitelist      bool             `json:"is_whitelist"`
	Reason           string           `json:"reason"`
	CreatedBy        string           `json:"created_by"`
	CreatedAt        time.Time        `json:"created_at"`
	ExpiresAt        *time.Time       `json:"expires_at,omitempty"`
	IsActive         bool             `json:"is_active"`
}

// CreateRequest carries the caller-supplied fields of a new restriction.
type CreateRequest struct {
	Type        Type
	TargetID    string
	Countries   []string
	IsWhitelist bool
	Reason      string
	CreatedBy   string
	ExpiresAt   *time.Time
}

// New validates req and builds an active restriction stamped at now.
func New(req CreateRequest, now time.Time) (*Restriction, error) {
	if !req.Type.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "type must be one of content, feature, user_access, payment")
	}
	countries := platformstrings.NormalizeCountryCodes(req.Countries)
	if len(countries) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one country code is required")
	}
	for _, c := range countries {
		if !validCountryCode(c) {
			return nil, dErrors.New(dErrors.CodeValidation, "country codes must be ISO 3166-1 alpha-2: "+c)
		}
	}
	if req.Reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if req.CreatedBy == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "created_by is required")
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "expires_at must be in the future")
	}

	r := &Restriction{
		ID:               id.NewRestrictionID(),
		Type:             req.Type,
		TargetID:         req.TargetID,
		BlockedCountries: []string{},
		AllowedCountries: []string{},
		IsWhitelist:      req.IsWhitelist,
		Reason:           req.Reason,
		CreatedBy:        req.CreatedBy,
		CreatedAt:        now,
		ExpiresAt:        req.ExpiresAt,
		IsActive:         true,
	}
	if req.IsWhitelist {
		r.AllowedCountries = countries
	} else {
		r.BlockedCountries = countries
	}
	return r, nil
}

// Validate checks the one-list invariant on a restriction from any source.
func (r *Restriction) Validate() error {
	blocked, allowed := len(r.BlockedCountries) > 0, len(r.AllowedCountries) > 0
	if blocked == allowed {
		return dErrors.New(dErrors.CodeInvariantViolation, "exactly one of blocked_countries and allowed_countries must be populated")
	}
	if r.IsWhitelist != allowed {
		return dErrors.New(dErrors.CodeInvariantViolation, "is_whitelist does not match the populated country list")
	}
	return nil
}

// Global reports whether the rule applies to every target of its type.
func (r *Restriction) Global() bool {
	return r.TargetID == ""
}

// EffectiveAt reports whether the rule is active and unexpired at now.
func (r *Restriction) EffectiveAt(now time.Time) bool {
	return r.IsActive && (r.ExpiresAt == nil || now.Before(*r.ExpiresAt))
}

// Evaluate reports whether countryCode passes r. A whitelist admits only its
// listed countries; a blacklist admits everything it does not list.
func Evaluate(r *Restriction, countryCode string) bool {
	code := platformstrings.NormalizeCountryCode(countryCode)
	if r.IsWhitelist {
		return slices.Contains(r.AllowedCountries, code)
	}
	return !slices.Contains(r.BlockedCountries, code)
}

func validCountryCode(c string) bool {
	if len(c) != 2 {
		return false
	}
	for _, ch := range c {
		if ch < 'A' || ch > 'Z' {
			return false
		}
	}
	return true
}
