package compliance

import (
	"fmt"
	"slices"
	"time"

	id "warden/pkg/domain"
	platformstrings "warden/pkg/platform/strings"
)

// Rule is the legal profile of one country.
type Rule struct {
	Country             string   `json:"country"`
	MinAge              int      `json:"min_age"`
	ContentRestrictions []string `json:"content_restrictions"`
	PaymentRestrictions []string `json:"payment_restrictions"`
	DataRetentionDays   int      `json:"data_retention_days"`
	RightToForget       bool     `json:"right_to_forget"`
	ConsentRequired     bool     `json:"consent_required"`
}

// RestrictsContent reports whether category is restricted in the rule's country.
func (r *Rule) RestrictsContent(category string) bool {
	return containsCategory(r.ContentRestrictions, category)
}

// RestrictsPayment reports whether the payment method is restricted in the rule's country.
func (r *Rule) RestrictsPayment(method string) bool {
	return containsCategory(r.PaymentRestrictions, method)
}

func containsCategory(list []string, category string) bool {
	normalized := platformstrings.DedupeAndTrimLower([]string{category})
	return len(normalized) == 1 && slices.Contains(list, normalized[0])
}

// ArtifactKind names evidence a user has supplied toward a country's rules.
type ArtifactKind string

const (
	ArtifactAgeVerification ArtifactKind = "age_verification"
	ArtifactConsent         ArtifactKind = "consent"
)

func (k ArtifactKind) IsValid() bool {
	return k == ArtifactAgeVerification || k == ArtifactConsent
}

// Artifact records when a user supplied a piece of evidence.
type Artifact struct {
	UserID     id.UserID    `json:"user_id"`
	Kind       ArtifactKind `json:"kind"`
	RecordedAt time.Time    `json:"recorded_at"`
}

// Action is something the user must do before they are compliant.
type Action string

const (
	ActionAgeVerification Action = "age_verification"
	ActionConsentForm     Action = "consent_form"
)

// CheckResult is the outcome of CheckCompliance. Missing evidence is reported
// as Actions rather than as an error.
type CheckResult struct {
	Compliant    bool     `json:"compliant"`
	Country      string   `json:"country"`
	Requirements []string `json:"requirements"`
	Actions      []Action `json:"actions"`
}

// Evaluate checks rule against the artifacts a user holds. A nil rule means
// the country imposes nothing.
func Evaluate(rule *Rule, countryCode string, held []ArtifactKind) CheckResult {
	res := CheckResult{
		Compliant:    true,
		Country:      countryCode,
		Requirements: []string{},
		Actions:      []Action{},
	}
	if rule == nil {
		return res
	}
	if rule.MinAge > 0 {
		res.Requirements = append(res.Requirements, fmt.Sprintf("minimum age %d", rule.MinAge))
		if !slices.Contains(held, ArtifactAgeVerification) {
			res.Actions = append(res.Actions, ActionAgeVerification)
		}
	}
	if rule.ConsentRequired {
		res.Requirements = append(res.Requirements, "explicit consent for data processing")
		if !slices.Contains(held, ArtifactConsent) {
			res.Actions = append(res.Actions, ActionConsentForm)
		}
	}
	res.Compliant = len(res.Actions) == 0
	return res
}

// DefaultRules is the built-in rule table used when no database is
// configured. It matches the rows seeded by migration 00004.
func DefaultRules() []Rule {
	return []Rule{
		{Country: "US", MinAge: 18, ContentRestrictions: []string{"gambling"}, PaymentRestrictions: []string{}, DataRetentionDays: 2555},
		{Country: "GB", MinAge: 18, ContentRestrictions: []string{"gambling"}, PaymentRestrictions: []string{}, DataRetentionDays: 2190, RightToForget: true, ConsentRequired: true},
		{Country: "DE", MinAge: 18, ContentRestrictions: []string{"violent_content"}, PaymentRestrictions: []string{"crypto"}, DataRetentionDays: 1095, RightToForget: true, ConsentRequired: true},
		{Country: "FR", MinAge: 18, ContentRestrictions: []string{"gambling"}, PaymentRestrictions: []string{}, DataRetentionDays: 1095, RightToForget: true, ConsentRequired: true},
		{Country: "IN", MinAge: 18, ContentRestrictions: []string{"gambling"}, PaymentRestrictions: []string{"crypto"}, DataRetentionDays: 1825, ConsentRequired: true},
		{Country: "CN", MinAge: 18, ContentRestrictions: []string{"gambling", "political"}, PaymentRestrictions: []string{"crypto"}, DataRetentionDays: 1095, ConsentRequired: true},
		{Country: "JP", MinAge: 20, ContentRestrictions: []string{}, PaymentRestrictions: []string{}, DataRetentionDays: 1825},
	}
}
