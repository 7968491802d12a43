package access

import (
	"fmt"
	"slices"
	"strings"

	"warden/internal/compliance"
	"warden/internal/geo"
	"warden/internal/restriction"
)

// Action is the recommendation attached to every decision.
type Action string

const (
	ActionAllow  Action = "allow"
	ActionBlock  Action = "block"
	ActionWarn   Action = "warn"
	ActionVerify Action = "verify"
)

// Result is an access decision. Decisions are values: a block is not an error.
type Result struct {
	Allowed           bool                `json:"allowed"`
	Reason            string              `json:"reason,omitempty"`
	Country           string              `json:"country,omitempty"`
	Restrictions      []string            `json:"restrictions,omitempty"`
	VPNDetected       bool                `json:"vpn_detected,omitempty"`
	RecommendedAction Action              `json:"recommended_action"`
	RequiredActions   []compliance.Action `json:"required_actions,omitempty"`
	Degraded          bool                `json:"degraded,omitempty"`
}

// legallyBlocked lists comprehensively sanctioned jurisdictions.
var legallyBlocked = map[string]string{
	"CU": "Cuba",
	"IR": "Iran",
	"KP": "North Korea",
	"SY": "Syria",
}

// sanctionedRegions lists sub-national regions under sanctions, keyed by the
// country that geolocation reports them in. Names are compared case-insensitively.
var sanctionedRegions = map[string][]string{
	"UA": {"crimea", "sevastopol", "donetsk", "luhansk"},
}

// Inputs is everything a decision depends on. Evaluate is a pure function of it.
type Inputs struct {
	Type     restriction.Type
	Location geo.IPGeolocation
	// Rules are the applicable restrictions, global first.
	Rules []restriction.Restriction
	// RulesUnavailable is set when the registry could not be read.
	RulesUnavailable bool
	// Compliance is the user's compliance state in the resolved country, if known.
	Compliance *compliance.CheckResult
	// Category is the requested content category; ContentRestricted is set
	// when the resolved country's rules forbid it.
	Category          string
	ContentRestricted bool
}

// LegalBlock returns the reason a location is barred by law, if it is.
func LegalBlock(loc geo.IPGeolocation) (string, bool) {
	if !loc.Known() {
		return "", false
	}
	if name, ok := legallyBlocked[loc.CountryCode]; ok {
		return fmt.Sprintf("Access from %s is prohibited by sanctions law", name), true
	}
	region := strings.ToLower(loc.Region)
	for _, r := range sanctionedRegions[loc.CountryCode] {
		if region != "" && strings.Contains(region, r) {
			return fmt.Sprintf("Access from the %s region is prohibited by sanctions law", loc.Region), true
		}
	}
	return "", false
}

// Evaluate applies the access chain in strict precedence, first match wins:
// legal block, restriction rules, country content rules, anonymizer policy, threat level, allow.
// Degraded locations fail open for content and feature checks and fail to
// verify for payment and user_access checks.
func Evaluate(in Inputs) Result {
	loc := in.Location
	res := Result{Degraded: loc.Degraded}
	if loc.Known() {
		res.Country = loc.CountryCode
	}

	if reason, blocked := LegalBlock(loc); blocked {
		return block(res, reason)
	}

	if loc.Known() {
		if in.RulesUnavailable {
			if in.Type.HighStakes() {
				return verify(res, "Restriction rules could not be checked")
			}
		} else if rule, violated := restriction.FirstViolation(in.Rules, loc.CountryCode); violated {
			res.Restrictions = []string{rule.ID.String()}
			return block(res, rule.Reason)
		}
		if in.ContentRestricted {
			return block(res, fmt.Sprintf("Content category %s is restricted in %s", in.Category, loc.CountryCode))
		}
	}

	if loc.Degraded && in.Type.HighStakes() {
		return verify(res, "Location could not be verified")
	}

	if loc.Anonymized() {
		res.VPNDetected = true
		switch anonymizerPolicy(in.Type, loc.IsTor) {
		case ActionBlock:
			return block(res, "VPN, proxy and Tor connections are not permitted for payments")
		case ActionVerify:
			return verify(res, "Anonymized connection requires additional verification")
		}
	}

	if loc.ThreatLevel.AtLeast(geo.ThreatHigh) {
		return block(res, fmt.Sprintf("Connection threat level is %s", loc.ThreatLevel))
	}

	res.Allowed = true
	res.RecommendedAction = ActionAllow
	if c := in.Compliance; c != nil && !c.Compliant {
		res.RecommendedAction = ActionWarn
		res.Reason = "Outstanding compliance requirements"
		res.RequiredActions = slices.Clone(c.Actions)
	}
	return res
}

// anonymizerPolicy is the action for an anonymized connection. Tor is never
// treated more leniently than a VPN.
func anonymizerPolicy(t restriction.Type, tor bool) Action {
	switch t {
	case restriction.TypePayment:
		return ActionBlock
	case restriction.TypeContent, restriction.TypeUserAccess:
		return ActionVerify
	case restriction.TypeFeature:
		if tor {
			return ActionVerify
		}
	}
	return ActionAllow
}

func block(res Result, reason string) Result {
	res.Allowed = false
	res.Reason = reason
	res.RecommendedAction = ActionBlock
	return res
}

func verify(res Result, reason string) Result {
	res.Allowed = false
	res.Reason = reason
	res.RecommendedAction = ActionVerify
	return res
}
