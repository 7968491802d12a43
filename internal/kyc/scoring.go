package kyc

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	approveThreshold = 85
	rejectThreshold  = 60
)

var (
	documentWeight = decimal.RequireFromString("0.40")
	identityWeight = decimal.RequireFromString("0.35")
	hundred        = decimal.NewFromInt(100)
)

var amlContribution = map[AMLRisk]int64{
	AMLLow:      25,
	AMLMedium:   15,
	AMLHigh:     5,
	AMLCritical: 0,
}

// Outcome is the automated decision on a scored request.
type Outcome string

const (
	OutcomeApprove Outcome = "approve"
	OutcomeReject  Outcome = "reject"
	OutcomeReview  Outcome = "review"
)

// Score combines document and identity confidences in [0,1] with the AML
// contribution into a 0-100 score:
//
//	round(0.40*doc*100 + 0.35*identity*100 + aml)
//
// with aml = 25/15/5/0 for low/medium/high/critical. Arithmetic is decimal;
// exact halves such as 94.5 round away from zero.
func Score(documentConfidence, identityConfidence float64, aml AMLRisk) int {
	doc := decimal.NewFromFloat(clamp01(documentConfidence))
	identity := decimal.NewFromFloat(clamp01(identityConfidence))
	raw := documentWeight.Mul(doc).Mul(hundred).
		Add(identityWeight.Mul(identity).Mul(hundred)).
		Add(decimal.NewFromInt(amlContribution[aml]))
	return int(raw.Round(0).IntPart())
}

// Decide maps a score and AML risk to an outcome. Critical AML risk always
// rejects; approval additionally requires low AML risk.
func Decide(score int, aml AMLRisk) Outcome {
	switch {
	case score < rejectThreshold || aml == AMLCritical:
		return OutcomeReject
	case score >= approveThreshold && aml == AMLLow:
		return OutcomeApprove
	default:
		return OutcomeReview
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
