package fraud

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	id "warden/pkg/domain"
)

// AMLReportingThresholdCents is the single-transaction amount at or above
// which an AML report is filed. Structuring detection keys off it.
const AMLReportingThresholdCents int64 = 1_000_000

const (
	historyWindow     = 30 * 24 * time.Hour
	velocityWindow    = 24 * time.Hour
	structuringWindow = 7 * 24 * time.Hour

	velocityLimit    = 10
	structuringLimit = 2
	maxScore         = 100
	maxConfidence    = 0.95

	rejectAbove = 80
	reviewAbove = 50
	flagAbove   = 25
)

var (
	deviationLimit    = decimal.NewFromInt(5)
	structuringFactor = decimal.RequireFromString("0.90")
)

type Flag string

const (
	FlagHighVelocity         Flag = "high_velocity"
	FlagUnusualAmount        Flag = "unusual_amount"
	FlagGeographicAnomaly    Flag = "geographic_anomaly"
	FlagDeviceAnomaly        Flag = "device_anomaly"
	FlagPotentialStructuring Flag = "potential_structuring"
)

var flagWeights = map[Flag]int{
	FlagHighVelocity:         30,
	FlagUnusualAmount:        20,
	FlagGeographicAnomaly:    25,
	FlagDeviceAnomaly:        15,
	FlagPotentialStructuring: 40,
}

// Weight is the score a flag contributes.
func (f Flag) Weight() int {
	return flagWeights[f]
}

type Recommendation string

const (
	RecommendApprove Recommendation = "approve"
	RecommendReview  Recommendation = "review"
	RecommendReject  Recommendation = "reject"
	RecommendFreeze  Recommendation = "freeze"
)

// Blocks reports whether the recommendation stops a transaction outright.
func (r Recommendation) Blocks() bool {
	return r == RecommendReject || r == RecommendFreeze
}

// Transaction is one entry in a user's payment history.
type Transaction struct {
	ID                uuid.UUID `json:"id"`
	UserID            id.UserID `json:"user_id"`
	AmountCents       int64     `json:"amount_cents"`
	Type              string    `json:"type"`
	CountryCode       string    `json:"country_code,omitempty"`
	DeviceFingerprint string    `json:"device_fingerprint,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// ScoreRequest describes the transaction being scored. CountryCode,
// DeviceFingerprint and UserAgent are optional context for the anomaly
// detectors.
type ScoreRequest struct {
	UserID            id.UserID
	AmountCents       int64
	Type              string
	CountryCode       string
	DeviceFingerprint string
	UserAgent         string
}

// Result is the scorer's verdict. RiskScore is capped at 100; RawScore is the
// uncapped sum kept for diagnostics.
type Result struct {
	IsSuspicious      bool           `json:"is_suspicious"`
	RiskScore         int            `json:"risk_score"`
	RawScore          int            `json:"raw_score"`
	Flags             []Flag         `json:"flags"`
	RecommendedAction Recommendation `json:"recommended_action"`
	Reasons           []string       `json:"reasons"`
	Confidence        float64        `json:"confidence"`
}

// Has reports whether flag fired.
func (r Result) Has(flag Flag) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Signals are the collaborator-backed anomaly verdicts for one request.
type Signals struct {
	GeographicAnomaly bool
	DeviceAnomaly     bool
}

// Evaluate scores req against history, which must hold the user's
// transactions from the trailing 30 days. It is pure.
func Evaluate(req ScoreRequest, history []Transaction, sig Signals, now time.Time) Result {
	res := Result{Flags: []Flag{}, Reasons: []string{}}
	add := func(f Flag, reason string) {
		res.Flags = append(res.Flags, f)
		res.Reasons = append(res.Reasons, reason)
		res.RawScore += f.Weight()
	}

	var (
		recent      int
		structured  int
		total       = decimal.Zero
		counted     int
		structFloor = decimal.NewFromInt(AMLReportingThresholdCents).Mul(structuringFactor)
	)
	for _, tx := range history {
		age := now.Sub(tx.OccurredAt)
		if age < 0 || age > historyWindow {
			continue
		}
		counted++
		total = total.Add(decimal.NewFromInt(tx.AmountCents))
		if age <= velocityWindow {
			recent++
		}
		if age <= structuringWindow && decimal.NewFromInt(tx.AmountCents).GreaterThanOrEqual(structFloor) {
			structured++
		}
	}

	if recent > velocityLimit {
		add(FlagHighVelocity, "More than 10 transactions in the last 24 hours")
	}
	if counted > 0 {
		avg := total.Div(decimal.NewFromInt(int64(counted)))
		if avg.IsPositive() {
			deviation := decimal.NewFromInt(req.AmountCents).Sub(avg).Abs().Div(avg)
			if deviation.GreaterThan(deviationLimit) {
				add(FlagUnusualAmount, "Amount deviates sharply from the 30-day average")
			}
		}
	}
	if sig.GeographicAnomaly {
		add(FlagGeographicAnomaly, "Transaction originates from an unusual location")
	}
	if sig.DeviceAnomaly {
		add(FlagDeviceAnomaly, "Transaction originates from an unrecognized device")
	}
	if structured > structuringLimit {
		add(FlagPotentialStructuring, "Repeated transactions just below the reporting threshold")
	}

	res.RiskScore = min(res.RawScore, maxScore)
	res.Confidence = min(float64(res.RiskScore)/100, maxConfidence)
	res.IsSuspicious = res.RiskScore > flagAbove

	switch {
	case res.RiskScore >= maxScore && res.Has(FlagPotentialStructuring) && res.Has(FlagHighVelocity):
		res.RecommendedAction = RecommendFreeze
	case res.RiskScore > rejectAbove:
		res.RecommendedAction = RecommendReject
	case res.RiskScore > reviewAbove:
		res.RecommendedAction = RecommendReview
	default:
		res.RecommendedAction = RecommendApprove
	}
	return res
}
