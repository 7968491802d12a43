package fraud

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"warden/internal/fraud/metrics"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/audit"
	"warden/pkg/requestcontext"
)

// HistoryStore holds users' payment history.
type HistoryStore interface {
	// Recent returns the user's transactions at or after since, newest first.
	Recent(ctx context.Context, userID id.UserID, since time.Time) ([]Transaction, error)
	Record(ctx context.Context, tx Transaction) error
}

// GeoDetector decides whether a request's location is anomalous for the user.
type GeoDetector interface {
	GeographicAnomaly(ctx context.Context, req ScoreRequest, history []Transaction) (bool, error)
}

// DeviceDetector decides whether a request's device is anomalous for the user.
type DeviceDetector interface {
	DeviceAnomaly(ctx context.Context, req ScoreRequest, history []Transaction) (bool, error)
}

// Scorer computes FraudDetectionResults from a user's trailing history and
// the anomaly detectors. Detector failures drop that signal; a history
// failure is returned so payment callers can fail closed.
type Scorer struct {
	history HistoryStore
	geo     GeoDetector
	device  DeviceDetector
	auditor audit.Emitter
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Scorer)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scorer) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		s.now = now
	}
}

func WithAuditor(a audit.Emitter) Option {
	return func(s *Scorer) {
		s.auditor = a
	}
}

// WithGeoDetector replaces the default country-history detector.
func WithGeoDetector(d GeoDetector) Option {
	return func(s *Scorer) {
		s.geo = d
	}
}

func WithDeviceDetector(d DeviceDetector) Option {
	return func(s *Scorer) {
		s.device = d
	}
}

func NewScorer(history HistoryStore, opts ...Option) (*Scorer, error) {
	if history == nil {
		return nil, errors.New("transaction history store is required")
	}
	s := &Scorer{
		history: history,
		geo:     CountryHistory{},
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Score evaluates req. Errors are limited to validation and an unavailable
// history store.
func (s *Scorer) Score(ctx context.Context, req ScoreRequest) (Result, error) {
	if req.UserID.IsNil() {
		return Result{}, dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if req.AmountCents <= 0 {
		return Result{}, dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	req.CountryCode = strings.ToUpper(strings.TrimSpace(req.CountryCode))

	now := s.now()
	history, err := s.history.Recent(ctx, req.UserID, now.Add(-historyWindow))
	if err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "transaction history unavailable")
	}

	var sig Signals
	if s.geo != nil {
		sig.GeographicAnomaly = s.detect(ctx, "geo", func() (bool, error) {
			return s.geo.GeographicAnomaly(ctx, req, history)
		})
	}
	if s.device != nil {
		sig.DeviceAnomaly = s.detect(ctx, "device", func() (bool, error) {
			return s.device.DeviceAnomaly(ctx, req, history)
		})
	}

	res := Evaluate(req, history, sig, now)
	s.metrics.ObserveScore(res.RiskScore, string(res.RecommendedAction))
	for _, f := range res.Flags {
		s.metrics.IncFlag(string(f))
	}

	if res.IsSuspicious {
		s.logger.WarnContext(ctx, "transaction flagged",
			"user_id", req.UserID,
			"risk_score", res.RiskScore,
			"raw_score", res.RawScore,
			"flags", res.Flags,
			"recommended_action", res.RecommendedAction,
		)
		audit.EmitLogged(ctx, s.auditor, s.logger, audit.Event{
			Action:    string(audit.EventFraudFlagged),
			UserID:    req.UserID,
			Subject:   req.UserID.String(),
			Decision:  string(res.RecommendedAction),
			Reason:    strings.Join(res.Reasons, "; "),
			RequestID: requestcontext.RequestID(ctx),
			Metadata: map[string]string{
				"risk_score": strconv.Itoa(res.RiskScore),
				"raw_score":  strconv.Itoa(res.RawScore),
				"type":       req.Type,
			},
		})
	}
	return res, nil
}

// RecordTransaction appends a completed transaction to the user's history.
func (s *Scorer) RecordTransaction(ctx context.Context, tx Transaction) error {
	if tx.UserID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if tx.AmountCents <= 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.OccurredAt.IsZero() {
		tx.OccurredAt = s.now()
	}
	tx.CountryCode = strings.ToUpper(strings.TrimSpace(tx.CountryCode))
	if err := s.history.Record(ctx, tx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record transaction")
	}
	return nil
}

func (s *Scorer) detect(ctx context.Context, name string, fn func() (bool, error)) bool {
	hit, err := fn()
	if err != nil {
		s.logger.WarnContext(ctx, "anomaly detector failed", "detector", name, "error", err)
		s.metrics.IncDetectorError(name)
		return false
	}
	return hit
}

// CountryHistory flags a request from a country the user has never
// transacted from. Users with no located history are never flagged.
type CountryHistory struct{}

func (CountryHistory) GeographicAnomaly(_ context.Context, req ScoreRequest, history []Transaction) (bool, error) {
	if req.CountryCode == "" {
		return false, nil
	}
	seen := false
	for _, tx := range history {
		if tx.CountryCode == "" {
			continue
		}
		if strings.EqualFold(tx.CountryCode, req.CountryCode) {
			return false, nil
		}
		seen = true
	}
	return seen, nil
}
