package payment

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"warden/internal/fraud"
	"warden/internal/kyc"
	"warden/internal/notify"
	"warden/internal/payment/metrics"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/audit"
	"warden/pkg/platform/jobs"
	"warden/pkg/platform/sentinel"
	platformstrings "warden/pkg/platform/strings"
	"warden/pkg/requestcontext"
)

const defaultCurrency = "USD"

// LevelSource reports a user's current verification level.
type LevelSource interface {
	CurrentLevel(ctx context.Context, userID id.UserID) (kyc.Level, error)
}

// RiskScorer scores transactions and records approved ones.
type RiskScorer interface {
	Score(ctx context.Context, req fraud.ScoreRequest) (fraud.Result, error)
	RecordTransaction(ctx context.Context, tx fraud.Transaction) error
}

// MethodPolicy reports payment methods a country's rules forbid.
type MethodPolicy interface {
	IsPaymentRestricted(ctx context.Context, countryCode, method string) (bool, error)
}

// Gate decides whether a payment may proceed. It fails closed: when the level
// or fraud check cannot be completed the payment goes to review. Decisions
// are never retried here, so AML reports are queued at most once each.
type Gate struct {
	levels     LevelSource
	scorer     RiskScorer
	queue      jobs.Enqueuer
	processors *Registry
	methods    MethodPolicy
	auditor    audit.Emitter
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	now        func() time.Time
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

func WithAuditor(a audit.Emitter) Option {
	return func(g *Gate) {
		g.auditor = a
	}
}

// WithProcessors lets approved decisions name the processor that serves the
// payer's country.
func WithProcessors(r *Registry) Option {
	return func(g *Gate) {
		g.processors = r
	}
}

// WithMethodPolicy blocks payments whose payment_method metadata the payer's
// country forbids.
func WithMethodPolicy(p MethodPolicy) Option {
	return func(g *Gate) {
		g.methods = p
	}
}

func NewGate(levels LevelSource, scorer RiskScorer, queue jobs.Enqueuer, opts ...Option) (*Gate, error) {
	switch {
	case levels == nil:
		return nil, errors.New("verification level source is required")
	case scorer == nil:
		return nil, errors.New("fraud scorer is required")
	case queue == nil:
		return nil, errors.New("job queue is required")
	}
	g := &Gate{
		levels: levels,
		scorer: scorer,
		queue:  queue,
		logger: slog.Default(),
		tracer: otel.Tracer("warden/payment"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Check gates one payment. The only errors are validation errors; every
// other outcome is a Decision.
func (g *Gate) Check(ctx context.Context, req Request) (Decision, error) {
	if req.UserID.IsNil() {
		return Decision{}, dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if req.AmountCents <= 0 {
		return Decision{}, dErrors.New(dErrors.CodeValidation, "amount must be a positive number of cents")
	}
	if !req.Type.IsValid() {
		return Decision{}, dErrors.New(dErrors.CodeValidation, "type must be one of purchase, subscription, payout")
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	country := platformstrings.NormalizeCountryCode(req.Metadata[MetaCountry])

	ctx, span := g.tracer.Start(ctx, "payment.Check", trace.WithAttributes(
		attribute.String("payment.type", string(req.Type)),
		attribute.Int64("payment.amount_cents", req.AmountCents),
	))
	defer span.End()

	in := inputs{Type: req.Type, AmountCents: req.AmountCents, Country: country}
	var fraudResult fraud.Result
	var eg errgroup.Group
	if method := strings.ToLower(strings.TrimSpace(req.Metadata[MetaPaymentMethod])); g.methods != nil && method != "" && country != "" {
		eg.Go(func() error {
			restricted, err := g.methods.IsPaymentRestricted(ctx, country, method)
			if err != nil {
				g.logger.WarnContext(ctx, "payment method policy unavailable", "country", country, "method", method, "error", err)
				in.PolicyFailed = true
				return nil
			}
			if restricted {
				in.RestrictedMethod = method
			}
			return nil
		})
	}
	eg.Go(func() error {
		level, err := g.levels.CurrentLevel(ctx, req.UserID)
		if err != nil {
			g.logger.WarnContext(ctx, "verification level unavailable", "user_id", req.UserID, "error", err)
			in.LevelFailed = true
			return nil
		}
		in.Level = level
		return nil
	})
	eg.Go(func() error {
		res, err := g.scorer.Score(ctx, fraud.ScoreRequest{
			UserID:            req.UserID,
			AmountCents:       req.AmountCents,
			Type:              string(req.Type),
			CountryCode:       country,
			DeviceFingerprint: req.Metadata[MetaDeviceFingerprint],
			UserAgent:         req.Metadata[MetaUserAgent],
		})
		if err != nil {
			g.logger.WarnContext(ctx, "fraud scoring unavailable", "user_id", req.UserID, "error", err)
			in.FraudFailed = true
			return nil
		}
		fraudResult = res
		return nil
	})
	_ = eg.Wait()
	if !in.FraudFailed {
		in.Fraud = &fraudResult
	}

	d := decide(in)
	d.ID = uuid.New()
	span.SetAttributes(attribute.String("payment.status", string(d.Status)))

	if d.AMLReportRequired {
		d.AMLReportQueued = g.queueAMLReport(ctx, req, currency, d)
	}
	if d.Fraud != nil && d.Fraud.RecommendedAction == fraud.RecommendFreeze {
		g.freeze(ctx, req.UserID, d)
	}
	if d.Approved {
		g.record(ctx, req, country)
		if g.processors != nil {
			if p, ok := g.processors.ForCountry(country); ok {
				d.Processor = p.ID()
			}
		}
	}

	g.metrics.IncDecision(string(req.Type), string(d.Status))
	g.logger.InfoContext(ctx, "payment decision",
		"decision_id", d.ID,
		"user_id", req.UserID,
		"type", req.Type,
		"amount_cents", req.AmountCents,
		"status", d.Status,
		"verification_required", d.VerificationRequired,
		"degraded", d.Degraded,
	)
	if d.Status != StatusApproved {
		g.auditDecision(ctx, req, d)
	}
	return d, nil
}

func (g *Gate) queueAMLReport(ctx context.Context, req Request, currency string, d Decision) bool {
	report := AMLReport{
		ID:          id.NewReportID(),
		DecisionID:  d.ID,
		UserID:      req.UserID,
		AmountCents: req.AmountCents,
		Currency:    currency,
		Type:        req.Type,
		Status:      d.Status,
		Flags:       []fraud.Flag{},
		CreatedAt:   g.now(),
	}
	if d.Fraud != nil {
		report.RiskScore = d.Fraud.RiskScore
		report.Flags = d.Fraud.Flags
	}
	if err := enqueueAMLReport(ctx, g.queue, report); err != nil && !errors.Is(err, sentinel.ErrConflict) {
		g.metrics.IncAMLReport("enqueue_failed")
		g.logger.ErrorContext(ctx, "failed to queue aml report", "decision_id", d.ID, "error", err)
		return false
	}
	g.metrics.IncAMLReport("queued")
	audit.EmitLogged(ctx, g.auditor, g.logger, audit.Event{
		Action:    string(audit.EventAMLReportQueued),
		UserID:    req.UserID,
		Subject:   report.ID.String(),
		Decision:  string(d.Status),
		RequestID: requestcontext.RequestID(ctx),
		Metadata:  map[string]string{"amount_cents": strconv.FormatInt(req.AmountCents, 10)},
	})
	return true
}

func (g *Gate) freeze(ctx context.Context, userID id.UserID, d Decision) {
	audit.EmitLogged(ctx, g.auditor, g.logger, audit.Event{
		Action:    string(audit.EventAccountFrozen),
		UserID:    userID,
		Subject:   userID.String(),
		Decision:  string(fraud.RecommendFreeze),
		Reason:    strings.Join(d.Fraud.Reasons, "; "),
		RequestID: requestcontext.RequestID(ctx),
	})
	n := notify.Notification{
		UserID:   userID,
		Template: notify.TemplateAccountFrozen,
		Data:     map[string]string{"decision_id": d.ID.String()},
	}
	if err := notify.Enqueue(ctx, g.queue, n, "notify:freeze:"+d.ID.String()); err != nil {
		g.logger.WarnContext(ctx, "failed to queue freeze notification", "user_id", userID, "error", err)
	}
}

// record appends an approved payment to the fraud history so later scores
// see it.
func (g *Gate) record(ctx context.Context, req Request, country string) {
	err := g.scorer.RecordTransaction(ctx, fraud.Transaction{
		UserID:            req.UserID,
		AmountCents:       req.AmountCents,
		Type:              string(req.Type),
		CountryCode:       country,
		DeviceFingerprint: req.Metadata[MetaDeviceFingerprint],
		OccurredAt:        g.now(),
	})
	if err != nil {
		g.logger.WarnContext(ctx, "failed to record transaction", "user_id", req.UserID, "error", err)
	}
}

func (g *Gate) auditDecision(ctx context.Context, req Request, d Decision) {
	action := audit.EventPaymentReview
	if d.Status == StatusBlocked {
		action = audit.EventPaymentBlocked
	}
	meta := map[string]string{
		"type":         string(req.Type),
		"amount_cents": strconv.FormatInt(req.AmountCents, 10),
	}
	if d.VerificationRequired != "" {
		meta["verification_required"] = string(d.VerificationRequired)
		meta["max_allowed_cents"] = strconv.FormatInt(d.MaxAllowedCents, 10)
	}
	if d.Fraud != nil {
		meta["risk_score"] = strconv.Itoa(d.Fraud.RiskScore)
	}
	audit.EmitLogged(ctx, g.auditor, g.logger, audit.Event{
		Action:    string(action),
		UserID:    req.UserID,
		Subject:   d.ID.String(),
		Decision:  string(d.Status),
		Reason:    d.Reason,
		RequestID: requestcontext.RequestID(ctx),
		Metadata:  meta,
	})
}
