package access

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"warden/internal/access/metrics"
	"warden/internal/compliance"
	"warden/internal/geo"
	"warden/internal/restriction"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/audit"
	"warden/pkg/platform/privacy"
	"warden/pkg/requestcontext"
)

// Resolver resolves client addresses.
type Resolver interface {
	Resolve(ctx context.Context, ip string) (geo.IPGeolocation, error)
}

// Rules returns the restrictions applicable to a (type, target) scope.
type Rules interface {
	Applicable(ctx context.Context, t restriction.Type, targetID string) ([]restriction.Restriction, error)
}

// ComplianceChecker reports a user's outstanding compliance actions.
type ComplianceChecker interface {
	CheckCompliance(ctx context.Context, userID id.UserID, countryCode string) (compliance.CheckResult, error)
}

// ContentPolicy reports content categories a country's rules forbid.
type ContentPolicy interface {
	IsContentRestricted(ctx context.Context, countryCode, category string) (bool, error)
}

// Request identifies what is being accessed and from where. Category is the
// content category of a content target, such as gambling.
type Request struct {
	IP       string
	UserID   id.UserID
	TargetID string
	Type     restriction.Type
	Category string
}

// Service gathers decision inputs and applies Evaluate.
type Service struct {
	resolver   Resolver
	rules      Rules
	compliance ComplianceChecker
	content    ContentPolicy
	auditor    audit.Emitter
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditor(a audit.Emitter) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

// WithCompliance enables the compliance warning on allowed decisions.
func WithCompliance(c ComplianceChecker) Option {
	return func(s *Service) {
		s.compliance = c
	}
}

// WithContentPolicy blocks content whose category the resolved country
// restricts.
func WithContentPolicy(p ContentPolicy) Option {
	return func(s *Service) {
		s.content = p
	}
}

func New(resolver Resolver, rules Rules, opts ...Option) (*Service, error) {
	if resolver == nil {
		return nil, errors.New("geo resolver is required")
	}
	if rules == nil {
		return nil, errors.New("restriction rules are required")
	}
	s := &Service{
		resolver: resolver,
		rules:    rules,
		logger:   slog.Default(),
		tracer:   otel.Tracer("warden/access"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CheckAccess decides whether req may proceed. Errors are returned only for
// malformed requests; collaborator failures become degraded decisions.
func (s *Service) CheckAccess(ctx context.Context, req Request) (Result, error) {
	if !req.Type.IsValid() {
		return Result{}, dErrors.New(dErrors.CodeValidation, "type must be one of content, feature, user_access, payment")
	}
	if strings.TrimSpace(req.IP) == "" {
		return Result{}, dErrors.New(dErrors.CodeValidation, "ip is required")
	}

	ctx, span := s.tracer.Start(ctx, "access.CheckAccess", trace.WithAttributes(
		attribute.String("access.type", string(req.Type)),
		attribute.String("access.target_id", req.TargetID),
	))
	defer span.End()
	start := time.Now()

	loc, err := s.resolver.Resolve(ctx, req.IP)
	if err != nil {
		return Result{}, err
	}

	in := Inputs{Type: req.Type, Location: loc, Category: req.Category}
	if _, blocked := LegalBlock(loc); !blocked && loc.Known() {
		rules, err := s.rules.Applicable(ctx, req.Type, req.TargetID)
		if err != nil {
			s.logger.WarnContext(ctx, "restriction rules unavailable", "type", req.Type, "error", err)
			in.RulesUnavailable = true
		}
		in.Rules = rules
		in.ContentRestricted = s.contentRestricted(ctx, req, loc.CountryCode)
	}

	res := Evaluate(in)
	if res.Allowed && s.compliance != nil && !req.UserID.IsNil() && loc.Known() {
		check, err := s.compliance.CheckCompliance(ctx, req.UserID, loc.CountryCode)
		if err != nil {
			s.logger.WarnContext(ctx, "compliance check skipped", "user_id", req.UserID, "error", err)
		} else {
			in.Compliance = &check
			res = Evaluate(in)
		}
	}

	span.SetAttributes(
		attribute.String("access.action", string(res.RecommendedAction)),
		attribute.Bool("access.degraded", res.Degraded),
	)
	s.metrics.ObserveDecision(string(req.Type), string(res.RecommendedAction), time.Since(start))
	s.record(ctx, req, loc, res)
	return res, nil
}

// contentRestricted fails open: content checks are low stakes.
func (s *Service) contentRestricted(ctx context.Context, req Request, countryCode string) bool {
	if s.content == nil || req.Type != restriction.TypeContent || req.Category == "" {
		return false
	}
	restricted, err := s.content.IsContentRestricted(ctx, countryCode, req.Category)
	if err != nil {
		s.logger.WarnContext(ctx, "content policy unavailable", "category", req.Category, "error", err)
		return false
	}
	return restricted
}

func (s *Service) record(ctx context.Context, req Request, loc geo.IPGeolocation, res Result) {
	var action audit.AuditEvent
	switch {
	case res.RecommendedAction == ActionBlock:
		action = audit.EventAccessBlocked
	case res.RecommendedAction == ActionVerify:
		action = audit.EventAccessVerifyRequired
	case res.VPNDetected:
		action = audit.EventAnonymizerDetected
	default:
		return
	}
	prefix := privacy.AnonymizeIP(loc.IP)
	s.logger.InfoContext(ctx, "access decision",
		"ip_prefix", prefix,
		"country", res.Country,
		"type", req.Type,
		"action", res.RecommendedAction,
		"reason", res.Reason,
	)
	audit.EmitLogged(ctx, s.auditor, s.logger, audit.Event{
		Action:    string(action),
		UserID:    req.UserID,
		Subject:   prefix,
		Decision:  string(res.RecommendedAction),
		Reason:    res.Reason,
		RequestID: requestcontext.RequestID(ctx),
		Metadata: map[string]string{
			"type":      string(req.Type),
			"target_id": req.TargetID,
			"country":   res.Country,
		},
	})
}
