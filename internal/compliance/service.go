package compliance

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/audit"
	"warden/pkg/platform/cache"
	"warden/pkg/platform/sentinel"
	platformstrings "warden/pkg/platform/strings"
	"warden/pkg/requestcontext"
)

const defaultRuleTTL = 5 * time.Minute

// RuleStore reads country rules. Rule returns sentinel.ErrNotFound for a
// country without one.
type RuleStore interface {
	Rule(ctx context.Context, countryCode string) (*Rule, error)
}

// ArtifactStore records compliance evidence per user. Recording the same kind
// twice refreshes its timestamp.
type ArtifactStore interface {
	Record(ctx context.Context, artifact Artifact) error
	Kinds(ctx context.Context, userID id.UserID) ([]ArtifactKind, error)
}

// Service answers per-country compliance questions.
type Service struct {
	rules     RuleStore
	artifacts ArtifactStore
	cache     *cache.TTL[string, *Rule]
	auditor   audit.Emitter
	logger    *slog.Logger
	now       func() time.Time
	ruleTTL   time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithAuditor(a audit.Emitter) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

func WithRuleTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ruleTTL = ttl
		}
	}
}

func NewService(rules RuleStore, artifacts ArtifactStore, opts ...Option) (*Service, error) {
	if rules == nil {
		return nil, errors.New("compliance rule store is required")
	}
	if artifacts == nil {
		return nil, errors.New("compliance artifact store is required")
	}
	s := &Service{
		rules:     rules,
		artifacts: artifacts,
		logger:    slog.Default(),
		now:       time.Now,
		ruleTTL:   defaultRuleTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = cache.NewTTL[string, *Rule](s.ruleTTL, cache.WithClock(s.now))
	return s, nil
}

// RequirementsFor returns the rule for countryCode, or nil when the country
// has none.
func (s *Service) RequirementsFor(ctx context.Context, countryCode string) (*Rule, error) {
	code := platformstrings.NormalizeCountryCode(countryCode)
	if code == "" {
		return nil, nil
	}
	// Misses are cached as nil so countries without a rule stay off the store.
	if rule, ok := s.cache.Get(code); ok {
		return copyRule(rule), nil
	}
	rule, err := s.rules.Rule(ctx, code)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		s.cache.Set(code, nil)
		return nil, nil
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "compliance rules unavailable")
	}
	s.cache.Set(code, rule)
	return copyRule(rule), nil
}

// CheckCompliance reports which of the country's requirements the user has
// not yet satisfied.
func (s *Service) CheckCompliance(ctx context.Context, userID id.UserID, countryCode string) (CheckResult, error) {
	code := platformstrings.NormalizeCountryCode(countryCode)
	rule, err := s.RequirementsFor(ctx, code)
	if err != nil {
		return CheckResult{}, err
	}
	if rule == nil {
		return Evaluate(nil, code, nil), nil
	}
	var held []ArtifactKind
	if !userID.IsNil() {
		held, err = s.artifacts.Kinds(ctx, userID)
		if err != nil {
			return CheckResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "compliance artifacts unavailable")
		}
	}
	return Evaluate(rule, code, held), nil
}

// RecordArtifact registers evidence such as a completed age verification.
func (s *Service) RecordArtifact(ctx context.Context, userID id.UserID, kind ArtifactKind) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if !kind.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "kind must be one of age_verification, consent")
	}
	artifact := Artifact{UserID: userID, Kind: kind, RecordedAt: s.now()}
	if err := s.artifacts.Record(ctx, artifact); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record compliance artifact")
	}
	audit.EmitLogged(ctx, s.auditor, s.logger, audit.Event{
		Action:    string(audit.EventArtifactRecorded),
		UserID:    userID,
		Subject:   string(kind),
		RequestID: requestcontext.RequestID(ctx),
	})
	return nil
}

// IsContentRestricted reports whether category is restricted in countryCode.
func (s *Service) IsContentRestricted(ctx context.Context, countryCode, category string) (bool, error) {
	rule, err := s.RequirementsFor(ctx, countryCode)
	if err != nil || rule == nil {
		return false, err
	}
	return rule.RestrictsContent(category), nil
}

// IsPaymentRestricted reports whether the payment method is restricted in countryCode.
func (s *Service) IsPaymentRestricted(ctx context.Context, countryCode, method string) (bool, error) {
	rule, err := s.RequirementsFor(ctx, countryCode)
	if err != nil || rule == nil {
		return false, err
	}
	return rule.RestrictsPayment(method), nil
}

func copyRule(r *Rule) *Rule {
	if r == nil {
		return nil
	}
	c := *r
	c.ContentRestrictions = slices.Clone(r.ContentRestrictions)
	c.PaymentRestrictions = slices.Clone(r.PaymentRestrictions)
	return &c
}
