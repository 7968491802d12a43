// Package engine is the public surface of the decision engine. Each operation
// delegates to the owning service; the facade only adapts request shapes and
// turns synchronous KYC rejections into result values.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"maps"

	"warden/internal/access"
	"warden/internal/compliance"
	"warden/internal/fraud"
	"warden/internal/kyc"
	"warden/internal/payment"
	"warden/internal/restriction"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/requestcontext"
)

// AccessChecker decides geographic access.
type AccessChecker interface {
	CheckAccess(ctx context.Context, req access.Request) (access.Result, error)
}

// RestrictionAdmin manages restriction rules.
type RestrictionAdmin interface {
	Create(ctx context.Context, req restriction.CreateRequest) (*restriction.Restriction, error)
	Deactivate(ctx context.Context, restrictionID id.RestrictionID, actor string) error
	Get(ctx context.Context, restrictionID id.RestrictionID) (*restriction.Restriction, error)
}

// ComplianceChecker reports a user's standing against a country's rules and
// records the evidence that satisfies them.
type ComplianceChecker interface {
	CheckCompliance(ctx context.Context, userID id.UserID, countryCode string) (compliance.CheckResult, error)
	RecordArtifact(ctx context.Context, userID id.UserID, kind compliance.ArtifactKind) error
}

// KYCWorkflow runs identity verification requests.
type KYCWorkflow interface {
	Initiate(ctx context.Context, req kyc.InitiateRequest) (*kyc.Verification, error)
	Review(ctx context.Context, req kyc.ReviewRequest) (*kyc.Verification, error)
	Get(ctx context.Context, verificationID id.VerificationID) (*kyc.Verification, error)
}

// FraudScorer scores a prospective transaction.
type FraudScorer interface {
	Score(ctx context.Context, req fraud.ScoreRequest) (fraud.Result, error)
}

// PaymentGate gates a payment on verification level and fraud risk.
type PaymentGate interface {
	Check(ctx context.Context, req payment.Request) (payment.Decision, error)
}

// GeoAccessRequest asks whether a client may reach a resource.
type GeoAccessRequest struct {
	IP       string
	UserID   id.UserID
	TargetID string
	Type     restriction.Type
	Category string
}

// KYCInitiation is the outcome of InitiateKYCVerification. A submission the
// workflow refuses is reported with Success=false and the reason in Error.
type KYCInitiation struct {
	Success        bool              `json:"success"`
	VerificationID id.VerificationID `json:"verification_id,omitzero"`
	Status         kyc.Status        `json:"status,omitempty"`
	Error          string            `json:"error,omitempty"`

	// Code classifies a refusal for transports that map it to a status.
	Code dErrors.Code `json:"-"`
}

// Engine exposes the decision operations consumed by route handlers.
type Engine struct {
	access       AccessChecker
	restrictions RestrictionAdmin
	compliance   ComplianceChecker
	kyc          KYCWorkflow
	fraud        FraudScorer
	payments     PaymentGate
	logger       *slog.Logger
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Services bundles the collaborators of an Engine. Every field is required.
type Services struct {
	Access       AccessChecker
	Restrictions RestrictionAdmin
	Compliance   ComplianceChecker
	KYC          KYCWorkflow
	Fraud        FraudScorer
	Payments     PaymentGate
}

func New(svc Services, opts ...Option) (*Engine, error) {
	switch {
	case svc.Access == nil:
		return nil, errors.New("access checker is required")
	case svc.Restrictions == nil:
		return nil, errors.New("restriction admin is required")
	case svc.Compliance == nil:
		return nil, errors.New("compliance checker is required")
	case svc.KYC == nil:
		return nil, errors.New("kyc workflow is required")
	case svc.Fraud == nil:
		return nil, errors.New("fraud scorer is required")
	case svc.Payments == nil:
		return nil, errors.New("payment gate is required")
	}
	e := &Engine{
		access:       svc.Access,
		restrictions: svc.Restrictions,
		compliance:   svc.Compliance,
		kyc:          svc.KYC,
		fraud:        svc.Fraud,
		payments:     svc.Payments,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// CheckGeoAccess decides whether the client at req.IP may reach the target.
// A block is a result, not an error.
func (e *Engine) CheckGeoAccess(ctx context.Context, req GeoAccessRequest) (access.Result, error) {
	return e.access.CheckAccess(ctx, access.Request{
		IP:       req.IP,
		UserID:   req.UserID,
		TargetID: req.TargetID,
		Type:     req.Type,
		Category: req.Category,
	})
}

// CreateGeoRestriction stores a new rule and returns its ID. CreatedBy falls
// back to the authenticated operator.
func (e *Engine) CreateGeoRestriction(ctx context.Context, req restriction.CreateRequest) (id.RestrictionID, error) {
	if req.CreatedBy == "" {
		req.CreatedBy = requestcontext.Actor(ctx)
	}
	rest, err := e.restrictions.Create(ctx, req)
	if err != nil {
		return id.RestrictionID{}, err
	}
	return rest.ID, nil
}

// DeactivateGeoRestriction ends a rule on behalf of the authenticated operator.
func (e *Engine) DeactivateGeoRestriction(ctx context.Context, restrictionID id.RestrictionID) error {
	return e.restrictions.Deactivate(ctx, restrictionID, requestcontext.Actor(ctx))
}

// GetGeoRestriction returns a rule regardless of state.
func (e *Engine) GetGeoRestriction(ctx context.Context, restrictionID id.RestrictionID) (*restriction.Restriction, error) {
	return e.restrictions.Get(ctx, restrictionID)
}

func (e *Engine) CheckCompliance(ctx context.Context, userID id.UserID, countryCode string) (compliance.CheckResult, error) {
	return e.compliance.CheckCompliance(ctx, userID, countryCode)
}

// RecordComplianceArtifact stores evidence such as a consent the user gave
// through another channel.
func (e *Engine) RecordComplianceArtifact(ctx context.Context, userID id.UserID, kind compliance.ArtifactKind) error {
	return e.compliance.RecordArtifact(ctx, userID, kind)
}

// InitiateKYCVerification submits a verification request. Validation failures
// and a competing active request come back as an unsuccessful result; only
// infrastructure failures are returned as errors.
func (e *Engine) InitiateKYCVerification(ctx context.Context, req kyc.InitiateRequest) (KYCInitiation, error) {
	v, err := e.kyc.Initiate(ctx, req)
	if err != nil {
		code := dErrors.CodeOf(err)
		switch code {
		case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeConflict:
			e.logger.InfoContext(ctx, "kyc submission refused",
				"user_id", req.UserID,
				"request_id", requestcontext.RequestID(ctx),
				"reason", dErrors.MessageOf(err),
			)
			return KYCInitiation{Success: false, Error: dErrors.MessageOf(err), Code: code}, nil
		}
		return KYCInitiation{}, err
	}
	return KYCInitiation{Success: true, VerificationID: v.ID, Status: v.Status}, nil
}

// ReviewKYCVerification resolves a request held for manual review. The
// reviewer defaults to the authenticated operator.
func (e *Engine) ReviewKYCVerification(ctx context.Context, req kyc.ReviewRequest) (*kyc.Verification, error) {
	if req.ReviewerID == "" {
		req.ReviewerID = requestcontext.Actor(ctx)
	}
	return e.kyc.Review(ctx, req)
}

func (e *Engine) GetKYCVerification(ctx context.Context, verificationID id.VerificationID) (*kyc.Verification, error) {
	return e.kyc.Get(ctx, verificationID)
}

// CheckPaymentCompliance gates a payment. Device signals absent from the
// metadata are taken from the request context.
func (e *Engine) CheckPaymentCompliance(ctx context.Context, req payment.Request) (payment.Decision, error) {
	req.Metadata = withClientSignals(ctx, req.Metadata)
	return e.payments.Check(ctx, req)
}

// DetectFraudulentActivity scores a transaction without gating it.
func (e *Engine) DetectFraudulentActivity(ctx context.Context, req fraud.ScoreRequest) (fraud.Result, error) {
	if req.DeviceFingerprint == "" {
		req.DeviceFingerprint = requestcontext.DeviceFingerprint(ctx)
	}
	if req.UserAgent == "" {
		req.UserAgent = requestcontext.UserAgent(ctx)
	}
	return e.fraud.Score(ctx, req)
}

func withClientSignals(ctx context.Context, meta map[string]string) map[string]string {
	out := make(map[string]string, len(meta)+2)
	maps.Copy(out, meta)
	if out[payment.MetaDeviceFingerprint] == "" {
		if fp := requestcontext.DeviceFingerprint(ctx); fp != "" {
			out[payment.MetaDeviceFingerprint] = fp
		}
	}
	if out[payment.MetaUserAgent] == "" {
		if ua := requestcontext.UserAgent(ctx); ua != "" {
			out[payment.MetaUserAgent] = ua
		}
	}
	return out
}
