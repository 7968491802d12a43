package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"warden/internal/access"
	"warden/internal/compliance"
	"warden/internal/engine"
	"warden/internal/fraud"
	jwttoken "warden/internal/jwt_token"
	"warden/internal/kyc"
	"warden/internal/payment"
	"warden/internal/restriction"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/httputil"
	"warden/pkg/platform/middleware/admin"
	"warden/pkg/requestcontext"
)

// Service is the engine surface the handlers need.
type Service interface {
	CheckGeoAccess(ctx context.Context, req engine.GeoAccessRequest) (access.Result, error)
	CreateGeoRestriction(ctx context.Context, req restriction.CreateRequest) (id.RestrictionID, error)
	GetGeoRestriction(ctx context.Context, restrictionID id.RestrictionID) (*restriction.Restriction, error)
	DeactivateGeoRestriction(ctx context.Context, restrictionID id.RestrictionID) error
	CheckCompliance(ctx context.Context, userID id.UserID, countryCode string) (compliance.CheckResult, error)
	RecordComplianceArtifact(ctx context.Context, userID id.UserID, kind compliance.ArtifactKind) error
	InitiateKYCVerification(ctx context.Context, req kyc.InitiateRequest) (engine.KYCInitiation, error)
	GetKYCVerification(ctx context.Context, verificationID id.VerificationID) (*kyc.Verification, error)
	ReviewKYCVerification(ctx context.Context, req kyc.ReviewRequest) (*kyc.Verification, error)
	CheckPaymentCompliance(ctx context.Context, req payment.Request) (payment.Decision, error)
	DetectFraudulentActivity(ctx context.Context, req fraud.ScoreRequest) (fraud.Result, error)
}

// Handler wires the engine operations to HTTP.
type Handler struct {
	service Service
	tokens  admin.TokenValidator
	logger  *slog.Logger
}

func New(service Service, tokens admin.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		tokens:  tokens,
		logger:  logger,
	}
}

// Register mounts the engine routes. Restriction administration and manual
// review require an operator token with the matching role.
func (h *Handler) Register(r chi.Router) {
	r.Post("/access/check", h.HandleCheckAccess)
	r.Post("/compliance/check", h.HandleCheckCompliance)
	r.Post("/kyc/verifications", h.HandleInitiateKYC)
	r.Get("/kyc/verifications/{verificationID}", h.HandleGetKYC)
	r.Post("/payments/check", h.HandleCheckPayment)
	r.Post("/fraud/score", h.HandleScoreFraud)

	r.Group(func(r chi.Router) {
		r.Use(admin.RequireRole(h.tokens, jwttoken.RoleComplianceAdmin, h.logger))
		r.Post("/restrictions", h.HandleCreateRestriction)
		r.Get("/restrictions/{restrictionID}", h.HandleGetRestriction)
		r.Delete("/restrictions/{restrictionID}", h.HandleDeactivateRestriction)
		r.Post("/compliance/artifacts", h.HandleRecordArtifact)
	})
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireRole(h.tokens, jwttoken.RoleKYCReviewer, h.logger))
		r.Post("/kyc/verifications/{verificationID}/review", h.HandleReviewKYC)
	})
}

// HandleCheckAccess handles POST /access/check.
func (h *Handler) HandleCheckAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AccessCheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	ip := req.IP
	if ip == "" {
		ip = requestcontext.ClientIP(ctx)
	}

	res, err := h.service.CheckGeoAccess(ctx, engine.GeoAccessRequest{
		IP:       ip,
		UserID:   req.parsedUserID,
		TargetID: req.TargetID,
		Type:     req.parsedType,
		Category: req.Category,
	})
	if err != nil {
		h.fail(ctx, w, "access check failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleCreateRestriction handles POST /restrictions.
func (h *Handler) HandleCreateRestriction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateRestrictionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	restrictionID, err := h.service.CreateGeoRestriction(ctx, req.toDomain())
	if err != nil {
		h.fail(ctx, w, "restriction create failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"id": restrictionID.String()})
}

// HandleGetRestriction handles GET /restrictions/{restrictionID}.
func (h *Handler) HandleGetRestriction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restrictionID, err := id.ParseRestrictionID(chi.URLParam(r, "restrictionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rest, err := h.service.GetGeoRestriction(ctx, restrictionID)
	if err != nil {
		h.fail(ctx, w, "restriction lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rest)
}

// HandleDeactivateRestriction handles DELETE /restrictions/{restrictionID}.
func (h *Handler) HandleDeactivateRestriction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restrictionID, err := id.ParseRestrictionID(chi.URLParam(r, "restrictionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeactivateGeoRestriction(ctx, restrictionID); err != nil {
		h.fail(ctx, w, "restriction deactivate failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCheckCompliance handles POST /compliance/check.
func (h *Handler) HandleCheckCompliance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ComplianceCheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.CheckCompliance(ctx, req.parsedUserID, req.CountryCode)
	if err != nil {
		h.fail(ctx, w, "compliance check failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleRecordArtifact handles POST /compliance/artifacts.
func (h *Handler) HandleRecordArtifact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RecordArtifactRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.RecordComplianceArtifact(ctx, req.parsedUserID, req.parsedKind); err != nil {
		h.fail(ctx, w, "artifact record failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleInitiateKYC handles POST /kyc/verifications. A refused submission is
// answered with the result body and the status of its error code.
func (h *Handler) HandleInitiateKYC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[InitiateKYCRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.InitiateKYCVerification(ctx, req.toDomain())
	if err != nil {
		h.fail(ctx, w, "kyc initiation failed", err)
		return
	}
	if !res.Success {
		httputil.WriteJSON(w, httputil.StatusFor(res.Code), res)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, res)
}

// HandleGetKYC handles GET /kyc/verifications/{verificationID}.
func (h *Handler) HandleGetKYC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	verificationID, err := id.ParseVerificationID(chi.URLParam(r, "verificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	v, err := h.service.GetKYCVerification(ctx, verificationID)
	if err != nil {
		h.fail(ctx, w, "kyc lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

// HandleReviewKYC handles POST /kyc/verifications/{verificationID}/review.
func (h *Handler) HandleReviewKYC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	verificationID, err := id.ParseVerificationID(chi.URLParam(r, "verificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReviewKYCRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	v, err := h.service.ReviewKYCVerification(ctx, kyc.ReviewRequest{
		VerificationID: verificationID,
		Approve:        req.Approve,
		Reason:         req.Reason,
	})
	if err != nil {
		h.fail(ctx, w, "kyc review failed", err)
		return
	}
	h.logger.InfoContext(ctx, "kyc reviewed",
		"request_id", requestID,
		"verification_id", verificationID,
		"status", v.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, v)
}

// HandleCheckPayment handles POST /payments/check. Blocked and review
// decisions are results, so they are answered with 200.
func (h *Handler) HandleCheckPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[PaymentCheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	dec, err := h.service.CheckPaymentCompliance(ctx, req.toDomain())
	if err != nil {
		h.fail(ctx, w, "payment check failed", err)
		return
	}
	h.logger.InfoContext(ctx, "payment checked",
		"request_id", requestID,
		"decision_id", dec.ID,
		"status", dec.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, dec)
}

// HandleScoreFraud handles POST /fraud/score.
func (h *Handler) HandleScoreFraud(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[FraudScoreRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.DetectFraudulentActivity(ctx, fraud.ScoreRequest{
		UserID:      req.parsedUserID,
		AmountCents: req.amountCents,
		Type:        req.Type,
		CountryCode: req.CountryCode,
	})
	if err != nil {
		h.fail(ctx, w, "fraud scoring failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if code := dErrors.CodeOf(err); httputil.StatusFor(code) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
