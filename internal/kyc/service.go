package kyc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"warden/internal/compliance"
	"warden/internal/kyc/metrics"
	"warden/internal/notify"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/audit"
	"warden/pkg/platform/jobs"
	"warden/pkg/platform/privacy"
	"warden/pkg/platform/provider"
	"warden/pkg/platform/sentinel"
	"warden/pkg/requestcontext"
)

const (
	// ProcessJobKind is the job kind that runs Process asynchronously.
	ProcessJobKind = "kyc.process"

	systemReviewer     = "system"
	defaultTimeout     = 5 * time.Second
	defaultExpiryBatch = 500
)

// Store persists verification requests and granted levels.
type Store interface {
	// Create returns sentinel.ErrConflict when the user already has an active request.
	Create(ctx context.Context, v *Verification) error
	Get(ctx context.Context, verificationID id.VerificationID) (*Verification, error)
	// ActiveForUser returns the user's pending or processing request, or
	// sentinel.ErrNotFound.
	ActiveForUser(ctx context.Context, userID id.UserID) (*Verification, error)
	// Transition saves v if the stored status is still from, and returns
	// sentinel.ErrInvalidState otherwise. A non-nil grant is recorded in the
	// same write.
	Transition(ctx context.Context, v *Verification, from Status, grant *LevelGrant) error
	// ListExpired returns active requests whose ExpiresAt is at or before now.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*Verification, error)
	// ListStalled returns requests submitted at or before cutoff that still
	// wait on automated processing: pending ones, and processing ones with no
	// review recorded.
	ListStalled(ctx context.Context, cutoff time.Time, limit int) ([]*Verification, error)
	// Level returns the user's current grant, or sentinel.ErrNotFound.
	Level(ctx context.Context, userID id.UserID) (LevelGrant, error)
}

// DocumentResult is the outcome of document verification. Verified is
// parallel to the submitted documents.
type DocumentResult struct {
	Confidence float64
	Verified   []bool
}

// DocumentVerifier checks submitted documents (OCR, tamper detection).
type DocumentVerifier interface {
	VerifyDocuments(ctx context.Context, docs []Document) (DocumentResult, error)
}

// IdentityVerifier matches personal details against the documents and
// reference records. It returns a confidence in [0,1].
type IdentityVerifier interface {
	VerifyIdentity(ctx context.Context, info PersonalInfo, docs []Document) (float64, error)
}

// AMLScreener screens a person against sanctions, PEP and adverse media lists.
type AMLScreener interface {
	Screen(ctx context.Context, info PersonalInfo) (AMLChecks, error)
}

// ArtifactRecorder stores compliance evidence earned through verification.
// compliance.Service implements it.
type ArtifactRecorder interface {
	RecordArtifact(ctx context.Context, userID id.UserID, kind compliance.ArtifactKind) error
}

// InitiateRequest carries a new verification submission.
type InitiateRequest struct {
	UserID       id.UserID
	Type         Type
	PersonalInfo PersonalInfo
	Documents    []Document
}

// ReviewRequest carries a reviewer's decision on a request.
type ReviewRequest struct {
	VerificationID id.VerificationID
	ReviewerID     string
	Approve        bool
	Reason         string
}

type processPayload struct {
	VerificationID id.VerificationID `json:"verification_id"`
}

// Service runs the KYC workflow: pending -> processing -> approved or
// rejected, with unresolved requests expiring after ValidityPeriod.
type Service struct {
	store    Store
	docs     DocumentVerifier
	identity IdentityVerifier
	aml      AMLScreener
	queue    jobs.Enqueuer
	auditor  audit.Emitter
	evidence ArtifactRecorder
	hasher   *privacy.Hasher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	now      func() time.Time
	timeout  time.Duration
	locks    *keyedMutex
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

// WithArtifactRecorder records an age_verification artifact for every
// approved request.
func WithArtifactRecorder(r ArtifactRecorder) Option {
	return func(s *Service) {
		s.evidence = r
	}
}

// WithHasher adds keyed digests of the national ID and document URLs to the
// initiation audit event.
func WithHasher(h *privacy.Hasher) Option {
	return func(s *Service) {
		s.hasher = h
	}
}

// WithTimeout bounds the combined document, identity and AML checks. Default 5s.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(store Store, docs DocumentVerifier, identity IdentityVerifier, aml AMLScreener, queue jobs.Enqueuer, opts ...Option) (*Service, error) {
	switch {
	case store == nil:
		return nil, errors.New("kyc store is required")
	case docs == nil:
		return nil, errors.New("document verifier is required")
	case identity == nil:
		return nil, errors.New("identity verifier is required")
	case aml == nil:
		return nil, errors.New("aml screener is required")
	case queue == nil:
		return nil, errors.New("job queue is required")
	}
	s := &Service{
		store:    store,
		docs:     docs,
		identity: identity,
		aml:      aml,
		queue:    queue,
		logger:   slog.Default(),
		tracer:   otel.Tracer("warden/kyc"),
		now:      time.Now,
		timeout:  defaultTimeout,
		locks:    newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Initiate validates and stores a new request, then queues it for processing.
func (s *Service) Initiate(ctx context.Context, req InitiateRequest) (*Verification, error) {
	if req.UserID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if !req.Type.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "type must be one of basic, enhanced, business")
	}
	if len(req.Documents) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "No documents provided")
	}
	for i, d := range req.Documents {
		if !d.Type.IsValid() {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("documents[%d]: unsupported document type %q", i, d.Type))
		}
		if strings.TrimSpace(d.URL) == "" {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("documents[%d]: url is required", i))
		}
	}

	if _, err := s.store.ActiveForUser(ctx, req.UserID); err == nil {
		return nil, activeRequestError()
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing verification requests")
	}

	if !hasGovernmentID(req.Documents) {
		return nil, dErrors.New(dErrors.CodeValidation, "A government-issued ID (passport, national_id or drivers_license) is required")
	}
	if strings.TrimSpace(req.PersonalInfo.FirstName) == "" || strings.TrimSpace(req.PersonalInfo.LastName) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "personal_info.first_name and personal_info.last_name are required")
	}

	now := s.now()
	v := &Verification{
		ID:                id.NewVerificationID(),
		UserID:            req.UserID,
		Type:              req.Type,
		Status:            StatusPending,
		Documents:         make([]Document, len(req.Documents)),
		PersonalInfo:      req.PersonalInfo,
		VerificationLevel: LevelNone,
		SubmittedAt:       now,
		ExpiresAt:         now.Add(ValidityPeriod),
	}
	for i, d := range req.Documents {
		if d.UploadedAt.IsZero() {
			d.UploadedAt = now
		}
		d.Verified = false
		v.Documents[i] = d
	}

	if err := s.store.Create(ctx, v); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, activeRequestError()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verification request")
	}
	s.metrics.IncInitiated(string(v.Type))

	if _, err := s.enqueueProcessing(ctx, v.ID); err != nil {
		// The request stays pending; the scheduled requeue picks it up.
		s.logger.ErrorContext(ctx, "failed to queue verification processing",
			"verification_id", v.ID,
			"error", err,
		)
	}

	s.logger.InfoContext(ctx, "kyc verification initiated",
		"verification_id", v.ID,
		"user_id", v.UserID,
		"type", v.Type,
		"documents", len(v.Documents),
	)
	audit.EmitLogged(ctx, s.auditor, s.logger, audit.Event{
		Action:    string(audit.EventKYCInitiated),
		UserID:    v.UserID,
		Subject:   v.ID.String(),
		RequestID: requestcontext.RequestID(ctx),
		Metadata:  s.initiationMetadata(v),
	})
	return v, nil
}

// Process scores a pending request and applies the automated decision. It is
// idempotent: decided requests and requests awaiting review are returned
// unchanged.
func (s *Service) Process(ctx context.Context, verificationID id.VerificationID) (*Verification, error) {
	unlock := s.locks.Lock(verificationID.String())
	defer unlock()

	ctx, span := s.tracer.Start(ctx, "kyc.Process", trace.WithAttributes(
		attribute.String("kyc.verification_id", verificationID.String()),
	))
	defer span.End()

	v, err := s.Get(ctx, verificationID)
	if err != nil {
		return nil, err
	}
	if !v.Status.Active() || v.AwaitingReview() {
		return v, nil
	}
	now := s.now()
	if v.ExpiredAt(now) {
		return v, s.expire(ctx, v, now)
	}

	if v.Status == StatusPending {
		next := *v
		next.Status = StatusProcessing
		if err := s.store.Transition(ctx, &next, StatusPending, nil); err != nil {
			return nil, s.transitionError(err)
		}
		v = &next
	}

	start := time.Now()
	docResult, identityScore, checks, err := s.runChecks(ctx, v)
	s.metrics.ObserveProcessing(time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "verification checks failed")
		s.logger.WarnContext(ctx, "kyc checks failed",
			"verification_id", v.ID,
			"category", provider.CategoryOf(err),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification checks unavailable")
	}

	next := *v
	next.Documents = append([]Document(nil), v.Documents...)
	for i := range next.Documents {
		if i < len(docResult.Verified) {
			next.Documents[i].Verified = docResult.Verified[i]
		}
	}
	checks.Completed = true
	next.AMLChecks = checks
	next.RiskScore = Score(docResult.Confidence, identityScore, checks.RiskLevel)
	reviewedAt := s.now()
	next.ReviewedAt = &reviewedAt
	next.ReviewedBy = systemReviewer

	outcome := Decide(next.RiskScore, checks.RiskLevel)
	var grant *LevelGrant
	switch outcome {
	case OutcomeApprove:
		next.Status = StatusApproved
		next.VerificationLevel = LevelFor(next.Type)
		grant = &LevelGrant{UserID: next.UserID, Level: next.VerificationLevel, VerificationID: next.ID, GrantedAt: reviewedAt}
	case OutcomeReject:
		next.Status = StatusRejected
		next.RejectionReason = rejectionReason(next.RiskScore, checks.RiskLevel)
	}

	if err := s.store.Transition(ctx, &next, StatusProcessing, grant); err != nil {
		return nil, s.transitionError(err)
	}

	span.SetAttributes(
		attribute.String("kyc.outcome", string(outcome)),
		attribute.Int("kyc.risk_score", next.RiskScore),
	)
	s.metrics.IncDecision(string(outcome), systemReviewer)
	s.announce(ctx, &next, outcome, systemReviewer)
	if outcome == OutcomeApprove {
		s.recordAgeVerification(ctx, &next)
	}
	return &next, nil
}

// Review records a reviewer's decision on an unresolved request.
func (s *Service) Review(ctx context.Context, req ReviewRequest) (*Verification, error) {
	if strings.TrimSpace(req.ReviewerID) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "reviewer_id is required")
	}
	if !req.Approve && strings.TrimSpace(req.Reason) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "reason is required when rejecting")
	}

	unlock := s.locks.Lock(req.VerificationID.String())
	defer unlock()

	v, err := s.Get(ctx, req.VerificationID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !v.Status.Active() {
		return nil, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("verification is already %s", v.Status))
	}
	if v.ExpiredAt(now) {
		if err := s.expire(ctx, v, now); err != nil {
			return nil, err
		}
		return nil, dErrors.New(dErrors.CodeConflict, "verification has expired")
	}

	next := *v
	next.ReviewedAt = &now
	next.ReviewedBy = req.ReviewerID
	outcome := OutcomeReject
	var grant *LevelGrant
	if req.Approve {
		outcome = OutcomeApprove
		next.Status = StatusApproved
		next.VerificationLevel = LevelFor(next.Type)
		next.RejectionReason = ""
		grant = &LevelGrant{UserID: next.UserID, Level: next.VerificationLevel, VerificationID: next.ID, GrantedAt: now}
	} else {
		next.Status = StatusRejected
		next.RejectionReason = req.Reason
	}

	if err := s.store.Transition(ctx, &next, v.Status, grant); err != nil {
		return nil, s.transitionError(err)
	}
	s.metrics.IncDecision(string(outcome), "reviewer")
	s.announce(ctx, &next, outcome, req.ReviewerID)
	if outcome == OutcomeApprove {
		s.recordAgeVerification(ctx, &next)
	}
	return &next, nil
}

// ExpireStale expires every unresolved request past its window and returns
// how many it expired.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	now := s.now()
	stale, err := s.store.ListExpired(ctx, now, defaultExpiryBatch)
	if err != nil {
		return 0, fmt.Errorf("list expired verifications: %w", err)
	}
	expired := 0
	for _, v := range stale {
		unlock := s.locks.Lock(v.ID.String())
		err := s.expire(ctx, v, now)
		unlock()
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeConflict) {
				continue
			}
			return expired, err
		}
		expired++
	}
	s.metrics.AddExpired(expired)
	if expired > 0 {
		s.logger.InfoContext(ctx, "expired stale kyc requests", "count", expired)
	}
	return expired, nil
}

// RequeueStalled queues processing for requests that have waited on
// automated checks longer than stallAfter. That covers jobs lost between
// Create and Enqueue, and requests left in processing by a crashed worker.
// The job dedupe key makes repeated runs harmless while a job is still live.
func (s *Service) RequeueStalled(ctx context.Context, stallAfter time.Duration) (int, error) {
	stalled, err := s.store.ListStalled(ctx, s.now().Add(-stallAfter), defaultExpiryBatch)
	if err != nil {
		return 0, fmt.Errorf("list stalled verifications: %w", err)
	}
	queued := 0
	for _, v := range stalled {
		added, err := s.enqueueProcessing(ctx, v.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to requeue verification", "verification_id", v.ID, "error", err)
			continue
		}
		if added {
			queued++
		}
	}
	return queued, nil
}

// CurrentLevel returns the verification level a user holds.
func (s *Service) CurrentLevel(ctx context.Context, userID id.UserID) (Level, error) {
	grant, err := s.store.Level(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return LevelNone, nil
	}
	if err != nil {
		return LevelNone, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification level unavailable")
	}
	return grant.Level, nil
}

// Get returns a request by ID.
func (s *Service) Get(ctx context.Context, verificationID id.VerificationID) (*Verification, error) {
	v, err := s.store.Get(ctx, verificationID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "verification not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification")
	}
	return v, nil
}

// ProcessHandler runs queued processing jobs. When a job is buried the
// request is handed to manual review instead of staying in processing.
func (s *Service) ProcessHandler() jobs.DeadHandler {
	return processHandler{svc: s}
}

type processHandler struct {
	svc *Service
}

func (h processHandler) Handle(ctx context.Context, job jobs.Job) error {
	var p processPayload
	if err := job.Decode(&p); err != nil {
		return err
	}
	_, err := h.svc.Process(ctx, p.VerificationID)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return jobs.Permanent(err)
	}
	return err
}

func (h processHandler) OnDead(ctx context.Context, job jobs.Job, cause error) {
	var p processPayload
	if err := job.Decode(&p); err != nil {
		return
	}
	if _, err := h.svc.Escalate(ctx, p.VerificationID, cause); err != nil {
		h.svc.logger.ErrorContext(ctx, "failed to escalate verification to manual review",
			"verification_id", p.VerificationID,
			"job_id", job.ID,
			"error", err,
		)
	}
}

// Escalate moves a request whose automated checks could not complete to
// manual review. The user is told a reviewer will decide. Decided requests
// and requests already awaiting review are returned unchanged.
func (s *Service) Escalate(ctx context.Context, verificationID id.VerificationID, cause error) (*Verification, error) {
	unlock := s.locks.Lock(verificationID.String())
	defer unlock()

	v, err := s.Get(ctx, verificationID)
	if err != nil {
		return nil, err
	}
	if !v.Status.Active() || v.AwaitingReview() {
		return v, nil
	}
	now := s.now()
	if v.ExpiredAt(now) {
		return v, s.expire(ctx, v, now)
	}

	next := *v
	next.Status = StatusProcessing
	next.ReviewedAt = &now
	next.ReviewedBy = systemReviewer
	if err := s.store.Transition(ctx, &next, v.Status, nil); err != nil {
		return nil, s.transitionError(err)
	}
	s.logger.WarnContext(ctx, "kyc checks exhausted, escalated to manual review",
		"verification_id", next.ID,
		"error", cause,
	)
	s.metrics.IncDecision(string(OutcomeReview), systemReviewer)
	s.announce(ctx, &next, OutcomeReview, systemReviewer)
	return &next, nil
}

// runChecks runs the three collaborators in parallel under one deadline.
func (s *Service) runChecks(ctx context.Context, v *Verification) (DocumentResult, float64, AMLChecks, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		docResult DocumentResult
		identity  float64
		checks    AMLChecks
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docResult, err = s.docs.VerifyDocuments(gctx, v.Documents)
		return provider.Classify("documents", err)
	})
	g.Go(func() error {
		var err error
		identity, err = s.identity.VerifyIdentity(gctx, v.PersonalInfo, v.Documents)
		return provider.Classify("identity", err)
	})
	g.Go(func() error {
		var err error
		checks, err = s.aml.Screen(gctx, v.PersonalInfo)
		if err == nil && !checks.RiskLevel.IsValid() {
			return provider.NewError(provider.CategoryBadData, "aml", "unknown risk level "+string(checks.RiskLevel), nil)
		}
		return provider.Classify("aml", err)
	})
	if err := g.Wait(); err != nil {
		return DocumentResult{}, 0, AMLChecks{}, err
	}
	return docResult, identity, checks, nil
}

func (s *Service) expire(ctx context.Context, v *Verification, now time.Time) error {
	next := *v
	next.Status = StatusExpired
	if err := s.store.Transition(ctx, &next, v.Status, nil); err != nil {
		return s.transitionError(err)
	}
	*v = next
	s.logger.InfoContext(ctx, "kyc verification expired", "verification_id", v.ID, "user_id", v.UserID)
	audit.EmitLogged(ctx, s.auditor, s.logger, audit.Event{
		Action:  string(audit.EventKYCExpired),
		UserID:  v.UserID,
		Subject: v.ID.String(),
	})
	s.notify(ctx, v, notify.TemplateKYCExpired, nil)
	return nil
}

func (s *Service) recordAgeVerification(ctx context.Context, v *Verification) {
	if s.evidence == nil {
		return
	}
	if err := s.evidence.RecordArtifact(ctx, v.UserID, compliance.ArtifactAgeVerification); err != nil {
		s.logger.WarnContext(ctx, "failed to record age verification artifact",
			"verification_id", v.ID,
			"user_id", v.UserID,
			"error", err,
		)
	}
}

// announce emits the audit event and user notification for a decision.
func (s *Service) announce(ctx context.Context, v *Verification, outcome Outcome, reviewer string) {
	action, template := audit.EventKYCManualReview, notify.TemplateKYCManualReview
	switch outcome {
	case OutcomeApprove:
		action, template = audit.EventKYCApproved, notify.TemplateKYCApproved
	case OutcomeReject:
		action, template = audit.EventKYCRejected, notify.TemplateKYCRejected
	}

	s.logger.InfoContext(ctx, "kyc decision",
		"verification_id", v.ID,
		"user_id", v.UserID,
		"outcome", outcome,
		"risk_score", v.RiskScore,
		"reviewed_by", reviewer,
	)
	event := audit.Event{
		Action:    string(action),
		UserID:    v.UserID,
		Subject:   v.ID.String(),
		Decision:  string(outcome),
		Reason:    v.RejectionReason,
		RequestID: requestcontext.RequestID(ctx),
		Metadata: map[string]string{
			"risk_score": fmt.Sprint(v.RiskScore),
			"aml_risk":   string(v.AMLChecks.RiskLevel),
		},
	}
	if reviewer != systemReviewer {
		event.ActorID = reviewer
	}
	audit.EmitLogged(ctx, s.auditor, s.logger, event)

	data := map[string]string{"verification_id": v.ID.String()}
	if v.RejectionReason != "" {
		data["reason"] = v.RejectionReason
	}
	s.notify(ctx, v, template, data)
}

func (s *Service) notify(ctx context.Context, v *Verification, template string, data map[string]string) {
	n := notify.Notification{
		UserID:   v.UserID,
		Email:    v.PersonalInfo.Email,
		Template: template,
		Data:     data,
	}
	key := "notify:" + v.ID.String() + ":" + template
	if err := notify.Enqueue(ctx, s.queue, n, key); err != nil && !errors.Is(err, sentinel.ErrConflict) {
		s.logger.WarnContext(ctx, "failed to queue notification",
			"verification_id", v.ID,
			"template", template,
			"error", err,
		)
	}
}

// enqueueProcessing reports false when a job for vid was already queued.
func (s *Service) enqueueProcessing(ctx context.Context, vid id.VerificationID) (bool, error) {
	job, err := jobs.New(ProcessJobKind, processPayload{VerificationID: vid},
		jobs.WithDedupeKey(ProcessJobKind+":"+vid.String()),
	)
	if err != nil {
		return false, err
	}
	err = s.queue.Enqueue(ctx, job)
	if errors.Is(err, sentinel.ErrConflict) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) transitionError(err error) error {
	if errors.Is(err, sentinel.ErrInvalidState) {
		return dErrors.New(dErrors.CodeConflict, "verification changed state concurrently")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update verification")
}

func (s *Service) initiationMetadata(v *Verification) map[string]string {
	meta := map[string]string{"type": string(v.Type)}
	if s.hasher == nil {
		return meta
	}
	if h := s.hasher.Hash(v.PersonalInfo.NationalID); h != "" {
		meta["national_id_hash"] = h
	}
	urls := make([]string, 0, len(v.Documents))
	for _, d := range v.Documents {
		urls = append(urls, s.hasher.Hash(d.URL))
	}
	meta["document_hashes"] = strings.Join(urls, ",")
	return meta
}

func activeRequestError() error {
	return dErrors.New(dErrors.CodeConflict, "User already has an active verification request")
}

func hasGovernmentID(docs []Document) bool {
	for _, d := range docs {
		if d.Type.GovernmentID() {
			return true
		}
	}
	return false
}

func rejectionReason(score int, aml AMLRisk) string {
	if aml == AMLCritical {
		return "AML screening returned critical risk"
	}
	return fmt.Sprintf("risk score %d is below the acceptance threshold", score)
}
