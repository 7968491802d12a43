package kyc_test

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,DocumentVerifier,IdentityVerifier,AMLScreener

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"warden/internal/compliance"
	"warden/internal/kyc"
	"warden/internal/kyc/mocks"
	"warden/internal/kyc/store"
	"warden/internal/notify"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/audit"
	"warden/pkg/platform/jobs"
	jobsmemory "warden/pkg/platform/jobs/memory"
	"warden/pkg/platform/privacy"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []audit.Event
}

func (e *recordingEmitter) Emit(_ context.Context, event audit.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *recordingEmitter) actions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Action)
	}
	return out
}

type recordingArtifacts struct {
	mu      sync.Mutex
	records map[id.UserID][]compliance.ArtifactKind
}

func (r *recordingArtifacts) RecordArtifact(_ context.Context, userID id.UserID, kind compliance.ArtifactKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.records == nil {
		r.records = make(map[id.UserID][]compliance.ArtifactKind)
	}
	r.records[userID] = append(r.records[userID], kind)
	return nil
}

func (r *recordingArtifacts) kinds(userID id.UserID) []compliance.ArtifactKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[userID]
}

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	ctrl     *gomock.Controller
	docs     *mocks.MockDocumentVerifier
	identity *mocks.MockIdentityVerifier
	aml      *mocks.MockAMLScreener
	store    *store.InMemoryStore
	queue    *jobsmemory.Queue
	emitter  *recordingEmitter
	evidence *recordingArtifacts
	svc      *kyc.Service
	userID   id.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctrl = gomock.NewController(s.T())
	s.docs = mocks.NewMockDocumentVerifier(s.ctrl)
	s.identity = mocks.NewMockIdentityVerifier(s.ctrl)
	s.aml = mocks.NewMockAMLScreener(s.ctrl)
	s.store = store.NewInMemoryStore()
	s.queue = jobsmemory.New()
	s.emitter = &recordingEmitter{}
	s.evidence = &recordingArtifacts{}
	s.userID = id.UserID(uuid.New())

	svc, err := kyc.New(s.store, s.docs, s.identity, s.aml, s.queue,
		kyc.WithClock(func() time.Time { return s.now }),
		kyc.WithAuditor(s.emitter),
		kyc.WithArtifactRecorder(s.evidence),
	)
	s.Require().NoError(err)
	s.svc = svc
}

func (s *ServiceSuite) validRequest() kyc.InitiateRequest {
	return kyc.InitiateRequest{
		UserID: s.userID,
		Type:   kyc.TypeEnhanced,
		PersonalInfo: kyc.PersonalInfo{
			FirstName:   "Ada",
			LastName:    "Lovelace",
			DateOfBirth: "1990-12-10",
			Nationality: "GB",
			Email:       "ada.lovelace@example.com",
		},
		Documents: []kyc.Document{
			{Type: kyc.DocPassport, URL: "https://files.example.com/passport.jpg"},
			{Type: kyc.DocSelfie, URL: "https://files.example.com/selfie.jpg"},
		},
	}
}

func (s *ServiceSuite) initiate() *kyc.Verification {
	v, err := s.svc.Initiate(s.ctx, s.validRequest())
	s.Require().NoError(err)
	return v
}

func (s *ServiceSuite) expectChecks(doc, identity float64, risk kyc.AMLRisk) {
	s.docs.EXPECT().VerifyDocuments(gomock.Any(), gomock.Any()).Return(kyc.DocumentResult{Confidence: doc, Verified: []bool{true, true}}, nil)
	s.identity.EXPECT().VerifyIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Return(identity, nil)
	s.aml.EXPECT().Screen(gomock.Any(), gomock.Any()).Return(kyc.AMLChecks{RiskLevel: risk}, nil)
}

func (s *ServiceSuite) notificationTemplates() []string {
	var out []string
	for _, job := range s.queue.ByKind(notify.JobKind) {
		var n notify.Notification
		s.Require().NoError(json.Unmarshal(job.Payload, &n))
		out = append(out, n.Template)
	}
	return out
}

func (s *ServiceSuite) TestNewRequiresCollaborators() {
	_, err := kyc.New(nil, s.docs, s.identity, s.aml, s.queue)
	s.ErrorContains(err, "store is required")
	_, err = kyc.New(s.store, s.docs, s.identity, s.aml, nil)
	s.ErrorContains(err, "queue is required")
}

func (s *ServiceSuite) TestInitiate() {
	v := s.initiate()

	s.Equal(kyc.StatusPending, v.Status)
	s.Equal(kyc.LevelNone, v.VerificationLevel)
	s.Equal(s.now, v.SubmittedAt)
	s.Equal(s.now.Add(30*24*time.Hour), v.ExpiresAt)
	for _, d := range v.Documents {
		s.False(d.Verified)
		s.Equal(s.now, d.UploadedAt)
	}

	queued := s.queue.ByKind(kyc.ProcessJobKind)
	s.Require().Len(queued, 1)
	s.Equal("kyc.process:"+v.ID.String(), queued[0].DedupeKey)
	s.Equal([]string{string(audit.EventKYCInitiated)}, s.emitter.actions())
}

func (s *ServiceSuite) TestInitiate_Validation() {
	tests := []struct {
		name   string
		mutate func(*kyc.InitiateRequest)
		msg    string
	}{
		{"missing user", func(r *kyc.InitiateRequest) { r.UserID = id.UserID{} }, "user_id is required"},
		{"unknown type", func(r *kyc.InitiateRequest) { r.Type = "premium" }, "type must be one of"},
		{"no documents", func(r *kyc.InitiateRequest) { r.Documents = nil }, "No documents provided"},
		{"unknown document type", func(r *kyc.InitiateRequest) { r.Documents[0].Type = "library_card" }, "unsupported document type"},
		{"missing url", func(r *kyc.InitiateRequest) { r.Documents[0].URL = " " }, "url is required"},
		{"no government id", func(r *kyc.InitiateRequest) {
			r.Documents = []kyc.Document{{Type: kyc.DocUtilityBill, URL: "https://files.example.com/bill.pdf"}}
		}, "government-issued ID"},
		{"missing last name", func(r *kyc.InitiateRequest) { r.PersonalInfo.LastName = "" }, "last_name are required"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := s.validRequest()
			tt.mutate(&req)
			_, err := s.svc.Initiate(s.ctx, req)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Contains(dErrors.MessageOf(err), tt.msg)
		})
	}
	s.Empty(s.queue.ByKind(kyc.ProcessJobKind))
}

func (s *ServiceSuite) TestInitiate_SecondActiveRequestConflicts() {
	s.initiate()

	_, err := s.svc.Initiate(s.ctx, s.validRequest())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Contains(dErrors.MessageOf(err), "active verification request")
}

func (s *ServiceSuite) TestInitiate_AuditCarriesHashedIdentifiers() {
	svc, err := kyc.New(s.store, s.docs, s.identity, s.aml, s.queue,
		kyc.WithClock(func() time.Time { return s.now }),
		kyc.WithAuditor(s.emitter),
		kyc.WithHasher(privacy.NewHasher([]byte("audit-key"))),
	)
	s.Require().NoError(err)

	req := s.validRequest()
	req.PersonalInfo.NationalID = "AB123456C"
	_, err = svc.Initiate(s.ctx, req)
	s.Require().NoError(err)

	s.Require().Len(s.emitter.events, 1)
	meta := s.emitter.events[0].Metadata
	s.Len(meta["national_id_hash"], 64)
	s.NotContains(meta["national_id_hash"], "AB123456C")
	s.Len(strings.Split(meta["document_hashes"], ","), 2)
	s.NotContains(meta["document_hashes"], "files.example.com")
}

func (s *ServiceSuite) TestProcess_Approves() {
	v := s.initiate()
	s.expectChecks(0.95, 0.90, kyc.AMLLow)

	got, err := s.svc.Process(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(kyc.StatusApproved, got.Status)
	s.Equal(95, got.RiskScore)
	s.Equal(kyc.LevelEnhanced, got.VerificationLevel)
	s.Equal("system", got.ReviewedBy)
	s.True(got.AMLChecks.Completed)
	s.True(got.Documents[0].Verified)

	level, err := s.svc.CurrentLevel(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(kyc.LevelEnhanced, level)
	s.Equal([]string{notify.TemplateKYCApproved}, s.notificationTemplates())
	s.Contains(s.emitter.actions(), string(audit.EventKYCApproved))
	s.Equal([]compliance.ArtifactKind{compliance.ArtifactAgeVerification}, s.evidence.kinds(s.userID))

	_, err = s.svc.Initiate(s.ctx, s.validRequest())
	s.NoError(err, "a decided request no longer blocks a new one")
}

func (s *ServiceSuite) TestProcess_RejectsCriticalAML() {
	v := s.initiate()
	s.expectChecks(0.99, 0.99, kyc.AMLCritical)

	got, err := s.svc.Process(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(kyc.StatusRejected, got.Status)
	s.Contains(got.RejectionReason, "critical")

	level, err := s.svc.CurrentLevel(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(kyc.LevelNone, level)
	s.Equal([]string{notify.TemplateKYCRejected}, s.notificationTemplates())
	s.Empty(s.evidence.kinds(s.userID), "rejection earns no age verification")
}

func (s *ServiceSuite) TestProcess_ReviewIsIdempotent() {
	v := s.initiate()
	s.expectChecks(0.95, 0.90, kyc.AMLMedium)

	got, err := s.svc.Process(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(kyc.StatusProcessing, got.Status)
	s.Equal(85, got.RiskScore)
	s.True(got.AwaitingReview())

	again, err := s.svc.Process(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(got.RiskScore, again.RiskScore, "collaborators are not called a second time")
	s.Equal([]string{notify.TemplateKYCManualReview}, s.notificationTemplates())
}

func (s *ServiceSuite) TestProcess_CollaboratorFailureIsRetryable() {
	v := s.initiate()
	s.docs.EXPECT().VerifyDocuments(gomock.Any(), gomock.Any()).Return(kyc.DocumentResult{}, errors.New("ocr backend down"))
	s.identity.EXPECT().VerifyIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Return(0.9, nil)
	s.aml.EXPECT().Screen(gomock.Any(), gomock.Any()).Return(kyc.AMLChecks{RiskLevel: kyc.AMLLow}, nil)

	_, err := s.svc.Process(s.ctx, v.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	stored, err := s.svc.Get(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(kyc.StatusProcessing, stored.Status)
	s.False(stored.AwaitingReview(), "a failed run leaves the request eligible for retry")

	s.expectChecks(0.95, 0.90, kyc.AMLLow)
	got, err := s.svc.Process(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(kyc.StatusApproved, got.Status)
}

func (s *ServiceSuite) TestProcess_ExpiresStaleRequest() {
	v := s.initiate()
	s.now = s.now.Add(kyc.ValidityPeriod)

	got, err := s.svc.Process(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(kyc.StatusExpired, got.Status)
	s.Contains(s.emitter.actions(), string(audit.EventKYCExpired))
}

func (s *ServiceSuite) TestProcess_UnknownVerification() {
	_, err := s.svc.Process(s.ctx, id.NewVerificationID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestReview() {
	s.Run("approves a request awaiting review", func() {
		s.SetupTest()
		v := s.initiate()
		s.expectChecks(0.95, 0.90, kyc.AMLMedium)
		_, err := s.svc.Process(s.ctx, v.ID)
		s.Require().NoError(err)

		got, err := s.svc.Review(s.ctx, kyc.ReviewRequest{VerificationID: v.ID, ReviewerID: "officer-7", Approve: true})
		s.Require().NoError(err)
		s.Equal(kyc.StatusApproved, got.Status)
		s.Equal("officer-7", got.ReviewedBy)
		s.Equal([]compliance.ArtifactKind{compliance.ArtifactAgeVerification}, s.evidence.kinds(s.userID))

		level, err := s.svc.CurrentLevel(s.ctx, s.userID)
		s.Require().NoError(err)
		s.Equal(kyc.LevelEnhanced, level)
	})
	s.Run("rejection requires a reason", func() {
		s.SetupTest()
		v := s.initiate()
		_, err := s.svc.Review(s.ctx, kyc.ReviewRequest{VerificationID: v.ID, ReviewerID: "officer-7"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
	s.Run("decided requests cannot be reviewed", func() {
		s.SetupTest()
		v := s.initiate()
		_, err := s.svc.Review(s.ctx, kyc.ReviewRequest{VerificationID: v.ID, ReviewerID: "officer-7", Reason: "blurry document"})
		s.Require().NoError(err)

		_, err = s.svc.Review(s.ctx, kyc.ReviewRequest{VerificationID: v.ID, ReviewerID: "officer-8", Approve: true})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
	s.Run("expired requests cannot be reviewed", func() {
		s.SetupTest()
		v := s.initiate()
		s.now = s.now.Add(kyc.ValidityPeriod + time.Minute)
		_, err := s.svc.Review(s.ctx, kyc.ReviewRequest{VerificationID: v.ID, ReviewerID: "officer-7", Approve: true})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		stored, err := s.svc.Get(s.ctx, v.ID)
		s.Require().NoError(err)
		s.Equal(kyc.StatusExpired, stored.Status)
	})
}

func (s *ServiceSuite) TestExpireStale() {
	s.initiate()
	other := s.validRequest()
	other.UserID = id.UserID(uuid.New())
	_, err := s.svc.Initiate(s.ctx, other)
	s.Require().NoError(err)

	n, err := s.svc.ExpireStale(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)

	s.now = s.now.Add(kyc.ValidityPeriod)
	n, err = s.svc.ExpireStale(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)

	_, err = s.svc.Initiate(s.ctx, s.validRequest())
	s.NoError(err, "an expired request frees the user to apply again")
}

func (s *ServiceSuite) TestRequeueStalled() {
	v := s.initiate()
	s.now = s.now.Add(time.Hour)

	n, err := s.svc.RequeueStalled(s.ctx, 10*time.Minute)
	s.Require().NoError(err)
	s.Zero(n, "the original job is still queued")
	s.Len(s.queue.ByKind(kyc.ProcessJobKind), 1)
	s.Equal(kyc.ProcessJobKind+":"+v.ID.String(), s.queue.ByKind(kyc.ProcessJobKind)[0].DedupeKey)
}

func (s *ServiceSuite) TestProcessHandler() {
	handler := s.svc.ProcessHandler()

	s.Run("unknown verification is permanent", func() {
		job, err := jobs.New(kyc.ProcessJobKind, map[string]string{"verification_id": uuid.NewString()})
		s.Require().NoError(err)
		err = handler.Handle(s.ctx, job)
		s.True(jobs.IsPermanent(err))
	})
	s.Run("queued job processes the request", func() {
		v := s.initiate()
		s.expectChecks(0.95, 0.90, kyc.AMLLow)
		job := s.queue.ByKind(kyc.ProcessJobKind)[0]

		s.Require().NoError(handler.Handle(s.ctx, job))
		stored, err := s.svc.Get(s.ctx, v.ID)
		s.Require().NoError(err)
		s.Equal(kyc.StatusApproved, stored.Status)
	})
}

func (s *ServiceSuite) TestExhaustedProcessingEscalatesToManualReview() {
	v := s.initiate()
	s.docs.EXPECT().VerifyDocuments(gomock.Any(), gomock.Any()).Return(kyc.DocumentResult{Confidence: 0.95, Verified: []bool{true, true}}, nil).AnyTimes()
	s.identity.EXPECT().VerifyIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Return(0.9, nil).AnyTimes()
	s.aml.EXPECT().Screen(gomock.Any(), gomock.Any()).Return(kyc.AMLChecks{}, errors.New("sanctions list unreachable")).AnyTimes()

	runner := jobs.NewRunner(s.queue,
		jobs.WithClock(func() time.Time { return s.now }),
		jobs.WithRetryBackoff(time.Second, time.Minute),
	)
	runner.Register(kyc.ProcessJobKind, s.svc.ProcessHandler())
	runner.Register(notify.JobKind, jobs.HandlerFunc(func(context.Context, jobs.Job) error { return nil }))

	for i := 0; i < 20; i++ {
		s.now = s.now.Add(10 * time.Minute)
		_, err := runner.RunOnce(s.ctx)
		s.Require().NoError(err)
	}

	processJobs := s.queue.ByKind(kyc.ProcessJobKind)
	s.Require().Len(processJobs, 1)
	s.Equal(jobs.StatusDead, processJobs[0].Status)
	s.Equal(jobs.DefaultMaxAttempts, processJobs[0].Attempts)

	stored, err := s.svc.Get(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(kyc.StatusProcessing, stored.Status)
	s.True(stored.AwaitingReview())
	s.Require().NotNil(stored.ReviewedAt)
	s.Equal("system", stored.ReviewedBy)
	s.Contains(s.emitter.actions(), string(audit.EventKYCManualReview))
	s.Contains(s.notificationTemplates(), notify.TemplateKYCManualReview)

	n, err := s.svc.RequeueStalled(s.ctx, 10*time.Minute)
	s.Require().NoError(err)
	s.Zero(n, "an escalated request waits for a reviewer, not the queue")

	got, err := s.svc.Review(s.ctx, kyc.ReviewRequest{VerificationID: v.ID, ReviewerID: "officer-7", Approve: true})
	s.Require().NoError(err)
	s.Equal(kyc.StatusApproved, got.Status)
}

func (s *ServiceSuite) TestEscalate_LeavesDecidedRequestsAlone() {
	v := s.initiate()
	s.expectChecks(0.95, 0.90, kyc.AMLLow)
	_, err := s.svc.Process(s.ctx, v.ID)
	s.Require().NoError(err)

	got, err := s.svc.Escalate(s.ctx, v.ID, errors.New("late failure"))
	s.Require().NoError(err)
	s.Equal(kyc.StatusApproved, got.Status)
	s.NotContains(s.emitter.actions(), string(audit.EventKYCManualReview))
}

func (s *ServiceSuite) TestRequeueStalled_ProcessingWithoutLiveJob() {
	v := s.initiate()
	job := s.queue.ByKind(kyc.ProcessJobKind)[0]

	// a worker moved the request to processing and its job finished without
	// a decision being stored
	stored, err := s.svc.Get(s.ctx, v.ID)
	s.Require().NoError(err)
	running := *stored
	running.Status = kyc.StatusProcessing
	s.Require().NoError(s.store.Transition(s.ctx, &running, kyc.StatusPending, nil))
	s.Require().NoError(s.queue.Complete(s.ctx, job.ID))

	s.now = s.now.Add(time.Hour)
	n, err := s.svc.RequeueStalled(s.ctx, 10*time.Minute)
	s.Require().NoError(err)
	s.Equal(1, n)

	requeued := s.queue.ByKind(kyc.ProcessJobKind)
	s.Require().Len(requeued, 2)
	s.Equal(jobs.StatusQueued, requeued[1].Status)

	n, err = s.svc.RequeueStalled(s.ctx, 10*time.Minute)
	s.Require().NoError(err)
	s.Zero(n, "the new job holds the dedupe key")
}

func (s *ServiceSuite) TestCurrentLevel_StoreFailure() {
	st := mocks.NewMockStore(s.ctrl)
	svc, err := kyc.New(st, s.docs, s.identity, s.aml, s.queue)
	s.Require().NoError(err)
	st.EXPECT().Level(gomock.Any(), s.userID).Return(kyc.LevelGrant{}, errors.New("connection refused"))

	_, err = svc.CurrentLevel(s.ctx, s.userID)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}
