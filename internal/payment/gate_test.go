package payment_test

//go:generate mockgen -source=gate.go -destination=mocks/mocks.go -package=mocks LevelSource,RiskScorer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"warden/internal/compliance"
	compliancestore "warden/internal/compliance/store"
	"warden/internal/fraud"
	"warden/internal/kyc"
	"warden/internal/notify"
	"warden/internal/payment"
	"warden/internal/payment/mocks"
	"warden/internal/payment/processors"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/audit"
	jobsmemory "warden/pkg/platform/jobs/memory"
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

type GateSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	ctrl    *gomock.Controller
	levels  *mocks.MockLevelSource
	scorer  *mocks.MockRiskScorer
	queue   *jobsmemory.Queue
	emitter *recordingEmitter
	gate    *payment.Gate
	userID  id.UserID
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctrl = gomock.NewController(s.T())
	s.levels = mocks.NewMockLevelSource(s.ctrl)
	s.scorer = mocks.NewMockRiskScorer(s.ctrl)
	s.queue = jobsmemory.New()
	s.emitter = &recordingEmitter{}
	s.userID = id.UserID(uuid.New())

	reg := payment.NewRegistry()
	s.Require().NoError(reg.Register(processors.NewSandbox("eu-card", "DE", "FR")))
	s.Require().NoError(reg.Register(processors.NewSandbox("global-card")))

	gate, err := payment.NewGate(s.levels, s.scorer, s.queue,
		payment.WithClock(func() time.Time { return s.now }),
		payment.WithAuditor(s.emitter),
		payment.WithProcessors(reg),
	)
	s.Require().NoError(err)
	s.gate = gate
}

func (s *GateSuite) expectLevel(level kyc.Level) {
	s.levels.EXPECT().CurrentLevel(gomock.Any(), s.userID).Return(level, nil)
}

func (s *GateSuite) expectFraud(res fraud.Result) {
	s.scorer.EXPECT().Score(gomock.Any(), gomock.Any()).Return(res, nil)
}

func (s *GateSuite) request(amount int64, t payment.Type) payment.Request {
	return payment.Request{
		UserID:      s.userID,
		AmountCents: amount,
		Type:        t,
		Metadata:    map[string]string{payment.MetaCountry: "de"},
	}
}

func (s *GateSuite) TestNewGateRequiresCollaborators() {
	_, err := payment.NewGate(nil, s.scorer, s.queue)
	s.ErrorContains(err, "level source is required")
	_, err = payment.NewGate(s.levels, nil, s.queue)
	s.ErrorContains(err, "fraud scorer is required")
	_, err = payment.NewGate(s.levels, s.scorer, nil)
	s.ErrorContains(err, "job queue is required")
}

func (s *GateSuite) TestCheck_Validation() {
	tests := []payment.Request{
		{AmountCents: 100, Type: payment.TypePurchase},
		{UserID: s.userID, AmountCents: 0, Type: payment.TypePurchase},
		{UserID: s.userID, AmountCents: 100, Type: "refund"},
	}
	for _, req := range tests {
		_, err := s.gate.Check(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	}
}

func (s *GateSuite) TestCheck_UnverifiedUserBlockedAtBasicThreshold() {
	s.expectLevel(kyc.LevelNone)
	s.expectFraud(fraud.Result{RecommendedAction: fraud.RecommendApprove})

	d, err := s.gate.Check(s.ctx, s.request(50_000, payment.TypePurchase))
	s.Require().NoError(err)
	s.Equal(payment.StatusBlocked, d.Status)
	s.False(d.Approved)
	s.Equal(kyc.LevelBasic, d.VerificationRequired)
	s.Equal(int64(49_999), d.MaxAllowedCents)
	s.Equal([]string{string(audit.EventPaymentBlocked)}, s.emitter.actions())
}

func (s *GateSuite) TestCheck_ApprovedRecordsTransactionAndRoutes() {
	s.expectLevel(kyc.LevelBasic)
	s.expectFraud(fraud.Result{RecommendedAction: fraud.RecommendApprove})
	s.scorer.EXPECT().RecordTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx fraud.Transaction) error {
		s.Equal(int64(20_000), tx.AmountCents)
		s.Equal("DE", tx.CountryCode)
		s.Equal(s.now, tx.OccurredAt)
		return nil
	})

	d, err := s.gate.Check(s.ctx, s.request(20_000, payment.TypePurchase))
	s.Require().NoError(err)
	s.True(d.Approved)
	s.Equal("eu-card", d.Processor)
	s.False(d.AMLReportRequired)
	s.Empty(s.queue.ByKind(payment.AMLReportJobKind))
	s.Empty(s.emitter.actions())
}

func (s *GateSuite) TestCheck_QueuesOneAMLReportAtThreshold() {
	s.expectLevel(kyc.LevelBusiness)
	s.expectFraud(fraud.Result{RecommendedAction: fraud.RecommendApprove, RiskScore: 10, Flags: []fraud.Flag{}})
	s.scorer.EXPECT().RecordTransaction(gomock.Any(), gomock.Any()).Return(nil)

	d, err := s.gate.Check(s.ctx, s.request(1_000_000, payment.TypePurchase))
	s.Require().NoError(err)
	s.True(d.Approved)
	s.True(d.AMLReportQueued)

	reports := s.queue.ByKind(payment.AMLReportJobKind)
	s.Require().Len(reports, 1)
	s.Equal(payment.AMLReportJobKind+":"+d.ID.String(), reports[0].DedupeKey)

	var report payment.AMLReport
	s.Require().NoError(json.Unmarshal(reports[0].Payload, &report))
	s.Equal(s.userID, report.UserID)
	s.Equal(int64(1_000_000), report.AmountCents)
	s.Equal("USD", report.Currency)
	s.Contains(s.emitter.actions(), string(audit.EventAMLReportQueued))
}

func (s *GateSuite) TestCheck_FraudRejectBlocksVerifiedUser() {
	s.expectLevel(kyc.LevelBusiness)
	s.expectFraud(fraud.Result{RecommendedAction: fraud.RecommendReject, RiskScore: 90})

	d, err := s.gate.Check(s.ctx, s.request(1000, payment.TypePurchase))
	s.Require().NoError(err)
	s.Equal(payment.StatusBlocked, d.Status)
	s.Empty(d.VerificationRequired)
	s.Contains(d.Reason, "fraud")
}

func (s *GateSuite) TestCheck_FreezeNotifiesUser() {
	s.expectLevel(kyc.LevelBusiness)
	s.expectFraud(fraud.Result{RecommendedAction: fraud.RecommendFreeze, RiskScore: 100, Reasons: []string{"velocity"}})

	d, err := s.gate.Check(s.ctx, s.request(1000, payment.TypePurchase))
	s.Require().NoError(err)
	s.Equal(payment.StatusBlocked, d.Status)
	s.Contains(s.emitter.actions(), string(audit.EventAccountFrozen))

	queued := s.queue.ByKind(notify.JobKind)
	s.Require().Len(queued, 1)
	var n notify.Notification
	s.Require().NoError(json.Unmarshal(queued[0].Payload, &n))
	s.Equal(notify.TemplateAccountFrozen, n.Template)
}

func (s *GateSuite) TestCheck_ScorerFailureFailsClosed() {
	s.expectLevel(kyc.LevelBusiness)
	s.scorer.EXPECT().Score(gomock.Any(), gomock.Any()).Return(fraud.Result{}, errors.New("history unavailable"))

	d, err := s.gate.Check(s.ctx, s.request(1000, payment.TypePurchase))
	s.Require().NoError(err)
	s.Equal(payment.StatusReview, d.Status)
	s.True(d.Degraded)
	s.Nil(d.Fraud)
	s.Equal([]string{string(audit.EventPaymentReview)}, s.emitter.actions())
}

func (s *GateSuite) TestCheck_LevelFailureFailsClosed() {
	s.levels.EXPECT().CurrentLevel(gomock.Any(), s.userID).Return(kyc.LevelNone, errors.New("db down"))
	s.expectFraud(fraud.Result{RecommendedAction: fraud.RecommendApprove})

	d, err := s.gate.Check(s.ctx, s.request(1000, payment.TypePayout))
	s.Require().NoError(err)
	s.Equal(payment.StatusReview, d.Status)
	s.True(d.Degraded)
}

type failingMethodPolicy struct{}

func (failingMethodPolicy) IsPaymentRestricted(context.Context, string, string) (bool, error) {
	return false, errors.New("rules unavailable")
}

func (s *GateSuite) TestCheck_CountryPaymentMethodRestriction() {
	rules, err := compliance.NewService(
		compliancestore.NewInMemoryRules(compliance.DefaultRules()),
		compliancestore.NewInMemoryArtifacts(),
	)
	s.Require().NoError(err)
	gate, err := payment.NewGate(s.levels, s.scorer, s.queue,
		payment.WithClock(func() time.Time { return s.now }),
		payment.WithAuditor(s.emitter),
		payment.WithMethodPolicy(rules),
	)
	s.Require().NoError(err)

	s.Run("crypto is blocked in DE", func() {
		s.expectLevel(kyc.LevelBusiness)
		s.expectFraud(fraud.Result{RecommendedAction: fraud.RecommendApprove})
		req := s.request(1000, payment.TypePurchase)
		req.Metadata[payment.MetaPaymentMethod] = " Crypto "

		d, err := gate.Check(s.ctx, req)
		s.Require().NoError(err)
		s.Equal(payment.StatusBlocked, d.Status)
		s.Equal("Payment method crypto is not permitted in DE", d.Reason)
		s.Contains(s.emitter.actions(), string(audit.EventPaymentBlocked))
	})
	s.Run("card is allowed in DE", func() {
		s.expectLevel(kyc.LevelBusiness)
		s.expectFraud(fraud.Result{RecommendedAction: fraud.RecommendApprove})
		s.scorer.EXPECT().RecordTransaction(gomock.Any(), gomock.Any()).Return(nil)
		req := s.request(1000, payment.TypePurchase)
		req.Metadata[payment.MetaPaymentMethod] = "card"

		d, err := gate.Check(s.ctx, req)
		s.Require().NoError(err)
		s.True(d.Approved)
	})
	s.Run("policy failure fails closed", func() {
		failing, err := payment.NewGate(s.levels, s.scorer, s.queue, payment.WithMethodPolicy(failingMethodPolicy{}))
		s.Require().NoError(err)
		s.expectLevel(kyc.LevelBusiness)
		s.expectFraud(fraud.Result{RecommendedAction: fraud.RecommendApprove})
		req := s.request(1000, payment.TypePurchase)
		req.Metadata[payment.MetaPaymentMethod] = "crypto"

		d, err := failing.Check(s.ctx, req)
		s.Require().NoError(err)
		s.Equal(payment.StatusReview, d.Status)
		s.True(d.Degraded)
	})
}

func (s *GateSuite) TestCheck_PassesContextToScorer() {
	s.expectLevel(kyc.LevelNone)
	s.scorer.EXPECT().Score(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req fraud.ScoreRequest) (fraud.Result, error) {
		s.Equal("DE", req.CountryCode)
		s.Equal("fp-1", req.DeviceFingerprint)
		s.Equal(string(payment.TypeSubscription), req.Type)
		return fraud.Result{RecommendedAction: fraud.RecommendReview}, nil
	})

	req := s.request(1000, payment.TypeSubscription)
	req.Metadata[payment.MetaDeviceFingerprint] = "fp-1"
	d, err := s.gate.Check(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(payment.StatusReview, d.Status)
}
