package engine_test

//go:generate mockgen -source=engine.go -destination=mocks/mocks.go -package=mocks AccessChecker,RestrictionAdmin,ComplianceChecker,KYCWorkflow,FraudScorer,PaymentGate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"warden/internal/access"
	"warden/internal/compliance"
	"warden/internal/engine"
	"warden/internal/engine/mocks"
	"warden/internal/fraud"
	"warden/internal/kyc"
	"warden/internal/kyc/providers/sandbox"
	kycstore "warden/internal/kyc/store"
	"warden/internal/payment"
	"warden/internal/restriction"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	jobsmemory "warden/pkg/platform/jobs/memory"
	"warden/pkg/requestcontext"
)

type EngineSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	access       *mocks.MockAccessChecker
	restrictions *mocks.MockRestrictionAdmin
	compliance   *mocks.MockComplianceChecker
	kyc          *mocks.MockKYCWorkflow
	fraud        *mocks.MockFraudScorer
	payments     *mocks.MockPaymentGate
	engine       *engine.Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.access = mocks.NewMockAccessChecker(s.ctrl)
	s.restrictions = mocks.NewMockRestrictionAdmin(s.ctrl)
	s.compliance = mocks.NewMockComplianceChecker(s.ctrl)
	s.kyc = mocks.NewMockKYCWorkflow(s.ctrl)
	s.fraud = mocks.NewMockFraudScorer(s.ctrl)
	s.payments = mocks.NewMockPaymentGate(s.ctrl)

	e, err := engine.New(s.services(), engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
	s.engine = e
}

func (s *EngineSuite) services() engine.Services {
	return engine.Services{
		Access:       s.access,
		Restrictions: s.restrictions,
		Compliance:   s.compliance,
		KYC:          s.kyc,
		Fraud:        s.fraud,
		Payments:     s.payments,
	}
}

func (s *EngineSuite) TestNew_RequiresEveryService() {
	svc := s.services()
	svc.Payments = nil
	_, err := engine.New(svc)
	s.ErrorContains(err, "payment gate is required")
}

func (s *EngineSuite) TestCheckGeoAccess_PassesRequestThrough() {
	userID := id.UserID(uuid.New())
	s.access.EXPECT().CheckAccess(gomock.Any(), access.Request{
		IP:       "203.0.113.9",
		UserID:   userID,
		TargetID: "article-1",
		Type:     restriction.TypeContent,
	}).Return(access.Result{Allowed: false, RecommendedAction: access.ActionBlock, Reason: "blocked"}, nil)

	res, err := s.engine.CheckGeoAccess(context.Background(), engine.GeoAccessRequest{
		IP:       "203.0.113.9",
		UserID:   userID,
		TargetID: "article-1",
		Type:     restriction.TypeContent,
	})
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Equal(access.ActionBlock, res.RecommendedAction)
}

func (s *EngineSuite) TestCreateGeoRestriction_DefaultsCreatorToActor() {
	ctx := requestcontext.WithActor(context.Background(), "ops@example.com")
	created := &restriction.Restriction{ID: id.NewRestrictionID()}
	s.restrictions.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req restriction.CreateRequest) (*restriction.Restriction, error) {
			s.Equal("ops@example.com", req.CreatedBy)
			return created, nil
		})

	restrictionID, err := s.engine.CreateGeoRestriction(ctx, restriction.CreateRequest{
		Type:      restriction.TypeContent,
		Countries: []string{"DE"},
		Reason:    "licensing",
	})
	s.Require().NoError(err)
	s.Equal(created.ID, restrictionID)
}

func (s *EngineSuite) TestDeactivateGeoRestriction_UsesActor() {
	ctx := requestcontext.WithActor(context.Background(), "ops@example.com")
	restrictionID := id.NewRestrictionID()
	s.restrictions.EXPECT().Deactivate(gomock.Any(), restrictionID, "ops@example.com").Return(nil)

	s.Require().NoError(s.engine.DeactivateGeoRestriction(ctx, restrictionID))
}

func (s *EngineSuite) TestRecordComplianceArtifact_PassesThrough() {
	userID := id.UserID(uuid.New())
	s.compliance.EXPECT().RecordArtifact(gomock.Any(), userID, compliance.ArtifactConsent).Return(nil)
	s.Require().NoError(s.engine.RecordComplianceArtifact(context.Background(), userID, compliance.ArtifactConsent))

	s.compliance.EXPECT().RecordArtifact(gomock.Any(), userID, compliance.ArtifactKind("selfie")).
		Return(dErrors.New(dErrors.CodeValidation, "kind must be one of age_verification, consent"))
	err := s.engine.RecordComplianceArtifact(context.Background(), userID, "selfie")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *EngineSuite) TestInitiateKYCVerification() {
	userID := id.UserID(uuid.New())

	s.Run("success returns the verification id", func() {
		vid := id.NewVerificationID()
		s.kyc.EXPECT().Initiate(gomock.Any(), gomock.Any()).
			Return(&kyc.Verification{ID: vid, Status: kyc.StatusPending}, nil)

		res, err := s.engine.InitiateKYCVerification(context.Background(), kyc.InitiateRequest{UserID: userID})
		s.Require().NoError(err)
		s.True(res.Success)
		s.Equal(vid, res.VerificationID)
		s.Equal(kyc.StatusPending, res.Status)
	})

	s.Run("conflict becomes an unsuccessful result", func() {
		s.kyc.EXPECT().Initiate(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "User already has an active verification request"))

		res, err := s.engine.InitiateKYCVerification(context.Background(), kyc.InitiateRequest{UserID: userID})
		s.Require().NoError(err)
		s.False(res.Success)
		s.Contains(res.Error, "active verification request")
		s.Equal(dErrors.CodeConflict, res.Code)
	})

	s.Run("infrastructure failure is returned as an error", func() {
		s.kyc.EXPECT().Initiate(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(errors.New("db down"), dErrors.CodeInternal, "failed to store verification"))

		_, err := s.engine.InitiateKYCVerification(context.Background(), kyc.InitiateRequest{UserID: userID})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *EngineSuite) TestReviewKYCVerification_DefaultsReviewerToActor() {
	ctx := requestcontext.WithActor(context.Background(), "reviewer-7")
	vid := id.NewVerificationID()
	s.kyc.EXPECT().Review(gomock.Any(), kyc.ReviewRequest{VerificationID: vid, ReviewerID: "reviewer-7", Approve: true}).
		Return(&kyc.Verification{ID: vid, Status: kyc.StatusApproved}, nil)

	v, err := s.engine.ReviewKYCVerification(ctx, kyc.ReviewRequest{VerificationID: vid, Approve: true})
	s.Require().NoError(err)
	s.Equal(kyc.StatusApproved, v.Status)
}

func (s *EngineSuite) TestCheckPaymentCompliance_AddsClientSignals() {
	ctx := requestcontext.WithDeviceFingerprint(context.Background(), "fp-1")
	ctx = requestcontext.WithClientMetadata(ctx, "198.51.100.4", "Mozilla/5.0")
	s.payments.EXPECT().Check(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req payment.Request) (payment.Decision, error) {
			s.Equal("fp-1", req.Metadata[payment.MetaDeviceFingerprint])
			s.Equal("Mozilla/5.0", req.Metadata[payment.MetaUserAgent])
			s.Equal("DE", req.Metadata[payment.MetaCountry])
			return payment.Decision{Status: payment.StatusApproved, Approved: true}, nil
		})

	meta := map[string]string{payment.MetaCountry: "DE"}
	dec, err := s.engine.CheckPaymentCompliance(ctx, payment.Request{
		UserID:      id.UserID(uuid.New()),
		AmountCents: 1_000,
		Type:        payment.TypePurchase,
		Metadata:    meta,
	})
	s.Require().NoError(err)
	s.True(dec.Approved)
	s.Len(meta, 1, "caller metadata is not mutated")
}

func (s *EngineSuite) TestCheckPaymentCompliance_KeepsExplicitSignals() {
	ctx := requestcontext.WithDeviceFingerprint(context.Background(), "fp-ctx")
	s.payments.EXPECT().Check(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req payment.Request) (payment.Decision, error) {
			s.Equal("fp-explicit", req.Metadata[payment.MetaDeviceFingerprint])
			return payment.Decision{}, nil
		})

	_, err := s.engine.CheckPaymentCompliance(ctx, payment.Request{
		Metadata: map[string]string{payment.MetaDeviceFingerprint: "fp-explicit"},
	})
	s.Require().NoError(err)
}

func (s *EngineSuite) TestDetectFraudulentActivity_FillsDeviceFromContext() {
	ctx := requestcontext.WithDeviceFingerprint(context.Background(), "fp-2")
	userID := id.UserID(uuid.New())
	s.fraud.EXPECT().Score(gomock.Any(), fraud.ScoreRequest{
		UserID:            userID,
		AmountCents:       25_000,
		Type:              "purchase",
		DeviceFingerprint: "fp-2",
	}).Return(fraud.Result{RiskScore: 20, RecommendedAction: fraud.RecommendApprove}, nil)

	res, err := s.engine.DetectFraudulentActivity(ctx, fraud.ScoreRequest{
		UserID:      userID,
		AmountCents: 25_000,
		Type:        "purchase",
	})
	s.Require().NoError(err)
	s.Equal(20, res.RiskScore)
}

// newKYCEngine builds an engine around a real KYC workflow on in-memory
// storage so refusal messages are the workflow's own.
func newKYCEngine(t *testing.T) *engine.Engine {
	t.Helper()
	ctrl := gomock.NewController(t)
	workflow, err := kyc.New(kycstore.NewInMemoryStore(),
		sandbox.Documents{}, sandbox.Identity{}, sandbox.AML{}, jobsmemory.New(),
		kyc.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatal(err)
	}
	e, err := engine.New(engine.Services{
		Access:       mocks.NewMockAccessChecker(ctrl),
		Restrictions: mocks.NewMockRestrictionAdmin(ctrl),
		Compliance:   mocks.NewMockComplianceChecker(ctrl),
		KYC:          workflow,
		Fraud:        mocks.NewMockFraudScorer(ctrl),
		Payments:     mocks.NewMockPaymentGate(ctrl),
	})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestInitiateKYCVerification_Workflow(t *testing.T) {
	ctx := context.Background()
	info := kyc.PersonalInfo{FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "1990-12-10", Nationality: "GB"}
	passport := []kyc.Document{{Type: kyc.DocPassport, URL: "https://docs.example.com/p.jpg"}}

	t.Run("no documents", func(t *testing.T) {
		e := newKYCEngine(t)
		res, err := e.InitiateKYCVerification(ctx, kyc.InitiateRequest{
			UserID:       id.UserID(uuid.New()),
			Type:         kyc.TypeBasic,
			PersonalInfo: info,
		})
		if err != nil {
			t.Fatal(err)
		}
		if res.Success || res.Error != "No documents provided" {
			t.Fatalf("got %+v", res)
		}
	})

	t.Run("second request while pending", func(t *testing.T) {
		e := newKYCEngine(t)
		req := kyc.InitiateRequest{UserID: id.UserID(uuid.New()), Type: kyc.TypeBasic, PersonalInfo: info, Documents: passport}
		first, err := e.InitiateKYCVerification(ctx, req)
		if err != nil || !first.Success {
			t.Fatalf("first: %+v %v", first, err)
		}
		second, err := e.InitiateKYCVerification(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		if second.Success || second.Code != dErrors.CodeConflict {
			t.Fatalf("second: %+v", second)
		}
	})
}
