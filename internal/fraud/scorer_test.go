package fraud_test

//go:generate mockgen -source=scorer.go -destination=mocks/mocks.go -package=mocks HistoryStore,GeoDetector,DeviceDetector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"warden/internal/fraud"
	"warden/internal/fraud/mocks"
	"warden/internal/fraud/store"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
)

type ScorerSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	ctrl    *gomock.Controller
	history *store.InMemoryHistory
	device  *mocks.MockDeviceDetector
	scorer  *fraud.Scorer
	userID  id.UserID
}

func TestScorerSuite(t *testing.T) {
	suite.Run(t, new(ScorerSuite))
}

func (s *ScorerSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctrl = gomock.NewController(s.T())
	s.history = store.NewInMemoryHistory()
	s.device = mocks.NewMockDeviceDetector(s.ctrl)
	s.userID = id.UserID(uuid.New())

	scorer, err := fraud.NewScorer(s.history,
		fraud.WithClock(func() time.Time { return s.now }),
		fraud.WithDeviceDetector(s.device),
	)
	s.Require().NoError(err)
	s.scorer = scorer
}

func (s *ScorerSuite) record(n int, amount int64, age time.Duration, country string) {
	for range n {
		s.Require().NoError(s.scorer.RecordTransaction(s.ctx, fraud.Transaction{
			UserID:      s.userID,
			AmountCents: amount,
			Type:        "purchase",
			CountryCode: country,
			OccurredAt:  s.now.Add(-age),
		}))
	}
}

func (s *ScorerSuite) TestNewScorerRequiresHistory() {
	_, err := fraud.NewScorer(nil)
	s.ErrorContains(err, "history store is required")
}

func (s *ScorerSuite) TestScore_Validation() {
	_, err := s.scorer.Score(s.ctx, fraud.ScoreRequest{AmountCents: 100})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.scorer.Score(s.ctx, fraud.ScoreRequest{UserID: s.userID})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ScorerSuite) TestScore_HighVelocity() {
	s.record(11, 2500, 2*time.Hour, "DE")
	s.device.EXPECT().DeviceAnomaly(gomock.Any(), gomock.Any(), gomock.Len(11)).Return(false, nil)

	res, err := s.scorer.Score(s.ctx, fraud.ScoreRequest{UserID: s.userID, AmountCents: 2500, Type: "purchase", CountryCode: "de"})
	s.Require().NoError(err)
	s.True(res.Has(fraud.FlagHighVelocity))
	s.Equal(30, res.RiskScore)
}

func (s *ScorerSuite) TestScore_GeographicAnomalyFromHistory() {
	s.record(2, 2500, 48*time.Hour, "DE")
	s.device.EXPECT().DeviceAnomaly(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).Times(2)

	res, err := s.scorer.Score(s.ctx, fraud.ScoreRequest{UserID: s.userID, AmountCents: 2500, CountryCode: "BR"})
	s.Require().NoError(err)
	s.Equal([]fraud.Flag{fraud.FlagGeographicAnomaly}, res.Flags)

	res, err = s.scorer.Score(s.ctx, fraud.ScoreRequest{UserID: s.userID, AmountCents: 2500, CountryCode: "DE"})
	s.Require().NoError(err)
	s.Empty(res.Flags)
}

func (s *ScorerSuite) TestScore_DetectorFailureDropsSignal() {
	s.device.EXPECT().DeviceAnomaly(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("fingerprint service down"))

	res, err := s.scorer.Score(s.ctx, fraud.ScoreRequest{UserID: s.userID, AmountCents: 2500})
	s.Require().NoError(err)
	s.Zero(res.RiskScore)
	s.Equal(fraud.RecommendApprove, res.RecommendedAction)
}

func (s *ScorerSuite) TestScore_CustomGeoDetector() {
	geo := mocks.NewMockGeoDetector(s.ctrl)
	scorer, err := fraud.NewScorer(s.history,
		fraud.WithClock(func() time.Time { return s.now }),
		fraud.WithGeoDetector(geo),
	)
	s.Require().NoError(err)
	geo.EXPECT().GeographicAnomaly(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	res, err := scorer.Score(s.ctx, fraud.ScoreRequest{UserID: s.userID, AmountCents: 2500})
	s.Require().NoError(err)
	s.Equal(25, res.RiskScore)
}

func (s *ScorerSuite) TestScore_HistoryFailureIsReturned() {
	history := mocks.NewMockHistoryStore(s.ctrl)
	scorer, err := fraud.NewScorer(history)
	s.Require().NoError(err)
	history.EXPECT().Recent(gomock.Any(), s.userID, gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err = scorer.Score(s.ctx, fraud.ScoreRequest{UserID: s.userID, AmountCents: 2500})
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *ScorerSuite) TestRecordTransaction() {
	s.Require().Error(s.scorer.RecordTransaction(s.ctx, fraud.Transaction{UserID: s.userID}))

	s.Require().NoError(s.scorer.RecordTransaction(s.ctx, fraud.Transaction{UserID: s.userID, AmountCents: 10, CountryCode: " fr "}))
	got, err := s.history.Recent(s.ctx, s.userID, s.now.Add(-time.Minute))
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.NotEqual(uuid.Nil, got[0].ID)
	s.Equal(s.now, got[0].OccurredAt)
	s.Equal("FR", got[0].CountryCode)
}
