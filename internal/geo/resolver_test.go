package geo_test

//go:generate mockgen -source=resolver.go -destination=mocks/mocks.go -package=mocks Locator,Detector,SharedCache,AnalyticsSink

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"warden/internal/geo"
	"warden/internal/geo/mocks"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/circuit"
	"warden/pkg/platform/sentinel"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingSink struct {
	records chan geo.IPGeolocation
}

func (s *recordingSink) RecordLookup(_ context.Context, rec geo.IPGeolocation) error {
	s.records <- rec
	return nil
}

var (
	germany = geo.Location{Country: "Germany", CountryCode: "de", City: "Berlin", Timezone: "Europe/Berlin"}
	clean   = geo.Signals{ThreatLevel: geo.ThreatLow}
)

type ResolverSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	locator  *mocks.MockLocator
	detector *mocks.MockDetector
	clock    *fakeClock
	logger   *slog.Logger
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.locator = mocks.NewMockLocator(s.ctrl)
	s.detector = mocks.NewMockDetector(s.ctrl)
	s.clock = &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *ResolverSuite) newResolver(opts ...geo.Option) *geo.Resolver {
	base := []geo.Option{
		geo.WithClock(s.clock.Now),
		geo.WithLogger(s.logger),
		geo.WithRetries(1),
	}
	r, err := geo.NewResolver(s.locator, s.detector, append(base, opts...)...)
	s.Require().NoError(err)
	s.T().Cleanup(r.Close)
	return r
}

func (s *ResolverSuite) TestNewResolver() {
	s.Run("nil locator returns error", func() {
		_, err := geo.NewResolver(nil, s.detector)
		s.ErrorContains(err, "locator is required")
	})
	s.Run("nil detector returns error", func() {
		_, err := geo.NewResolver(s.locator, nil)
		s.ErrorContains(err, "detector is required")
	})
}

func (s *ResolverSuite) TestResolve_MergesCollaborators() {
	r := s.newResolver()
	s.locator.EXPECT().Locate(gomock.Any(), "203.0.113.7").Return(germany, nil)
	s.detector.EXPECT().Detect(gomock.Any(), "203.0.113.7").Return(geo.Signals{IsVPN: true, ThreatLevel: geo.ThreatMedium}, nil)

	rec, err := r.Resolve(context.Background(), " 203.0.113.7 ")
	s.Require().NoError(err)
	s.Equal("DE", rec.CountryCode, "country codes are normalized to upper case")
	s.Equal("Berlin", rec.City)
	s.True(rec.IsVPN)
	s.Equal(geo.ThreatMedium, rec.ThreatLevel)
	s.Equal(s.clock.Now(), rec.LastUpdated)
	s.False(rec.Degraded)
}

func (s *ResolverSuite) TestResolve_InvalidIP() {
	r := s.newResolver()
	_, err := r.Resolve(context.Background(), "not-an-ip")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ResolverSuite) TestResolve_CacheServesFreshRecords() {
	r := s.newResolver()
	s.locator.EXPECT().Locate(gomock.Any(), gomock.Any()).Return(germany, nil).Times(1)
	s.detector.EXPECT().Detect(gomock.Any(), gomock.Any()).Return(clean, nil).Times(1)

	first, err := r.Resolve(context.Background(), "198.51.100.1")
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	second, err := r.Resolve(context.Background(), "198.51.100.1")
	s.Require().NoError(err)
	s.Equal(first, second, "an entry exactly one hour old is still fresh")
}

func (s *ResolverSuite) TestResolve_StaleEntryTriggersFreshLookup() {
	r := s.newResolver()
	s.locator.EXPECT().Locate(gomock.Any(), gomock.Any()).Return(germany, nil).Times(2)
	s.detector.EXPECT().Detect(gomock.Any(), gomock.Any()).Return(clean, nil).Times(2)

	first, err := r.Resolve(context.Background(), "198.51.100.2")
	s.Require().NoError(err)

	s.clock.Advance(time.Hour + time.Second)
	second, err := r.Resolve(context.Background(), "198.51.100.2")
	s.Require().NoError(err)
	s.True(second.LastUpdated.After(first.LastUpdated))
}

func (s *ResolverSuite) TestResolve_LocatorFailureDegradesWithoutCaching() {
	r := s.newResolver()
	s.locator.EXPECT().Locate(gomock.Any(), gomock.Any()).Return(geo.Location{}, errors.New("upstream 502")).Times(2)
	s.detector.EXPECT().Detect(gomock.Any(), gomock.Any()).Return(clean, nil).AnyTimes()

	for range 2 {
		rec, err := r.Resolve(context.Background(), "192.0.2.10")
		s.Require().NoError(err)
		s.True(rec.Degraded)
		s.Equal(geo.UnknownCountry, rec.Country)
		s.Empty(rec.CountryCode)
		s.False(rec.IsVPN)
		s.Equal(geo.ThreatLow, rec.ThreatLevel)
	}
}

func (s *ResolverSuite) TestResolve_DetectorFailureKeepsLocation() {
	r := s.newResolver()
	s.locator.EXPECT().Locate(gomock.Any(), gomock.Any()).Return(germany, nil).Times(2)
	s.detector.EXPECT().Detect(gomock.Any(), gomock.Any()).Return(geo.Signals{}, errors.New("quota exhausted")).Times(2)

	rec, err := r.Resolve(context.Background(), "192.0.2.11")
	s.Require().NoError(err)
	s.True(rec.Degraded)
	s.Equal("DE", rec.CountryCode)
	s.False(rec.Anonymized())

	_, err = r.Resolve(context.Background(), "192.0.2.11")
	s.Require().NoError(err)
}

func (s *ResolverSuite) TestResolve_TimeoutDegrades() {
	r := s.newResolver(geo.WithTimeout(20 * time.Millisecond))
	s.locator.EXPECT().Locate(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ string) (geo.Location, error) {
		<-ctx.Done()
		return geo.Location{}, ctx.Err()
	})
	s.detector.EXPECT().Detect(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ string) (geo.Signals, error) {
		<-ctx.Done()
		return geo.Signals{}, ctx.Err()
	})

	start := time.Now()
	rec, err := r.Resolve(context.Background(), "192.0.2.12")
	s.Require().NoError(err)
	s.True(rec.Degraded)
	s.Less(time.Since(start), time.Second)
}

func (s *ResolverSuite) TestResolve_RetriesTransientLocatorFailure() {
	r := s.newResolver(geo.WithRetries(2))
	gomock.InOrder(
		s.locator.EXPECT().Locate(gomock.Any(), gomock.Any()).Return(geo.Location{}, errors.New("connection reset")),
		s.locator.EXPECT().Locate(gomock.Any(), gomock.Any()).Return(germany, nil),
	)
	s.detector.EXPECT().Detect(gomock.Any(), gomock.Any()).Return(clean, nil)

	rec, err := r.Resolve(context.Background(), "192.0.2.13")
	s.Require().NoError(err)
	s.False(rec.Degraded)
}

func (s *ResolverSuite) TestResolve_OpenCircuitSkipsCollaborators() {
	breaker := circuit.New("geo-test", circuit.WithFailureThreshold(1), circuit.WithCooldown(time.Minute))
	r := s.newResolver(geo.WithBreaker(breaker))
	s.locator.EXPECT().Locate(gomock.Any(), gomock.Any()).Return(geo.Location{}, errors.New("down")).Times(1)
	s.detector.EXPECT().Detect(gomock.Any(), gomock.Any()).Return(clean, nil).AnyTimes()

	_, err := r.Resolve(context.Background(), "192.0.2.20")
	s.Require().NoError(err)
	s.True(breaker.IsOpen())

	rec, err := r.Resolve(context.Background(), "192.0.2.21")
	s.Require().NoError(err)
	s.True(rec.Degraded)
}

func (s *ResolverSuite) TestResolve_SharedCacheHit() {
	shared := mocks.NewMockSharedCache(s.ctrl)
	r := s.newResolver(geo.WithSharedCache(shared))
	cached := geo.Merge("192.0.2.30", germany, clean, s.clock.Now().Add(-10*time.Minute))
	shared.EXPECT().Get(gomock.Any(), "192.0.2.30").Return(cached, nil)

	rec, err := r.Resolve(context.Background(), "192.0.2.30")
	s.Require().NoError(err)
	s.Equal(cached, rec)
}

func (s *ResolverSuite) TestResolve_SharedCacheMissPersistsInBackground() {
	shared := mocks.NewMockSharedCache(s.ctrl)
	sink := &recordingSink{records: make(chan geo.IPGeolocation, 1)}
	r := s.newResolver(geo.WithSharedCache(shared), geo.WithAnalytics(sink))

	shared.EXPECT().Get(gomock.Any(), "192.0.2.31").Return(geo.IPGeolocation{}, sentinel.ErrNotFound)
	shared.EXPECT().Set(gomock.Any(), gomock.Any()).Return(nil)
	s.locator.EXPECT().Locate(gomock.Any(), gomock.Any()).Return(germany, nil)
	s.detector.EXPECT().Detect(gomock.Any(), gomock.Any()).Return(clean, nil)

	rec, err := r.Resolve(context.Background(), "192.0.2.31")
	s.Require().NoError(err)

	select {
	case got := <-sink.records:
		s.Equal(rec, got)
	case <-time.After(2 * time.Second):
		s.Fail("analytics record not delivered")
	}
	r.Close()
}

func (s *ResolverSuite) TestResolve_ConcurrentMissesShareOneLookup() {
	r := s.newResolver()
	release := make(chan struct{})
	s.locator.EXPECT().Locate(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, string) (geo.Location, error) {
		<-release
		return germany, nil
	}).MinTimes(1).MaxTimes(2)
	s.detector.EXPECT().Detect(gomock.Any(), gomock.Any()).Return(clean, nil).MinTimes(1).MaxTimes(2)

	var wg sync.WaitGroup
	results := make([]geo.IPGeolocation, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = r.Resolve(context.Background(), "192.0.2.40")
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, rec := range results {
		s.Equal("DE", rec.CountryCode)
	}
}
