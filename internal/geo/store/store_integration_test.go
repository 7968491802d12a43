//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"warden/internal/geo"
	"warden/internal/geo/store"
	"warden/pkg/platform/sentinel"
	"warden/pkg/testutil/containers"
)

type GeoStoreSuite struct {
	suite.Suite
	redis    *containers.RedisContainer
	postgres *containers.PostgresContainer
}

func TestGeoStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(GeoStoreSuite))
}

func (s *GeoStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.postgres = mgr.GetPostgres(s.T())
}

func (s *GeoStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.redis.FlushAll(ctx))
	s.Require().NoError(s.postgres.Truncate(ctx, "geo_lookups"))
}

func (s *GeoStoreSuite) TestRedisRoundTrip() {
	ctx := context.Background()
	cache := store.NewRedisCache(s.redis.Client, time.Hour)
	rec := geo.Merge("203.0.113.5",
		geo.Location{Country: "Spain", CountryCode: "ES"},
		geo.Signals{IsProxy: true, ThreatLevel: geo.ThreatMedium},
		time.Now().UTC().Truncate(time.Millisecond),
	)

	s.Require().NoError(cache.Set(ctx, rec))
	got, err := cache.Get(ctx, rec.IP)
	s.Require().NoError(err)
	s.Equal(rec.CountryCode, got.CountryCode)
	s.True(got.IsProxy)
	s.True(rec.LastUpdated.Equal(got.LastUpdated))
}

func (s *GeoStoreSuite) TestRedisSkipsDegradedAndStale() {
	ctx := context.Background()
	cache := store.NewRedisCache(s.redis.Client, time.Hour)

	s.Require().NoError(cache.Set(ctx, geo.DegradedRecord("203.0.113.6", time.Now())))
	_, err := cache.Get(ctx, "203.0.113.6")
	s.ErrorIs(err, sentinel.ErrNotFound)

	stale := geo.Merge("203.0.113.7", geo.Location{CountryCode: "ES"}, geo.Signals{}, time.Now().Add(-2*time.Hour))
	s.Require().NoError(cache.Set(ctx, stale))
	_, err = cache.Get(ctx, "203.0.113.7")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *GeoStoreSuite) TestAnalyticsStoresPrefixOnly() {
	ctx := context.Background()
	analytics := store.NewPostgresAnalytics(s.postgres.DB)
	now := time.Now().UTC()

	s.Require().NoError(analytics.RecordLookup(ctx, geo.Merge("198.51.100.77", geo.Location{CountryCode: "NL"}, geo.Signals{IsVPN: true}, now)))
	s.Require().NoError(analytics.RecordLookup(ctx, geo.Merge("198.51.100.78", geo.Location{CountryCode: "NL"}, geo.Signals{}, now)))

	var prefix string
	s.Require().NoError(s.postgres.DB.QueryRowContext(ctx, `SELECT ip_prefix FROM geo_lookups LIMIT 1`).Scan(&prefix))
	s.Equal("198.51.100.0/24", prefix)

	counts, err := analytics.CountsSince(ctx, now.Add(-time.Minute))
	s.Require().NoError(err)
	s.Require().Len(counts, 1)
	s.Equal(store.CountryCount{CountryCode: "NL", Lookups: 2, Anonymized: 1}, counts[0])
}
