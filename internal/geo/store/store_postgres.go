package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"warden/internal/geo"
	"warden/pkg/platform/privacy"
)

// PostgresAnalytics appends one row per resolved lookup. Only the network
// prefix of the address is stored.
type PostgresAnalytics struct {
	db *sql.DB
}

func NewPostgresAnalytics(db *sql.DB) *PostgresAnalytics {
	return &PostgresAnalytics{db: db}
}

func (s *PostgresAnalytics) RecordLookup(ctx context.Context, rec geo.IPGeolocation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO geo_lookups (ip_prefix, country_code, is_vpn, is_proxy, is_tor, threat_level, degraded, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		privacy.AnonymizeIP(rec.IP),
		rec.CountryCode,
		rec.IsVPN,
		rec.IsProxy,
		rec.IsTor,
		string(rec.ThreatLevel),
		rec.Degraded,
		rec.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("record geo lookup: %w", err)
	}
	return nil
}

// CountryCount is one row of the lookup breakdown.
type CountryCount struct {
	CountryCode string
	Lookups     int
	Anonymized  int
}

// CountsSince aggregates lookups per country from since onward.
func (s *PostgresAnalytics) CountsSince(ctx context.Context, since time.Time) ([]CountryCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT country_code, count(*), count(*) FILTER (WHERE is_vpn OR is_proxy OR is_tor)
		FROM geo_lookups
		WHERE resolved_at >= $1
		GROUP BY country_code
		ORDER BY count(*) DESC, country_code
	`, since)
	if err != nil {
		return nil, fmt.Errorf("count geo lookups: %w", err)
	}
	defer rows.Close()

	var out []CountryCount
	for rows.Next() {
		var c CountryCount
		if err := rows.Scan(&c.CountryCode, &c.Lookups, &c.Anonymized); err != nil {
			return nil, fmt.Errorf("scan geo lookup count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
