package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"warden/internal/compliance"
	id "warden/pkg/domain"
	"warden/pkg/platform/sentinel"
)

// PostgresRules reads compliance_rules.
type PostgresRules struct {
	db *sql.DB
}

func NewPostgresRules(db *sql.DB) *PostgresRules {
	return &PostgresRules{db: db}
}

func (s *PostgresRules) Rule(ctx context.Context, countryCode string) (*compliance.Rule, error) {
	var (
		r       compliance.Rule
		content pq.StringArray
		payment pq.StringArray
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT country, min_age, content_restrictions, payment_restrictions,
		       data_retention_days, right_to_forget, consent_required
		FROM compliance_rules
		WHERE country = $1
	`, countryCode).Scan(&r.Country, &r.MinAge, &content, &payment,
		&r.DataRetentionDays, &r.RightToForget, &r.ConsentRequired)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find compliance rule: %w", err)
	}
	r.ContentRestrictions = append([]string{}, content...)
	r.PaymentRestrictions = append([]string{}, payment...)
	return &r, nil
}

// PostgresArtifacts persists compliance_artifacts.
type PostgresArtifacts struct {
	db *sql.DB
}

func NewPostgresArtifacts(db *sql.DB) *PostgresArtifacts {
	return &PostgresArtifacts{db: db}
}

func (s *PostgresArtifacts) Record(ctx context.Context, a compliance.Artifact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO compliance_artifacts (user_id, kind, recorded_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, kind) DO UPDATE SET recorded_at = EXCLUDED.recorded_at
	`, uuid.UUID(a.UserID), string(a.Kind), a.RecordedAt)
	if err != nil {
		return fmt.Errorf("record compliance artifact: %w", err)
	}
	return nil
}

func (s *PostgresArtifacts) Kinds(ctx context.Context, userID id.UserID) ([]compliance.ArtifactKind, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind FROM compliance_artifacts WHERE user_id = $1 ORDER BY kind
	`, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list compliance artifacts: %w", err)
	}
	defer rows.Close()

	var kinds []compliance.ArtifactKind
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan compliance artifact: %w", err)
		}
		kinds = append(kinds, compliance.ArtifactKind(k))
	}
	return kinds, rows.Err()
}
