package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"warden/internal/restriction"
	id "warden/pkg/domain"
	"warden/pkg/platform/sentinel"
	txcontext "warden/pkg/platform/tx"
)

const restrictionColumns = `id, type, target_id, blocked_countries, allowed_countries, is_whitelist,
	reason, created_by, created_at, expires_at, is_active`

// PostgresStore persists restrictions in geo_restrictions.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r *restriction.Restriction) error {
	if r == nil {
		return fmt.Errorf("restriction is required")
	}
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO geo_restrictions (`+restrictionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		uuid.UUID(r.ID),
		string(r.Type),
		nullString(r.TargetID),
		pq.Array(r.BlockedCountries),
		pq.Array(r.AllowedCountries),
		r.IsWhitelist,
		r.Reason,
		r.CreatedBy,
		r.CreatedAt,
		nullTime(r.ExpiresAt),
		r.IsActive,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert restriction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, restrictionID id.RestrictionID) (*restriction.Restriction, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+restrictionColumns+` FROM geo_restrictions WHERE id = $1`,
		uuid.UUID(restrictionID),
	)
	r, err := scanRestriction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get restriction: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListScope(ctx context.Context, t restriction.Type, targetID string) ([]*restriction.Restriction, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, `
		SELECT `+restrictionColumns+`
		FROM geo_restrictions
		WHERE is_active AND type = $1 AND target_id IS NOT DISTINCT FROM $2
		ORDER BY created_at, id
	`, string(t), nullString(targetID))
	if err != nil {
		return nil, fmt.Errorf("list restrictions: %w", err)
	}
	defer rows.Close()

	var out []*restriction.Restriction
	for rows.Next() {
		r, err := scanRestriction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan restriction: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Deactivate(ctx context.Context, restrictionID id.RestrictionID, at time.Time) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE geo_restrictions SET is_active = FALSE, deactivated_at = $2
		WHERE id = $1 AND is_active
	`, uuid.UUID(restrictionID), at)
	if err != nil {
		return fmt.Errorf("deactivate restriction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	if _, err := s.Get(ctx, restrictionID); err != nil {
		return err
	}
	return sentinel.ErrInvalidState
}

func (s *PostgresStore) DeactivateExpired(ctx context.Context, now time.Time) ([]*restriction.Restriction, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, `
		UPDATE geo_restrictions SET is_active = FALSE, deactivated_at = $1
		WHERE is_active AND expires_at IS NOT NULL AND expires_at <= $1
		RETURNING `+restrictionColumns,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("deactivate expired restrictions: %w", err)
	}
	defer rows.Close()

	var out []*restriction.Restriction
	for rows.Next() {
		r, err := scanRestriction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan restriction: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRestriction(row scanner) (*restriction.Restriction, error) {
	var (
		r         restriction.Restriction
		rid       uuid.UUID
		typ       string
		targetID  sql.NullString
		blocked   pq.StringArray
		allowed   pq.StringArray
		expiresAt sql.NullTime
	)
	err := row.Scan(&rid, &typ, &targetID, &blocked, &allowed, &r.IsWhitelist,
		&r.Reason, &r.CreatedBy, &r.CreatedAt, &expiresAt, &r.IsActive)
	if err != nil {
		return nil, err
	}
	r.ID = id.RestrictionID(rid)
	r.Type = restriction.Type(typ)
	r.TargetID = targetID.String
	r.BlockedCountries = []string(blocked)
	r.AllowedCountries = []string(allowed)
	if r.BlockedCountries == nil {
		r.BlockedCountries = []string{}
	}
	if r.AllowedCountries == nil {
		r.AllowedCountries = []string{}
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		r.ExpiresAt = &t
	}
	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
