package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"warden/internal/kyc"
	id "warden/pkg/domain"
	"warden/pkg/platform/sentinel"
	txcontext "warden/pkg/platform/tx"
)

const verificationColumns = `id, user_id, type, status, documents, personal_info, verification_level,
	risk_score, aml_checks, submitted_at, reviewed_at, reviewed_by, rejection_reason, expires_at`

// PostgresStore persists kyc_verifications and user_verification_levels.
// Documents, personal info and AML checks are stored as JSONB.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, v *kyc.Verification) error {
	if v == nil {
		return fmt.Errorf("verification is required")
	}
	docs, info, checks, err := encode(v)
	if err != nil {
		return err
	}
	_, err = txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO kyc_verifications (`+verificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		uuid.UUID(v.ID),
		uuid.UUID(v.UserID),
		string(v.Type),
		string(v.Status),
		docs,
		info,
		string(v.VerificationLevel),
		v.RiskScore,
		checks,
		v.SubmittedAt,
		v.ReviewedAt,
		nullString(v.ReviewedBy),
		nullString(v.RejectionReason),
		v.ExpiresAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, verificationID id.VerificationID) (*kyc.Verification, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+verificationColumns+` FROM kyc_verifications WHERE id = $1
	`, uuid.UUID(verificationID))
	v, err := scanVerification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return v, err
}

func (s *PostgresStore) ActiveForUser(ctx context.Context, userID id.UserID) (*kyc.Verification, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+verificationColumns+` FROM kyc_verifications
		WHERE user_id = $1 AND status IN ('pending', 'processing')
	`, uuid.UUID(userID))
	v, err := scanVerification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return v, err
}

// Transition applies a compare-and-set on status. The level grant, when
// present, is written in the same transaction.
func (s *PostgresStore) Transition(ctx context.Context, v *kyc.Verification, from kyc.Status, grant *kyc.LevelGrant) error {
	docs, info, checks, err := encode(v)
	if err != nil {
		return err
	}
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := txcontext.Exec(ctx, s.db)
		res, err := exec.ExecContext(ctx, `
			UPDATE kyc_verifications
			SET status = $3, documents = $4, personal_info = $5, verification_level = $6,
			    risk_score = $7, aml_checks = $8, reviewed_at = $9, reviewed_by = $10,
			    rejection_reason = $11
			WHERE id = $1 AND status = $2
		`,
			uuid.UUID(v.ID),
			string(from),
			string(v.Status),
			docs,
			info,
			string(v.VerificationLevel),
			v.RiskScore,
			checks,
			v.ReviewedAt,
			nullString(v.ReviewedBy),
			nullString(v.RejectionReason),
		)
		if err != nil {
			return fmt.Errorf("update verification: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update verification: %w", err)
		}
		if n == 0 {
			if _, err := s.Get(ctx, v.ID); err != nil {
				return err
			}
			return sentinel.ErrInvalidState
		}
		if grant == nil {
			return nil
		}
		_, err = exec.ExecContext(ctx, `
			INSERT INTO user_verification_levels (user_id, level, verification_id, granted_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id) DO UPDATE
			SET level = EXCLUDED.level, verification_id = EXCLUDED.verification_id,
			    granted_at = EXCLUDED.granted_at
		`, uuid.UUID(grant.UserID), string(grant.Level), uuid.UUID(grant.VerificationID), grant.GrantedAt)
		if err != nil {
			return fmt.Errorf("grant verification level: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) ListExpired(ctx context.Context, now time.Time, limit int) ([]*kyc.Verification, error) {
	return s.list(ctx, `
		SELECT `+verificationColumns+` FROM kyc_verifications
		WHERE status IN ('pending', 'processing') AND expires_at <= $1
		ORDER BY submitted_at
		LIMIT $2
	`, now, limit)
}

func (s *PostgresStore) ListStalled(ctx context.Context, cutoff time.Time, limit int) ([]*kyc.Verification, error) {
	return s.list(ctx, `
		SELECT `+verificationColumns+` FROM kyc_verifications
		WHERE (status = 'pending' OR (status = 'processing' AND reviewed_at IS NULL))
		  AND submitted_at <= $1
		ORDER BY submitted_at
		LIMIT $2
	`, cutoff, limit)
}

func (s *PostgresStore) Level(ctx context.Context, userID id.UserID) (kyc.LevelGrant, error) {
	var (
		g     kyc.LevelGrant
		user  uuid.UUID
		vid   uuid.UUID
		level string
	)
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT user_id, level, verification_id, granted_at
		FROM user_verification_levels WHERE user_id = $1
	`, uuid.UUID(userID)).Scan(&user, &level, &vid, &g.GrantedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return kyc.LevelGrant{}, sentinel.ErrNotFound
	}
	if err != nil {
		return kyc.LevelGrant{}, fmt.Errorf("find verification level: %w", err)
	}
	g.UserID = id.UserID(user)
	g.VerificationID = id.VerificationID(vid)
	g.Level = kyc.Level(level)
	return g, nil
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*kyc.Verification, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	var out []*kyc.Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVerification(row scanner) (*kyc.Verification, error) {
	var (
		v          kyc.Verification
		vid, user  uuid.UUID
		typ        string
		status     string
		level      string
		docs       []byte
		info       []byte
		checks     []byte
		reviewedAt sql.NullTime
		reviewedBy sql.NullString
		rejection  sql.NullString
	)
	err := row.Scan(&vid, &user, &typ, &status, &docs, &info, &level,
		&v.RiskScore, &checks, &v.SubmittedAt, &reviewedAt, &reviewedBy, &rejection, &v.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan verification: %w", err)
	}
	v.ID = id.VerificationID(vid)
	v.UserID = id.UserID(user)
	v.Type = kyc.Type(typ)
	v.Status = kyc.Status(status)
	v.VerificationLevel = kyc.Level(level)
	v.ReviewedBy = reviewedBy.String
	v.RejectionReason = rejection.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		v.ReviewedAt = &t
	}
	if err := json.Unmarshal(docs, &v.Documents); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	if err := json.Unmarshal(info, &v.PersonalInfo); err != nil {
		return nil, fmt.Errorf("decode personal info: %w", err)
	}
	if err := json.Unmarshal(checks, &v.AMLChecks); err != nil {
		return nil, fmt.Errorf("decode aml checks: %w", err)
	}
	if v.Documents == nil {
		v.Documents = []kyc.Document{}
	}
	return &v, nil
}

func encode(v *kyc.Verification) (docs, info, checks []byte, err error) {
	if docs, err = json.Marshal(v.Documents); err != nil {
		return nil, nil, nil, fmt.Errorf("encode documents: %w", err)
	}
	if info, err = json.Marshal(v.PersonalInfo); err != nil {
		return nil, nil, nil, fmt.Errorf("encode personal info: %w", err)
	}
	if checks, err = json.Marshal(v.AMLChecks); err != nil {
		return nil, nil, nil, fmt.Errorf("encode aml checks: %w", err)
	}
	return docs, info, checks, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
