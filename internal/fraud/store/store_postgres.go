package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"warden/internal/fraud"
	id "warden/pkg/domain"
	txcontext "warden/pkg/platform/tx"
)

// PostgresHistory persists payment_transactions.
type PostgresHistory struct {
	db *sql.DB
}

func NewPostgresHistory(db *sql.DB) *PostgresHistory {
	return &PostgresHistory{db: db}
}

func (s *PostgresHistory) Record(ctx context.Context, tx fraud.Transaction) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO payment_transactions (id, user_id, amount_cents, type, country_code, device_fingerprint, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, tx.ID, uuid.UUID(tx.UserID), tx.AmountCents, tx.Type, tx.CountryCode, tx.DeviceFingerprint, tx.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *PostgresHistory) Recent(ctx context.Context, userID id.UserID, since time.Time) ([]fraud.Transaction, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, `
		SELECT id, user_id, amount_cents, type, country_code, device_fingerprint, occurred_at
		FROM payment_transactions
		WHERE user_id = $1 AND occurred_at >= $2
		ORDER BY occurred_at DESC
	`, uuid.UUID(userID), since)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []fraud.Transaction
	for rows.Next() {
		var (
			tx   fraud.Transaction
			user uuid.UUID
		)
		if err := rows.Scan(&tx.ID, &user, &tx.AmountCents, &tx.Type, &tx.CountryCode, &tx.DeviceFingerprint, &tx.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.UserID = id.UserID(user)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}
