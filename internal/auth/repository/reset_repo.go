package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
)

// ErrCodeInvalid covers every failed lookup: unknown, expired or already
// consumed codes are indistinguishable to the caller.
var ErrCodeInvalid = errors.New("reset code invalid")

// ResetToken is one single-use password reset code.
type ResetToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Code      string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// ResetTokenRepository persists password reset codes.
type ResetTokenRepository struct{}

func NewResetTokenRepository() *ResetTokenRepository {
	return &ResetTokenRepository{}
}

// Create stores a fresh code and invalidates any outstanding ones for the
// same user.
func (r *ResetTokenRepository) Create(ctx context.Context, q postgres.Querier, userID uuid.UUID, code string, expiresAt time.Time) (*ResetToken, error) {
	if _, err := q.Exec(ctx,
		`UPDATE password_reset_token SET used = TRUE WHERE user_id = $1 AND used = FALSE`, userID); err != nil {
		return nil, err
	}
	var t ResetToken
	err := q.QueryRow(ctx, `
INSERT INTO password_reset_token (user_id, code, expires_at)
VALUES ($1, $2, $3)
RETURNING id, user_id, code, expires_at, used, created_at;`,
		userID, code, expiresAt).
		Scan(&t.ID, &t.UserID, &t.Code, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Consume atomically marks a live code as used and returns it. Locking the row
// keeps a code single-use even under concurrent confirmation attempts.
func (r *ResetTokenRepository) Consume(ctx context.Context, q postgres.Querier, userID uuid.UUID, code string, now time.Time) (*ResetToken, error) {
	var t ResetToken
	err := q.QueryRow(ctx, `
SELECT id, user_id, code, expires_at, used, created_at
FROM password_reset_token
WHERE user_id = $1 AND code = $2 AND used = FALSE AND expires_at > $3
FOR UPDATE;`, userID, code, now).
		Scan(&t.ID, &t.UserID, &t.Code, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCodeInvalid
		}
		return nil, err
	}
	if _, err := q.Exec(ctx,
		`UPDATE password_reset_token SET used = TRUE WHERE id = $1`, t.ID); err != nil {
		return nil, err
	}
	t.Used = true
	return &t, nil
}
