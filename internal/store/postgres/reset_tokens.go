package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accountsvc/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResetTokensStore struct {
	pool *pgxpool.Pool
}

func NewResetTokensStore(pool *pgxpool.Pool) *ResetTokensStore {
	return &ResetTokensStore{pool: pool}
}

func (s *ResetTokensStore) Create(ctx context.Context, token domain.ResetToken) (domain.ResetToken, error) {
	const q = `
		INSERT INTO password_reset_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := s.pool.QueryRow(ctx, q, token.UserID, token.Token, token.ExpiresAt).Scan(
		&token.ID,
		&token.CreatedAt,
	)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" {
			// Token collision is practically impossible; treat it as a
			// hard error rather than retrying silently.
			return domain.ResetToken{}, fmt.Errorf("reset token not unique: %w", err)
		}
		if m := mapCtxError(err); m != nil {
			return domain.ResetToken{}, fmt.Errorf("create reset token: %w", m)
		}
		return domain.ResetToken{}, fmt.Errorf("create reset token: %w", err)
	}

	return token, nil
}

func (s *ResetTokensStore) GetByToken(ctx context.Context, tokenValue string) (domain.ResetToken, error) {
	const q = `
		SELECT id, user_id, token, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE token = $1
	`

	var (
		token  domain.ResetToken
		usedAt pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, q, tokenValue).Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.ExpiresAt,
		&usedAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ResetToken{}, domain.ErrNotFound
		}
		if m := mapCtxError(err); m != nil {
			return domain.ResetToken{}, fmt.Errorf("get reset token: %w", m)
		}
		return domain.ResetToken{}, fmt.Errorf("get reset token: %w", err)
	}
	token.UsedAt = timestamptzPtr(usedAt)
	return token, nil
}

// Consume marks the token used with a single conditional update. The
// used_at IS NULL guard makes it a check-and-set: of two concurrent
// consumers exactly one sees RowsAffected == 1. A zero row count means
// either a lost race (ErrTokenConsumed) or a missing row (ErrNotFound).
func (s *ResetTokensStore) Consume(ctx context.Context, id int64, when time.Time) error {
	const q = `
		UPDATE password_reset_tokens
		SET used_at = $2
		WHERE id = $1 AND used_at IS NULL
	`
	tag, err := s.pool.Exec(ctx, q, id, when)
	if err != nil {
		if m := mapCtxError(err); m != nil {
			return fmt.Errorf("consume reset token: %w", m)
		}
		return fmt.Errorf("consume reset token: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	const exists = `SELECT 1 FROM password_reset_tokens WHERE id = $1`
	var one int
	err = s.pool.QueryRow(ctx, exists, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	return domain.ErrTokenConsumed
}

// InvalidateForUser burns all outstanding unconsumed tokens for a user
// and reports how many were affected.
func (s *ResetTokensStore) InvalidateForUser(ctx context.Context, userID int64, when time.Time) (int64, error) {
	const q = `
		UPDATE password_reset_tokens
		SET used_at = $2
		WHERE user_id = $1 AND used_at IS NULL
	`
	tag, err := s.pool.Exec(ctx, q, userID, when)
	if err != nil {
		if m := mapCtxError(err); m != nil {
			return 0, fmt.Errorf("invalidate reset tokens: %w", m)
		}
		return 0, fmt.Errorf("invalidate reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired physically removes rows whose expiry has passed.
// Expiry is already a logical state everywhere else; this is the
// maintenance path that keeps the table from growing without bound.
func (s *ResetTokensStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `
		DELETE FROM password_reset_tokens
		WHERE expires_at <= $1
	`
	tag, err := s.pool.Exec(ctx, q, cutoff)
	if err != nil {
		if m := mapCtxError(err); m != nil {
			return 0, fmt.Errorf("delete expired reset tokens: %w", m)
		}
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
