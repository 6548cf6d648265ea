package postgres

import (
	"context"
	"errors"
	"fmt"

	"accountsvc/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

// CreateUser inserts a new row and relies on the users_email_uq unique
// constraint to reject concurrent inserts of the same email; exactly
// one of two racing creates can succeed.
func (s *UsersStore) CreateUser(ctx context.Context, email, passwordHash string) (domain.User, error) {
	const q = `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, is_active, created_at, updated_at
	`

	var u domain.User
	err := s.pool.QueryRow(ctx, q, email, passwordHash).Scan(
		&u.ID,
		&u.Email,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapUserWriteError(err)
	}

	return u, nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	const q = `
		SELECT id, email, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u domain.User
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&u.ID,
		&u.Email,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		if m := mapCtxError(err); m != nil {
			return domain.User{}, fmt.Errorf("get user by id: %w", m)
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}

	return u, nil
}

func (s *UsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	const q = `
		SELECT id, email, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE email = $1
		LIMIT 1
	`

	var u domain.UserWithPassword
	err := s.pool.QueryRow(ctx, q, email).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		}
		if m := mapCtxError(err); m != nil {
			return domain.UserWithPassword{}, fmt.Errorf("get user by email: %w", m)
		}
		return domain.UserWithPassword{}, fmt.Errorf("get user by email: %w", err)
	}

	return u, nil
}

// SetPasswordHash replaces the stored hash and refreshes updated_at in
// the same statement; the timestamp refresh is part of the store
// contract, not a database trigger.
func (s *UsersStore) SetPasswordHash(ctx context.Context, userID int64, passwordHash string) error {
	const q = `
		UPDATE users
		SET password_hash = $2, updated_at = now()
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, q, userID, passwordHash)
	if err != nil {
		if m := mapCtxError(err); m != nil {
			return fmt.Errorf("set password hash: %w", m)
		}
		return fmt.Errorf("set password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UsersStore) SetActive(ctx context.Context, userID int64, active bool) error {
	const q = `
		UPDATE users
		SET is_active = $2, updated_at = now()
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, q, userID, active)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapUserWriteError(err error) error {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		if pgerr.ConstraintName == "users_email_uq" {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("unique violation (%s): %w", pgerr.ConstraintName, err)
	}
	if m := mapCtxError(err); m != nil {
		return fmt.Errorf("create user: %w", m)
	}
	return fmt.Errorf("create user: %w", err)
}
