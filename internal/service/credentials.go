package service

import (
	"context"
	"errors"
	"strings"

	"accountsvc/internal/auth"
	"accountsvc/internal/domain"
)

type UsersStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (domain.User, error)
	GetUserByID(ctx context.Context, id int64) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error)
	SetPasswordHash(ctx context.Context, userID int64, passwordHash string) error
}

// CredentialsService owns account creation and password verification.
// Email uniqueness is enforced by the store's unique constraint, not
// checked here; a read-then-write check would race.
type CredentialsService struct {
	Users UsersStore
}

func (s *CredentialsService) Register(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	return s.Users.CreateUser(ctx, email, passwordHash)
}

// Verify checks email+password. Unknown email and wrong password both
// come back as ErrInvalidCredentials, and the unknown-email path burns
// an equivalent hash computation so response timing does not reveal
// whether the account exists. ErrInactiveAccount is returned only
// after the password matched.
func (s *CredentialsService) Verify(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			auth.FakeVerify(password)
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if !u.Active {
		return domain.User{}, domain.ErrInactiveAccount
	}

	return u.User, nil
}

func (s *CredentialsService) UpdatePassword(ctx context.Context, userID int64, newPassword string) error {
	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.Users.SetPasswordHash(ctx, userID, passwordHash)
}
