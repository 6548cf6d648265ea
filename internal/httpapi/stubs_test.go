package httpapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"accountsvc/internal/domain"
)

type stubUsersStore struct {
	t *testing.T

	createUserFunc      func(context.Context, string, string) (domain.User, error)
	getUserByIDFunc     func(context.Context, int64) (domain.User, error)
	getUserByEmailFunc  func(context.Context, string) (domain.UserWithPassword, error)
	setPasswordHashFunc func(context.Context, int64, string) error
}

func (s *stubUsersStore) CreateUser(ctx context.Context, email, passwordHash string) (domain.User, error) {
	if s.createUserFunc != nil {
		return s.createUserFunc(ctx, email, passwordHash)
	}
	s.t.Fatalf("CreateUser called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	if s.getUserByIDFunc != nil {
		return s.getUserByIDFunc(ctx, id)
	}
	s.t.Fatalf("GetUserByID called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	if s.getUserByEmailFunc != nil {
		return s.getUserByEmailFunc(ctx, email)
	}
	s.t.Fatalf("GetUserByEmail called unexpectedly")
	return domain.UserWithPassword{}, errors.New("unexpected call")
}

func (s *stubUsersStore) SetPasswordHash(ctx context.Context, userID int64, passwordHash string) error {
	if s.setPasswordHashFunc != nil {
		return s.setPasswordHashFunc(ctx, userID, passwordHash)
	}
	s.t.Fatalf("SetPasswordHash called unexpectedly")
	return errors.New("unexpected call")
}

type stubResetTokensStore struct {
	t *testing.T

	createFunc            func(context.Context, domain.ResetToken) (domain.ResetToken, error)
	getByTokenFunc        func(context.Context, string) (domain.ResetToken, error)
	consumeFunc           func(context.Context, int64, time.Time) error
	invalidateForUserFunc func(context.Context, int64, time.Time) (int64, error)
	deleteExpiredFunc     func(context.Context, time.Time) (int64, error)
}

func (s *stubResetTokensStore) Create(ctx context.Context, token domain.ResetToken) (domain.ResetToken, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, token)
	}
	s.t.Fatalf("Create called unexpectedly")
	return domain.ResetToken{}, errors.New("unexpected call")
}

func (s *stubResetTokensStore) GetByToken(ctx context.Context, tokenValue string) (domain.ResetToken, error) {
	if s.getByTokenFunc != nil {
		return s.getByTokenFunc(ctx, tokenValue)
	}
	s.t.Fatalf("GetByToken called unexpectedly")
	return domain.ResetToken{}, errors.New("unexpected call")
}

func (s *stubResetTokensStore) Consume(ctx context.Context, id int64, when time.Time) error {
	if s.consumeFunc != nil {
		return s.consumeFunc(ctx, id, when)
	}
	s.t.Fatalf("Consume called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubResetTokensStore) InvalidateForUser(ctx context.Context, userID int64, when time.Time) (int64, error) {
	if s.invalidateForUserFunc != nil {
		return s.invalidateForUserFunc(ctx, userID, when)
	}
	s.t.Fatalf("InvalidateForUser called unexpectedly")
	return 0, errors.New("unexpected call")
}

func (s *stubResetTokensStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.deleteExpiredFunc != nil {
		return s.deleteExpiredFunc(ctx, cutoff)
	}
	s.t.Fatalf("DeleteExpired called unexpectedly")
	return 0, errors.New("unexpected call")
}

type stubSender struct {
	sendFunc func(context.Context, string, string) error
}

func (s *stubSender) SendPasswordReset(ctx context.Context, toEmail, rawToken string) error {
	if s.sendFunc != nil {
		return s.sendFunc(ctx, toEmail, rawToken)
	}
	return nil
}
