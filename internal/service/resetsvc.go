package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"accountsvc/internal/auth"
	"accountsvc/internal/domain"

	"github.com/sethvargo/go-retry"
)

type ResetTokensStore interface {
	Create(ctx context.Context, token domain.ResetToken) (domain.ResetToken, error)
	GetByToken(ctx context.Context, tokenValue string) (domain.ResetToken, error)
	Consume(ctx context.Context, id int64, when time.Time) error
	InvalidateForUser(ctx context.Context, userID int64, when time.Time) (int64, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// ResetSender is the out-of-band delivery channel for raw tokens. The
// raw token only ever travels through here; it is never returned to
// the caller who requested the reset.
type ResetSender interface {
	SendPasswordReset(ctx context.Context, toEmail, rawToken string) error
}

const (
	defaultResetTokenTTL  = 30 * time.Minute
	passwordUpdateRetries = 3
)

// PasswordResetService coordinates the reset flow across the token
// store and the users store: issue on request, then validate, consume
// and apply on presentation.
type PasswordResetService struct {
	Store    ResetTokensStore
	Users    UsersStore
	Sender   ResetSender
	TokenTTL time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

// RequestReset issues a fresh token for the account behind email and
// hands it to the sender. Unknown or inactive accounts return nil with
// no token issued, so the endpoint's behavior never reveals whether an
// account exists. Issuing a new token invalidates all outstanding
// unconsumed tokens for the user.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	now := s.now()
	logger := s.logger()

	email = strings.TrimSpace(strings.ToLower(email))

	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Info("reset requested for unknown email")
			return nil
		}
		return err
	}
	if !u.Active {
		logger.Info("reset requested for inactive account", "user_id", u.ID)
		return nil
	}

	invalidated, err := s.Store.InvalidateForUser(ctx, u.ID, now)
	if err != nil {
		return err
	}
	if invalidated > 0 {
		logger.Info("invalidated outstanding reset tokens", "user_id", u.ID, "count", invalidated)
	}

	raw, err := auth.NewResetToken()
	if err != nil {
		return err
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = defaultResetTokenTTL
	}
	token := domain.ResetToken{
		UserID:    u.ID,
		Token:     raw,
		ExpiresAt: now.Add(ttl),
	}
	if _, err := s.Store.Create(ctx, token); err != nil {
		return err
	}

	if s.Sender != nil {
		// Delivery failure is logged, not surfaced: the requester gets
		// the same answer either way, and the token simply expires.
		if err := s.Sender.SendPasswordReset(ctx, u.Email, raw); err != nil {
			logger.Error("send reset token failed", "user_id", u.ID, "err", err)
		}
	}

	return nil
}

// ValidateToken reports whether a presented token is currently
// consumable and, if so, which email it belongs to. It does not
// consume the token.
func (s *PasswordResetService) ValidateToken(ctx context.Context, rawToken string) (string, error) {
	token, err := s.Store.GetByToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrTokenInvalid
		}
		return "", err
	}
	if token.Consumed() || token.Expired(s.now()) {
		return "", domain.ErrTokenInvalid
	}

	u, err := s.Users.GetUserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrTokenInvalid
		}
		return "", err
	}

	return u.Email, nil
}

// ResetPassword consumes the token and applies the new password. The
// conditional consume is the linearization point: of two concurrent
// presentations of the same token exactly one passes it, and the loser
// fails with ErrTokenInvalid without touching the password. If the
// password update keeps failing after consumption, the token stays
// burned and the caller gets ErrResetIncomplete.
func (s *PasswordResetService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	now := s.now()

	token, err := s.Store.GetByToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrTokenInvalid
		}
		return err
	}
	if token.Consumed() || token.Expired(now) {
		return domain.ErrTokenInvalid
	}

	// Hash before consuming: a hashing failure must not burn the token.
	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.Store.Consume(ctx, token.ID, now); err != nil {
		if errors.Is(err, domain.ErrTokenConsumed) || errors.Is(err, domain.ErrNotFound) {
			return domain.ErrTokenInvalid
		}
		return err
	}

	backoff := retry.WithMaxRetries(passwordUpdateRetries, retry.NewConstant(100*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.Users.SetPasswordHash(ctx, token.UserID, passwordHash); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		// The token is spent but the password never changed. Report it;
		// un-consuming the token would reopen the race it closed.
		s.logger().Error("password update failed after token consumption", "user_id", token.UserID, "err", err)
		return fmt.Errorf("%w: %w", domain.ErrResetIncomplete, err)
	}

	return nil
}

// ReapExpired deletes tokens whose expiry has passed. Safe to run
// concurrently with live traffic; expired tokens are already rejected
// logically.
func (s *PasswordResetService) ReapExpired(ctx context.Context) (int64, error) {
	return s.Store.DeleteExpired(ctx, s.now())
}

func (s *PasswordResetService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *PasswordResetService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
