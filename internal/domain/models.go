package domain

import "time"

type User struct {
	ID        int64
	Email     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type UserWithPassword struct {
	User
	PasswordHash string
}

// ResetToken is a single-use, time-bounded grant to change one user's
// password. A token is consumable iff UsedAt is nil and ExpiresAt is in
// the future; consumption sets UsedAt exactly once.
type ResetToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (t ResetToken) Consumed() bool { return t.UsedAt != nil }

func (t ResetToken) Expired(now time.Time) bool { return !t.ExpiresAt.After(now) }
