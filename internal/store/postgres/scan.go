package postgres

import (
	"context"
	"errors"
	"time"

	"accountsvc/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
)

func timestamptzPtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	tt := t.Time
	return &tt
}

// mapCtxError translates context cancellation and deadline errors from
// storage calls into the domain's transient-unavailability error so
// callers can distinguish them from legitimate conflicts.
func mapCtxError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.ErrUnavailable
	}
	return nil
}
