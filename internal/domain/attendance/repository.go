package attendance

import (
	"context"
	"time"
)

type SessionRepository interface {
	// GetOpenSession returns the employee's session without check-out, or nil.
	GetOpenSession(ctx context.Context, employeeID string) (*Session, error)
	// Create inserts a new open session. Returns ErrOpenSessionExists when the
	// employee already has one.
	Create(ctx context.Context, session Session) (Session, error)
	// Close persists check-out fields of a session that is still open.
	Close(ctx context.Context, session Session) error
	// ListByCheckInRange returns sessions whose check-in lies in [from, to), oldest first.
	ListByCheckInRange(ctx context.Context, employeeID string, from, to time.Time) ([]Session, error)
	GetLatest(ctx context.Context, employeeID string) (*Session, error)
	// CountOpenCheckedInBefore counts open sessions whose check-in is older than before.
	CountOpenCheckedInBefore(ctx context.Context, before time.Time) (int64, error)
}

type LinkRepository interface {
	Create(ctx context.Context, link Link) (Link, error)
	GetByTokenHash(ctx context.Context, tokenHash []byte) (Link, error)
	// GetByTokenHashForUpdate locks the link row until the transaction ends.
	GetByTokenHashForUpdate(ctx context.Context, tokenHash []byte) (Link, error)
	// MarkUsed sets used_at only if it is still empty and reports whether it did.
	MarkUsed(ctx context.Context, id string, usedAt time.Time) (bool, error)
	// CountExpiredUnused counts links that expired before the given instant
	// without being redeemed.
	CountExpiredUnused(ctx context.Context, before time.Time) (int64, error)
}
