package ports

import (
	"context"
	"time"
)

// SessionRecord is a server-tracked session row, kept for audit and remote
// revocation. The row is bookkeeping only: session validity is decided by
// the token itself.
type SessionRecord struct {
	TokenID   string
	UserID    string
	UserAgent string
	IP        string
	IsActive  bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionRepository defines the interface for session row persistence.
type SessionRepository interface {
	Create(ctx context.Context, rec *SessionRecord) error
	// MarkInactive flips is_active on all rows for the user. Best-effort on
	// sign-out: failure must not block local teardown.
	MarkInactive(ctx context.Context, userID string) error
}
