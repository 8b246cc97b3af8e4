package ports

import (
	"context"
	"time"
)

// LoginAttempt is one audited credential-exchange outcome. Attempts are
// recorded regardless of success so rate limits can be recomputed offline.
type LoginAttempt struct {
	Email     string
	IP        string
	Success   bool
	UserAgent string
	At        time.Time
}

// LoginAuditor defines the interface for the login attempt audit sink.
type LoginAuditor interface {
	Record(ctx context.Context, attempt LoginAttempt) error
}
