package ports

import "context"

// LoginRateLimiter gates credential exchange attempts per (email, ip).
type LoginRateLimiter interface {
	// Allow reports whether another attempt is permitted right now. A
	// denied check must happen before, and instead of, the credential call.
	Allow(ctx context.Context, email, ip string) (bool, error)
	// RecordFailure consumes rate-limit budget after a failed credential
	// exchange. Successes do not consume budget.
	RecordFailure(ctx context.Context, email, ip string) error
}
