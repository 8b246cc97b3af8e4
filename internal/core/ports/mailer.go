package ports

import "context"

// Mailer dispatches auth-related mail. Delivery is out of band; callers get
// an error only when the dispatch itself could not be queued.
type Mailer interface {
	SendVerification(ctx context.Context, email, link string) error
	SendPasswordReset(ctx context.Context, email, link string) error
}
