package ports

import (
	"context"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
)

// SignUpInput carries the fields for credential registration. Validation is
// the caller's responsibility; the provider is the final authority on
// uniqueness.
type SignUpInput struct {
	Email    string
	Password string
	FullName string
	Username string
}

// SignInResult is an established session together with the provider-assigned
// sequence at which the corresponding SIGNED_IN event was published.
type SignInResult struct {
	Session *domain.Session
	User    *domain.User
	Seq     uint64
}

// Unsubscribe releases an auth-event subscription. Safe to call more than
// once.
type Unsubscribe func()

// AuthProvider is the external auth/data service boundary: credential
// registration, password sign-in, session restore and teardown, password
// reset dispatch and update, and a session-change event feed.
type AuthProvider interface {
	// SignUp registers credentials and dispatches a verification link. No
	// session is established; the account requires a separate verification
	// step.
	SignUp(ctx context.Context, input SignUpInput) (*domain.User, error)

	// SignInWithPassword exchanges credentials for a session.
	SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error)

	// CurrentSession restores a previously established session, if any.
	// Returns (nil, nil) when no session exists.
	CurrentSession(ctx context.Context) (*SignInResult, error)

	// SignOut invalidates the session with the provider.
	SignOut(ctx context.Context, session *domain.Session) error

	// SendPasswordReset dispatches a reset link. Unknown addresses may
	// surface as domain.ErrUserNotFound; callers normalize that case to
	// success so account existence never leaks.
	SendPasswordReset(ctx context.Context, email string) error

	// ExchangeRecoveryToken trades a reset-link token for a recovery
	// session usable only with UpdatePassword.
	ExchangeRecoveryToken(ctx context.Context, token string) (*SignInResult, error)

	// UpdatePassword sets a new password for the session's user. The
	// session must be live; expired or missing sessions fail with
	// domain.ErrSessionExpired.
	UpdatePassword(ctx context.Context, session *domain.Session, newPassword string) error

	// Subscribe registers fn for session-change events for the life of the
	// returned handle. Events carry a monotonic sequence.
	Subscribe(fn func(domain.AuthEvent)) Unsubscribe
}
