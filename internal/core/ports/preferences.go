package ports

import "context"

// PreferenceStore persists per-client preferences that survive restarts.
// The remember-me flag lives here: it never changes session lifetime, which
// the provider controls.
type PreferenceStore interface {
	SetRememberMe(ctx context.Context, clientID string, remember bool) error
	RememberMe(ctx context.Context, clientID string) (bool, error)
	Clear(ctx context.Context, clientID string) error
}
