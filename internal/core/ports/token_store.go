package ports

import "context"

// TokenStore persists the access token of a client instance so a session can
// be restored across restarts. Load returns an empty string when nothing is
// stored.
type TokenStore interface {
	Save(ctx context.Context, clientID, token string) error
	Load(ctx context.Context, clientID string) (string, error)
	Delete(ctx context.Context, clientID string) error
}
