package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const clientStateTTL = 30 * 24 * time.Hour

// ClientStore persists per-client-instance state: the remember-me preference
// and the access token used for session restore.
// Key formats: client:remember:<client_id> and client:token:<client_id>
type ClientStore struct {
	client *redis.Client
}

// NewClientStore creates a ClientStore wrapping the given Redis client.
func NewClientStore(client *redis.Client) *ClientStore {
	return &ClientStore{client: client}
}

// SetRememberMe stores the durable remember-me flag. The flag never alters
// session lifetime; it only records the client's preference.
func (s *ClientStore) SetRememberMe(ctx context.Context, clientID string, remember bool) error {
	if !remember {
		return s.client.Del(ctx, s.rememberKey(clientID)).Err()
	}
	return s.client.Set(ctx, s.rememberKey(clientID), "1", clientStateTTL).Err()
}

// RememberMe reports the stored preference; absent means false.
func (s *ClientStore) RememberMe(ctx context.Context, clientID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.rememberKey(clientID)).Result()
	if err != nil {
		return false, fmt.Errorf("remember read: %w", err)
	}
	return n > 0, nil
}

// Clear drops the preference, as sign-out requires.
func (s *ClientStore) Clear(ctx context.Context, clientID string) error {
	return s.client.Del(ctx, s.rememberKey(clientID)).Err()
}

// Save persists the client's access token for session restore.
func (s *ClientStore) Save(ctx context.Context, clientID, token string) error {
	return s.client.Set(ctx, s.tokenKey(clientID), token, clientStateTTL).Err()
}

// Load returns the persisted token or an empty string.
func (s *ClientStore) Load(ctx context.Context, clientID string) (string, error) {
	token, err := s.client.Get(ctx, s.tokenKey(clientID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("token read: %w", err)
	}
	return token, nil
}

// Delete drops the persisted token.
func (s *ClientStore) Delete(ctx context.Context, clientID string) error {
	return s.client.Del(ctx, s.tokenKey(clientID)).Err()
}

func (s *ClientStore) rememberKey(clientID string) string {
	return "client:remember:" + clientID
}

func (s *ClientStore) tokenKey(clientID string) string {
	return "client:token:" + clientID
}
