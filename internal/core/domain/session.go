package domain

import "time"

// Session is the server-issued proof of authentication held client-side.
// The token is opaque to the holder; lifetime is controlled by the issuer.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenID     string    `json:"token_id"`
	UserID      string    `json:"user_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	// Recovery marks a session established through a password-reset link
	// exchange. Such a session is only good for setting a new password.
	Recovery bool `json:"recovery,omitempty"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// AuthEventType identifies a session-change notification from the provider.
type AuthEventType string

const (
	EventSignedIn       AuthEventType = "SIGNED_IN"
	EventSignedOut      AuthEventType = "SIGNED_OUT"
	EventTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
)

// AuthEvent is a session-change notification. Seq is a monotonic sequence
// assigned by the provider; consumers drop events whose sequence is not newer
// than the last state they applied.
type AuthEvent struct {
	Type    AuthEventType
	Seq     uint64
	Session *Session // nil on SIGNED_OUT
	User    *User    // nil on SIGNED_OUT
}
