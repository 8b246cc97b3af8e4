package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the minimal identity record returned by the auth provider on
// authentication. Read-only from the client's perspective.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// Profile is the mutable application record associated one-to-one with a
// User, keyed by the user id. The client-side copy is advisory: it must be
// re-fetched after any mutation rather than merged optimistically.
type Profile struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	FullName            string     `json:"full_name,omitempty"`
	Username            string     `json:"username,omitempty"`
	AvatarURL           string     `json:"avatar_url,omitempty"`
	Role                string     `json:"role"`
	IsActive            bool       `json:"is_active"`
	CreditsRemaining    int64      `json:"credits_remaining"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ProfilePatch is a partial profile update. Nil fields are left untouched.
// Role, is_active, and credit balance are deliberately absent: those are
// changed through admin operations, never by the owning user.
type ProfilePatch struct {
	FullName            *string `json:"full_name,omitempty"`
	Username            *string `json:"username,omitempty"`
	AvatarURL           *string `json:"avatar_url,omitempty"`
	OnboardingCompleted *bool   `json:"onboarding_completed,omitempty"`
}

// IsZero reports whether the patch contains no changes.
func (p ProfilePatch) IsZero() bool {
	return p.FullName == nil && p.Username == nil && p.AvatarURL == nil && p.OnboardingCompleted == nil
}
