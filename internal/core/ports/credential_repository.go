package ports

import (
	"context"
	"time"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
)

// Credential is a stored login identity. The hash never leaves the
// repository layer except for comparison.
type Credential struct {
	UserID        string
	Email         string
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CredentialRepository defines the interface for credential persistence.
type CredentialRepository interface {
	// Create inserts new credentials. A duplicate email fails with
	// domain.ErrDuplicateEmail.
	Create(ctx context.Context, cred *Credential) (*Credential, error)
	FindByEmail(ctx context.Context, email string) (*Credential, error)
	FindByUserID(ctx context.Context, userID string) (*Credential, error)
	SetVerified(ctx context.Context, userID string) error
	SetPasswordHash(ctx context.Context, userID, hash string) error
	// Delete removes the credentials. Used to roll back a registration
	// whose profile insert failed, so the email stays usable.
	Delete(ctx context.Context, userID string) error
}

// UserFromCredential projects the identity record the client is allowed to
// see.
func UserFromCredential(c *Credential) *domain.User {
	return &domain.User{
		ID:            c.UserID,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		CreatedAt:     c.CreatedAt,
	}
}
