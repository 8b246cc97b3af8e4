package ports

import (
	"context"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
)

// ProfileRepository defines the interface for profile row persistence.
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	FindByUsername(ctx context.Context, username string) (*domain.Profile, error)
	Create(ctx context.Context, profile *domain.Profile) error
	// UpdatePartial applies only the non-nil patch fields and bumps
	// updated_at. Returns domain.ErrProfileNotFound for unknown ids and
	// domain.ErrUsernameTaken on a username uniqueness conflict.
	UpdatePartial(ctx context.Context, id string, patch domain.ProfilePatch) error
	// TouchLastLogin records a successful authentication timestamp.
	// Best-effort bookkeeping; failures should be logged, not propagated.
	TouchLastLogin(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Profile, error)
}
