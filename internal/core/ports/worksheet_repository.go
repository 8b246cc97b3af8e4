package ports

import (
	"context"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
)

// WorksheetRepository defines the interface for worksheet catalog reads.
type WorksheetRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Worksheet, error)
	List(ctx context.Context, subject string) ([]*domain.Worksheet, error)
}
