package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
)

// WorksheetService serves the worksheet catalog behind the protected app
// views.
type WorksheetService struct {
	repo   ports.WorksheetRepository
	logger zerolog.Logger
}

func NewWorksheetService(repo ports.WorksheetRepository, logger zerolog.Logger) *WorksheetService {
	return &WorksheetService{repo: repo, logger: logger}
}

// List returns catalog entries, optionally filtered by subject.
func (s *WorksheetService) List(ctx context.Context, subject string) ([]*domain.Worksheet, error) {
	sheets, err := s.repo.List(ctx, subject)
	if err != nil {
		s.logger.Error().Err(err).Str("subject", subject).Msg("worksheet list failed")
		return nil, err
	}
	return sheets, nil
}

// Get returns a single worksheet by id.
func (s *WorksheetService) Get(ctx context.Context, id string) (*domain.Worksheet, error) {
	sheet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sheet, nil
}
