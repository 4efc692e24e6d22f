package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"restaurantservice/internal/repository"
)

// Pinger checks connectivity of the backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService reports whether the application can serve requests.
type HealthService interface {
	IsAppHealthy(ctx context.Context) error
}

type healthService struct {
	db     Pinger
	logger *slog.Logger
}

// NewHealthService creates a health service over the given store.
func NewHealthService(db Pinger, logger *slog.Logger) HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &healthService{db: db, logger: logger}
}

// IsAppHealthy returns ErrAppIsNotHealthy when the database does not answer.
func (s *healthService) IsAppHealthy(ctx context.Context) error {
	err := s.db.Ping(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrDatabaseNotReachable) {
		err = fmt.Errorf("%w: %v", repository.ErrDatabaseNotReachable, err)
	}
	s.logger.WarnContext(ctx, "health check failed", slog.String("error", err.Error()))
	return fmt.Errorf("%w: %w", ErrAppIsNotHealthy, err)
}
