package ports

import (
	"context"

	"github.com/epiwatch/epiwatch/internal/core/domain"
)

// OutbreakRepository persists and queries outbreak reports.
type OutbreakRepository interface {
	// FetchActive returns reports inside bounds no older than recencyDays,
	// optionally filtered by disease, most recent first, capped at 50.
	// Invalid bounds fail with domain.ErrInvalidBounds before any query;
	// storage failures wrap domain.ErrRepositoryUnavailable.
	FetchActive(ctx context.Context, bounds domain.Bounds, disease string, recencyDays int) ([]domain.OutbreakReport, error)

	Insert(ctx context.Context, report *domain.OutbreakReport) error
	InsertBatch(ctx context.Context, reports []domain.OutbreakReport) error
	GetByID(ctx context.Context, id string) (*domain.OutbreakReport, error)
	ListInBounds(ctx context.Context, bounds domain.Bounds, disease string, limit, offset int) ([]domain.OutbreakReport, int, error)
	FindNearby(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]domain.OutbreakReport, error)
}

// AlertRepository persists regional alert records.
type AlertRepository interface {
	Insert(ctx context.Context, alert *domain.RegionalAlert) error
	MarkDelivered(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ListRecent(ctx context.Context, limit int) ([]domain.RegionalAlert, error)
}
