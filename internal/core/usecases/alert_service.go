package usecases

import (
	"context"

	"github.com/epiwatch/epiwatch/internal/core/domain"
	"github.com/epiwatch/epiwatch/internal/core/ports"
)

// AlertService exposes recorded regional alerts.
type AlertService struct {
	alerts ports.AlertRepository
}

// NewAlertService creates a new AlertService.
func NewAlertService(alerts ports.AlertRepository) *AlertService {
	return &AlertService{alerts: alerts}
}

// ListRecent returns the most recently generated alerts.
func (s *AlertService) ListRecent(ctx context.Context, limit int) ([]domain.RegionalAlert, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.alerts.ListRecent(ctx, limit)
}
