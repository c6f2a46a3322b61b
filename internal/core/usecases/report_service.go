package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/epiwatch/epiwatch/internal/core/domain"
	"github.com/epiwatch/epiwatch/internal/core/ports"
)

// ReportService handles CRUD plumbing for individual outbreak reports.
type ReportService struct {
	reports   ports.OutbreakRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewReportService creates a new ReportService. Cache and publisher are
// optional; a nil value disables the corresponding behaviour.
func NewReportService(reports ports.OutbreakRepository, cache ports.CacheService, publisher ports.EventPublisher) *ReportService {
	return &ReportService{reports: reports, cache: cache, publisher: publisher}
}

// Create validates and persists a new outbreak report, then announces it
// on the event bus (best effort).
func (s *ReportService) Create(ctx context.Context, report *domain.OutbreakReport) error {
	if err := report.Validate(); err != nil {
		return fmt.Errorf("invalid report: %w", err)
	}
	if report.ReportedAt.IsZero() {
		report.ReportedAt = time.Now().UTC()
	}

	if err := s.reports.Insert(ctx, report); err != nil {
		return err
	}

	if s.publisher != nil {
		_ = s.publisher.PublishReportCreated(ctx, report)
	}
	return nil
}

// GetByID returns a single report, read through the cache.
func (s *ReportService) GetByID(ctx context.Context, id string) (*domain.OutbreakReport, error) {
	cacheKey := "reports:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var r domain.OutbreakReport
			if err := json.Unmarshal(data, &r); err == nil {
				return &r, nil
			}
		}
	}

	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(report); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return report, nil
}

// ListInBounds returns reports inside a bounding box with the total count
// for pagination.
func (s *ReportService) ListInBounds(ctx context.Context, bounds domain.Bounds, disease string, limit, offset int) ([]domain.OutbreakReport, int, error) {
	if err := bounds.Validate(); err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.reports.ListInBounds(ctx, bounds, disease, limit, offset)
}

// FindNearby returns reports within radiusMeters of a point.
func (s *ReportService) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]domain.OutbreakReport, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.reports.FindNearby(ctx, lat, lng, radiusMeters, limit)
}
