package ports

import (
	"context"

	"github.com/epiwatch/epiwatch/internal/core/domain"
)

// PredictionGateway is the typed client to the external epidemiological
// prediction engine. One network round trip per ClassifyRisk call; any
// failure surfaces as *domain.PredictionEngineError.
type PredictionGateway interface {
	ClassifyRisk(ctx context.Context, outbreaks []domain.OutbreakReport, bounds domain.Bounds) (*domain.RiskClassification, error)
	// HealthCheck is a best-effort liveness probe. False on any error,
	// never an error return.
	HealthCheck(ctx context.Context) bool
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishReportCreated(ctx context.Context, report *domain.OutbreakReport) error
	PublishRegionalAlert(ctx context.Context, alert *domain.RegionalAlert) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeReports(ctx context.Context, handler func(ctx context.Context, report *domain.OutbreakReport) error) error
	SubscribeAlerts(ctx context.Context, handler func(ctx context.Context, alert *domain.RegionalAlert) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
