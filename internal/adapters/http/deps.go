package http

import (
	"github.com/nats-io/nats.go"

	"github.com/epiwatch/epiwatch/internal/adapters/postgres"
	"github.com/epiwatch/epiwatch/internal/adapters/valkey"
	"github.com/epiwatch/epiwatch/internal/core/ports"
	"github.com/epiwatch/epiwatch/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Spread  *usecases.SpreadService
	Reports *usecases.ReportService
	Alerts  *usecases.AlertService
	Engine  ports.PredictionGateway
	NATS    *nats.Conn
	DB      *postgres.DB
	Cache   *valkey.Cache
}
