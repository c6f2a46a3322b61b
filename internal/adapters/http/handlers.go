package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/epiwatch/epiwatch/internal/core/domain"
	"github.com/epiwatch/epiwatch/internal/pkg/metrics"
)

// predictRequest is the POST /v1/spread/predict body. Bounds fields are
// pointers so a missing field is distinguishable from zero.
type predictRequest struct {
	BoundsNorth *float64 `json:"bounds_north"`
	BoundsSouth *float64 `json:"bounds_south"`
	BoundsEast  *float64 `json:"bounds_east"`
	BoundsWest  *float64 `json:"bounds_west"`
	DiseaseType string   `json:"disease_type"`
}

// PredictSpreadHandler runs the full spread-risk assessment for a
// bounding box. The prediction is recomputed on every request.
func PredictSpreadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req predictRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		if req.BoundsNorth == nil || req.BoundsSouth == nil || req.BoundsEast == nil || req.BoundsWest == nil {
			return errBadRequest(c, "bounds_north, bounds_south, bounds_east and bounds_west are required")
		}

		bounds := domain.Bounds{
			North: *req.BoundsNorth,
			South: *req.BoundsSouth,
			East:  *req.BoundsEast,
			West:  *req.BoundsWest,
		}
		if err := bounds.Validate(); err != nil {
			return errBadRequest(c, err.Error())
		}

		prediction, err := deps.Spread.PredictSpread(c.UserContext(), bounds, req.DiseaseType)
		if err != nil {
			return spreadError(c, err)
		}

		metrics.PredictionsTotal.Inc()
		return c.JSON(fiber.Map{
			"data":    prediction,
			"message": "Spread prediction completed",
		})
	}
}

// spreadError maps pipeline failures to HTTP statuses: invalid bounds
// are the caller's fault, a dead repository is 503, a dead engine 502.
func spreadError(c *fiber.Ctx, err error) error {
	var engineErr *domain.PredictionEngineError
	switch {
	case errors.Is(err, domain.ErrInvalidBounds):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrRepositoryUnavailable):
		metrics.RepositoryErrors.Inc()
		return errUnavailable(c, "outbreak data store unavailable")
	case errors.As(err, &engineErr):
		metrics.EngineErrors.Inc()
		return errBadGateway(c, "prediction engine unavailable")
	default:
		return errInternal(c, err.Error())
	}
}

// LatestSpreadHandler serves the most recent monitor-generated snapshot
// for a named region, straight from the cache.
func LatestSpreadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		region := c.Query("region")
		if region == "" {
			return errBadRequest(c, "region query parameter is required")
		}
		if deps.Cache == nil {
			return errUnavailable(c, "snapshot cache not configured")
		}

		data, err := deps.Cache.Get(c.UserContext(), "spread:latest:"+region)
		if err != nil {
			return errNotFound(c, "no snapshot for region "+region)
		}

		c.Set("Content-Type", "application/json")
		return c.Send(data)
	}
}

// CreateReportHandler ingests a single outbreak report.
func CreateReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var report domain.OutbreakReport
		if err := c.BodyParser(&report); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		if err := deps.Reports.Create(c.UserContext(), &report); err != nil {
			if errors.Is(err, domain.ErrRepositoryUnavailable) {
				return errUnavailable(c, "outbreak data store unavailable")
			}
			return errBadRequest(c, err.Error())
		}

		metrics.ReportsIngested.Inc()
		return c.Status(201).JSON(report)
	}
}

// GetReportHandler returns a single outbreak report by ID. Only a
// genuinely missing report is a 404; a storage outage is a 503.
func GetReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "report id is required")
		}
		report, err := deps.Reports.GetByID(c.UserContext(), id)
		switch {
		case err == nil:
			return c.JSON(report)
		case errors.Is(err, domain.ErrReportNotFound):
			return errNotFound(c, "report not found")
		case errors.Is(err, domain.ErrRepositoryUnavailable):
			return errUnavailable(c, "outbreak data store unavailable")
		default:
			return errInternal(c, err.Error())
		}
	}
}

// ListReportsHandler lists reports inside a bounding box with
// offset/limit pagination.
func ListReportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bounds := domain.Bounds{
			North: c.QueryFloat("north", 91),
			South: c.QueryFloat("south", -91),
			East:  c.QueryFloat("east", 181),
			West:  c.QueryFloat("west", -181),
		}
		if err := bounds.Validate(); err != nil {
			return errBadRequest(c, "north, south, east and west are required and must form a valid bounding box")
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		disease := c.Query("disease")

		reports, total, err := deps.Reports.ListInBounds(c.UserContext(), bounds, disease, limit, offset)
		if err != nil {
			if errors.Is(err, domain.ErrRepositoryUnavailable) {
				return errUnavailable(c, "outbreak data store unavailable")
			}
			return errInternal(c, err.Error())
		}
		if reports == nil {
			reports = []domain.OutbreakReport{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: reports, Pagination: pg})
	}
}

// NearbyReportsHandler returns reports within a radius of a point.
func NearbyReportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lng := c.QueryFloat("lng", 0)
		radius := c.QueryFloat("radius", 10000)
		limit := c.QueryInt("limit", 50)

		if lat == 0 && lng == 0 {
			return errBadRequest(c, "lat and lng are required")
		}
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return errBadRequest(c, "lat must be within [-90, 90] and lng within [-180, 180]")
		}
		if radius <= 0 || radius > 500000 {
			return errBadRequest(c, "radius must be between 1 and 500000 meters")
		}

		reports, err := deps.Reports.FindNearby(c.UserContext(), lat, lng, radius, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if reports == nil {
			reports = []domain.OutbreakReport{}
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(reports)
	}
}

// ListAlertsHandler returns recently generated regional alerts.
func ListAlertsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)

		alerts, err := deps.Alerts.ListRecent(c.UserContext(), limit)
		if err != nil {
			if errors.Is(err, domain.ErrRepositoryUnavailable) {
				return errUnavailable(c, "alert store unavailable")
			}
			return errInternal(c, err.Error())
		}
		if alerts == nil {
			alerts = []domain.RegionalAlert{}
		}
		return c.JSON(alerts)
	}
}

// EngineHealthHandler proxies the prediction engine's liveness probe.
func EngineHealthHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Spread.EngineHealthy(c.UserContext()) {
			return c.JSON(fiber.Map{"engine": "healthy"})
		}
		return c.Status(503).JSON(fiber.Map{"engine": "unreachable"})
	}
}
