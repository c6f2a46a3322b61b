package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/epiwatch/epiwatch/internal/core/domain"
)

// activeReportLimit caps how many reports feed a single prediction.
const activeReportLimit = 50

// OutbreakRepo implements ports.OutbreakRepository with pgx.
type OutbreakRepo struct {
	db *DB
}

// NewOutbreakRepo creates a new OutbreakRepo.
func NewOutbreakRepo(db *DB) *OutbreakRepo {
	return &OutbreakRepo{db: db}
}

// FetchActive returns reports inside the bounding box no older than
// recencyDays, most recent first, capped at activeReportLimit. Bounds
// are validated here so the prediction pipeline fails before touching
// the database.
func (r *OutbreakRepo) FetchActive(ctx context.Context, bounds domain.Bounds, disease string, recencyDays int) ([]domain.OutbreakReport, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, ST_Y(location::geometry) as lat, ST_X(location::geometry) as lng,
		       cases, disease, severity, reported_at, created_at
		FROM outbreak_reports
		WHERE ST_Y(location::geometry) BETWEEN $1 AND $2
		  AND ST_X(location::geometry) BETWEEN $3 AND $4
		  AND reported_at >= NOW() - make_interval(days => $5)
		  AND ($6 = '' OR disease = $6)
		ORDER BY reported_at DESC
		LIMIT $7
	`, bounds.South, bounds.North, bounds.West, bounds.East, recencyDays, disease, activeReportLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
	defer rows.Close()

	reports, err := scanReports(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
	return reports, nil
}

// Insert persists a single report and fills in its generated ID and
// creation timestamp.
func (r *OutbreakRepo) Insert(ctx context.Context, report *domain.OutbreakReport) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO outbreak_reports (location, cases, disease, severity, reported_at)
		VALUES (ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3, $4, $5, $6)
		RETURNING id, created_at
	`, report.Lng, report.Lat, report.Cases, report.Disease, report.Severity, report.ReportedAt).
		Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
	return nil
}

// InsertBatch inserts many reports using pgx.Batch.
func (r *OutbreakRepo) InsertBatch(ctx context.Context, reports []domain.OutbreakReport) error {
	if len(reports) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, report := range reports {
		batch.Queue(`
			INSERT INTO outbreak_reports (location, cases, disease, severity, reported_at)
			VALUES (ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3, $4, $5, $6)
		`, report.Lng, report.Lat, report.Cases, report.Disease, report.Severity, report.ReportedAt)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range reports {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByID returns a report by UUID. A missing row is ErrReportNotFound;
// any other failure wraps ErrRepositoryUnavailable.
func (r *OutbreakRepo) GetByID(ctx context.Context, id string) (*domain.OutbreakReport, error) {
	var report domain.OutbreakReport
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, ST_Y(location::geometry) as lat, ST_X(location::geometry) as lng,
		       cases, disease, severity, reported_at, created_at
		FROM outbreak_reports WHERE id = $1
	`, id).Scan(
		&report.ID, &report.Lat, &report.Lng,
		&report.Cases, &report.Disease, &report.Severity,
		&report.ReportedAt, &report.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
	return &report, nil
}

// ListInBounds returns a page of reports inside a bounding box plus the
// total count for pagination.
func (r *OutbreakRepo) ListInBounds(ctx context.Context, bounds domain.Bounds, disease string, limit, offset int) ([]domain.OutbreakReport, int, error) {
	var total int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM outbreak_reports
		WHERE ST_Y(location::geometry) BETWEEN $1 AND $2
		  AND ST_X(location::geometry) BETWEEN $3 AND $4
		  AND ($5 = '' OR disease = $5)
	`, bounds.South, bounds.North, bounds.West, bounds.East, disease).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, ST_Y(location::geometry) as lat, ST_X(location::geometry) as lng,
		       cases, disease, severity, reported_at, created_at
		FROM outbreak_reports
		WHERE ST_Y(location::geometry) BETWEEN $1 AND $2
		  AND ST_X(location::geometry) BETWEEN $3 AND $4
		  AND ($5 = '' OR disease = $5)
		ORDER BY reported_at DESC
		LIMIT $6 OFFSET $7
	`, bounds.South, bounds.North, bounds.West, bounds.East, disease, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
	defer rows.Close()

	reports, err := scanReports(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
	return reports, total, nil
}

// FindNearby returns reports within radiusMeters using PostGIS ST_DWithin.
func (r *OutbreakRepo) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]domain.OutbreakReport, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, ST_Y(location::geometry) as lat, ST_X(location::geometry) as lng,
		       cases, disease, severity, reported_at, created_at
		FROM outbreak_reports
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY ST_Distance(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography)
		LIMIT $4
	`, lng, lat, radiusMeters, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
	defer rows.Close()

	return scanReports(rows)
}

func scanReports(rows pgx.Rows) ([]domain.OutbreakReport, error) {
	var reports []domain.OutbreakReport
	for rows.Next() {
		var report domain.OutbreakReport
		if err := rows.Scan(
			&report.ID, &report.Lat, &report.Lng,
			&report.Cases, &report.Disease, &report.Severity,
			&report.ReportedAt, &report.CreatedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
