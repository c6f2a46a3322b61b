package postgres

import (
	"context"
	"fmt"

	"github.com/epiwatch/epiwatch/internal/core/domain"
)

// AlertRepo implements ports.AlertRepository with pgx.
type AlertRepo struct {
	db *DB
}

// NewAlertRepo creates a new AlertRepo.
func NewAlertRepo(db *DB) *AlertRepo {
	return &AlertRepo{db: db}
}

// Insert records a generated regional alert and fills in its ID.
func (r *AlertRepo) Insert(ctx context.Context, alert *domain.RegionalAlert) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO regional_alerts (region, message, risk_level, generated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, alert.Region, alert.Message, alert.RiskLevel, alert.GeneratedAt).Scan(&alert.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
	return nil
}

// MarkDelivered stamps the alert's delivery time.
func (r *AlertRepo) MarkDelivered(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE regional_alerts SET delivered_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
	return nil
}

// Delete removes an alert record. Used to roll back a failed dispatch.
func (r *AlertRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM regional_alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
	return nil
}

// ListRecent returns the newest alerts first.
func (r *AlertRepo) ListRecent(ctx context.Context, limit int) ([]domain.RegionalAlert, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, region, message, risk_level, generated_at, delivered_at
		FROM regional_alerts
		ORDER BY generated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
	defer rows.Close()

	var alerts []domain.RegionalAlert
	for rows.Next() {
		var a domain.RegionalAlert
		if err := rows.Scan(&a.ID, &a.Region, &a.Message, &a.RiskLevel, &a.GeneratedAt, &a.DeliveredAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
