package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/epiwatch/epiwatch/internal/core/domain"
	"github.com/epiwatch/epiwatch/internal/core/ports"
	"github.com/epiwatch/epiwatch/internal/pkg/metrics"
)

// DispatchActivities holds the activity implementations for the alert
// dispatch workflow.
type DispatchActivities struct {
	Alerts    ports.AlertRepository
	Publisher ports.EventPublisher
}

// RecordAlert persists the alert and returns its generated ID.
func (a *DispatchActivities) RecordAlert(ctx context.Context, input DispatchInput) (string, error) {
	alert := &domain.RegionalAlert{
		Region:      input.Region,
		Message:     input.Message,
		RiskLevel:   input.RiskLevel,
		GeneratedAt: time.Now().UTC(),
	}
	if err := a.Alerts.Insert(ctx, alert); err != nil {
		return "", fmt.Errorf("record alert: %w", err)
	}
	return alert.ID, nil
}

// PublishAlert fans the alert out on JetStream and the broadcast subject.
func (a *DispatchActivities) PublishAlert(ctx context.Context, alertID string, input DispatchInput) error {
	alert := &domain.RegionalAlert{
		ID:          alertID,
		Region:      input.Region,
		Message:     input.Message,
		RiskLevel:   input.RiskLevel,
		GeneratedAt: time.Now().UTC(),
	}
	if err := a.Publisher.PublishRegionalAlert(ctx, alert); err != nil {
		return fmt.Errorf("publish alert %s: %w", alertID, err)
	}

	if data, err := json.Marshal(alert); err == nil {
		// Best effort: websocket relays pick this up, JetStream is the
		// durable path.
		_ = a.Publisher.PublishBroadcast(ctx, data)
	}

	metrics.AlertsDispatched.Inc()
	return nil
}

// MarkAlertDelivered stamps the delivery time on the alert record.
func (a *DispatchActivities) MarkAlertDelivered(ctx context.Context, alertID string) error {
	if err := a.Alerts.MarkDelivered(ctx, alertID); err != nil {
		return fmt.Errorf("mark delivered %s: %w", alertID, err)
	}
	return nil
}

// DeleteAlert removes an alert record (saga compensation / rollback).
func (a *DispatchActivities) DeleteAlert(ctx context.Context, alertID string) error {
	if err := a.Alerts.Delete(ctx, alertID); err != nil {
		return fmt.Errorf("delete alert %s: %w", alertID, err)
	}
	return nil
}
