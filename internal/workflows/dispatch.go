package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// DispatchInput is the input for the alert dispatch workflow.
type DispatchInput struct {
	Region    string
	Message   string
	RiskLevel string
}

// AlertDispatchWorkflow records a regional alert, fans it out to the
// message broker, and stamps the delivery time. If fan-out fails the
// recorded alert is deleted (saga compensation) so the store never
// claims an alert that nobody received.
func AlertDispatchWorkflow(ctx workflow.Context, input DispatchInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting alert dispatch workflow", "region", input.Region, "riskLevel", input.RiskLevel)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Record the alert
	var alertID string
	err := workflow.ExecuteActivity(ctx, "RecordAlert", input).Get(ctx, &alertID)
	if err != nil {
		return err
	}

	// Step 2: Fan out to subscribers
	err = workflow.ExecuteActivity(ctx, "PublishAlert", alertID, input).Get(ctx, nil)
	if err != nil {
		logger.Warn("alert fan-out failed, compensating", "error", err)
		// Compensate: remove the recorded alert
		_ = workflow.ExecuteActivity(ctx, "DeleteAlert", alertID).Get(ctx, nil)
		return err
	}

	// Step 3: Stamp delivery
	err = workflow.ExecuteActivity(ctx, "MarkAlertDelivered", alertID).Get(ctx, nil)
	if err != nil {
		return err
	}

	logger.Info("Alert dispatched", "alertID", alertID)
	return nil
}
