package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	types "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/activities/orders"
)

// RunPaymentConfirmationSequence records the payment and reads back the order to confirm it is PAID.
func RunPaymentConfirmationSequence(ctx workflow.Context, input types.ConfirmPaymentInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("payment confirmation sequence started", "orderId", input.OrderID)
	confirmOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	loadOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
		},
	}

	var confirmed domain.Order
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, confirmOptions), orderactivities.ConfirmPaymentActivityName, input).Get(ctx, &confirmed)
	if err != nil {
		logger.Error("payment confirmation sequence failed", "orderId", input.OrderID, "error", err)
		return nil, err
	}
	logger.Info("payment confirmation sequence recorded payment", "orderId", confirmed.ID, "status", string(confirmed.Status))

	var current domain.Order
	lookup := types.OrderIdentifier{ID: confirmed.ID}
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, loadOptions), orderactivities.LoadOrderActivityName, lookup).Get(ctx, &current); err != nil {
		logger.Warn("payment confirmation sequence could not reload order", "orderId", confirmed.ID, "error", err)
		return &confirmed, nil
	}
	return &current, nil
}
