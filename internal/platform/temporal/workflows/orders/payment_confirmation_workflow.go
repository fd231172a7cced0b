package orders

import (
	"go.temporal.io/sdk/workflow"

	types "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/platform/temporal/sequences"
)

const (
	// PaymentConfirmationWorkflowName is the public identifier for registering the workflow.
	PaymentConfirmationWorkflowName = "orders.workflows.PaymentConfirmation"
	// PaymentConfirmationTaskQueue is the queue consumed by the worker processing payment workflows.
	PaymentConfirmationTaskQueue = "ORDER_PAYMENTS"
)

// PaymentConfirmationWorkflowInput carries a gateway confirmation into the workflow.
type PaymentConfirmationWorkflowInput struct {
	Command types.ConfirmPaymentInput
	TraceID string
}

// PaymentConfirmationWorkflow durably records a payment confirmation for an order.
func PaymentConfirmationWorkflow(ctx workflow.Context, input PaymentConfirmationWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	orderID := input.Command.OrderID
	logger.Info("PaymentConfirmationWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)
	order, err := sequences.RunPaymentConfirmationSequence(ctx, input.Command)
	if err != nil {
		logger.Error("PaymentConfirmationWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return nil, err
	}
	logger.Info("PaymentConfirmationWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID, "status", string(order.Status))...)
	return order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
