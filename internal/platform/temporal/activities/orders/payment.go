package orders

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	types "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

const (
	// ConfirmPaymentActivityName records a gateway confirmation against an order.
	ConfirmPaymentActivityName = "orders.activities.ConfirmPayment"
	// LoadOrderActivityName reads the current order state.
	LoadOrderActivityName = "orders.activities.LoadOrder"
)

// Application error types carried across the workflow boundary for business rejections.
const (
	ErrorTypeNotFound          = "OrderNotFound"
	ErrorTypeInvalidInput      = "OrderInvalidInput"
	ErrorTypeInvalidState      = "OrderInvalidState"
	ErrorTypeInvalidTransition = "OrderInvalidTransition"
)

var errorTypes = []struct {
	name     string
	sentinel error
}{
	{ErrorTypeNotFound, ports.ErrNotFound},
	{ErrorTypeInvalidInput, application.ErrInvalidInput},
	{ErrorTypeInvalidState, application.ErrInvalidState},
	{ErrorTypeInvalidTransition, application.ErrInvalidTransition},
}

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the orders service into the Temporal activities bundle.
// service should be the inline application service, not a workflow-backed one.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// ConfirmPayment applies the gateway confirmation. Replays with the same gateway
// reference return the already paid order.
func (a *Activities) ConfirmPayment(ctx context.Context, input types.ConfirmPaymentInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("payment activity not initialized", "orderId", input.OrderID)
		return nil, errors.New("payment activity not initialized")
	}
	logger.Info("ConfirmPayment activity started", "orderId", input.OrderID, "gatewayReference", input.GatewayReference)
	order, err := a.service.ConfirmPayment(ctx, input)
	if err != nil {
		logger.Error("ConfirmPayment activity failed", "orderId", input.OrderID, "error", err)
		return nil, classify(err)
	}
	logger.Info("ConfirmPayment activity completed", "orderId", order.ID, "orderNumber", order.Number)
	return order, nil
}

// LoadOrder returns the order so the workflow can verify the outcome.
func (a *Activities) LoadOrder(ctx context.Context, input types.OrderIdentifier) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		return nil, errors.New("payment activity not initialized")
	}
	order, err := a.service.GetOrder(ctx, input)
	if err != nil {
		logger.Error("LoadOrder activity failed", "orderId", input.ID, "error", err)
		return nil, classify(err)
	}
	return order, nil
}

// classify marks business errors as non-retryable; infrastructure errors stay retryable.
func classify(err error) error {
	for _, t := range errorTypes {
		if errors.Is(err, t.sentinel) {
			return temporal.NewNonRetryableApplicationError(err.Error(), t.name, nil)
		}
	}
	return err
}

// RestoreError maps a workflow failure caused by a business rejection back onto
// the application sentinel so callers can branch with errors.Is.
func RestoreError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	for _, t := range errorTypes {
		if appErr.Type() == t.name {
			return fmt.Errorf("%w: %s", t.sentinel, appErr.Error())
		}
	}
	return err
}
