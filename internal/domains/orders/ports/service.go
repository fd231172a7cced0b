package ports

import (
	"context"

	types "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// Service exposes order use cases to adapters.
type Service interface {
	CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, input types.OrderIdentifier) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error)
	ListOrders(ctx context.Context, input types.ListOrdersInput) (*types.OrderPage, error)
	UpdateStatus(ctx context.Context, input types.UpdateStatusInput) (*domain.Order, error)
	CancelOrder(ctx context.Context, input types.CancelOrderInput) (*domain.Order, error)
	DeleteOrder(ctx context.Context, input types.OrderIdentifier) error
	ConfirmPayment(ctx context.Context, input types.ConfirmPaymentInput) (*domain.Order, error)
}

// WorkflowOrchestrator runs order operations that may be executed durably.
type WorkflowOrchestrator interface {
	ConfirmPayment(ctx context.Context, input types.ConfirmPaymentInput) (*domain.Order, error)
}
