package types

import (
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/shared/pagination"
)

// LineInput requests quantity units of a product.
type LineInput struct {
	ProductID int64
	Quantity  int
}

// CreateOrderInput is the order assembler request. Exactly one of CustomerID and Guest is set.
// A non-empty IdempotencyKey makes retries of the same request return the original order.
type CreateOrderInput struct {
	IdempotencyKey string
	CustomerID     *int64
	Guest          *domain.GuestContact
	DeliveryMode   string
	Address        domain.Address
	Comment        string
	Lines          []LineInput
}

// OrderIdentifier addresses a single order.
type OrderIdentifier struct {
	ID int64
}

// ListOrdersInput filters the order listing. Page is zero-based.
type ListOrdersInput struct {
	CustomerID *int64
	Statuses   []string
	Page       int
	Size       int
}

type UpdateStatusInput struct {
	OrderID int64
	Status  string
}

type CancelOrderInput struct {
	OrderID int64
	Reason  string
}

// ConfirmPaymentInput carries the gateway confirmation. GatewayReference makes retries idempotent.
type ConfirmPaymentInput struct {
	OrderID          int64
	Method           string
	GatewayReference string
	Details          string
}

// OrderPage is one page of orders.
type OrderPage = pagination.Page[*domain.Order]

// ReconciliationReport summarizes a stock reconciliation run.
type ReconciliationReport struct {
	Examined int
	Resolved int
	Failed   int
}
