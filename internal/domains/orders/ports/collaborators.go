package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCustomerNotFound  = errors.New("customer not found")
)

// Product is the catalog data an order line freezes.
type Product struct {
	ID        int64
	Reference string
	Name      string
	Price     decimal.Decimal
}

// StockLedger is the catalog contract the order core consumes.
type StockLedger interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	CheckAvailable(ctx context.Context, id int64, qty int) (bool, error)
	// Reserve atomically takes qty units or fails with ErrInsufficientStock.
	Reserve(ctx context.Context, id int64, qty int) error
	// Release atomically returns qty units.
	Release(ctx context.Context, id int64, qty int) error
}

// Customer is the purchaser data the order core reads.
type Customer struct {
	ID       int64
	Email    string
	FullName string
}

// CustomerDirectory resolves authenticated purchasers.
type CustomerDirectory interface {
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
}

// EventPublisher delivers order events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}

// IdentifierGenerator produces collision-free business identifiers.
type IdentifierGenerator interface {
	OrderNumber() string
	PaymentReference() string
	TrackingNumber() string
	EventID() string
}
