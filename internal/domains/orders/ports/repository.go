package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrConflict is returned by Update when the stored status no longer matches the expected one.
	ErrConflict = errors.New("order was modified concurrently")
)

// ListFilter narrows order listings. Nil or empty fields do not filter.
type ListFilter struct {
	CustomerID *int64
	Statuses   []domain.Status
	Offset     int
	Limit      int
}

// Repository persists orders together with their line items and payment.
type Repository interface {
	// Create assigns identifiers and stores the order and its lines.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// Update writes status, tracking, cancellation and payment fields when the
	// stored status still equals expected.
	Update(ctx context.Context, order *domain.Order, expected domain.Status) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	// List returns one window ordered by creation time, newest first, plus the total match count.
	List(ctx context.Context, filter ListFilter) ([]*domain.Order, int64, error)
	Delete(ctx context.Context, id int64) error
}

// UnitOfWork scopes repository and stock calls to one transaction.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RestorationLog stores stock restorations that failed during cancellation.
type RestorationLog interface {
	Record(ctx context.Context, failure domain.RestorationFailure) (*domain.RestorationFailure, error)
	Pending(ctx context.Context, limit int) ([]domain.RestorationFailure, error)
	MarkAttempt(ctx context.Context, id int64, reason string) error
	Resolve(ctx context.Context, id int64) error
}
