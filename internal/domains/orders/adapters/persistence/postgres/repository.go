package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders, their lines and payment in PostgreSQL using GORM.
type Repository struct {
	db  *gorm.DB
	uow *platformpostgres.UnitOfWork
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and schema.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, uow: platformpostgres.NewUnitOfWork(db)}
}

// Create inserts the order together with its line items.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toOrderRecord(order)
	record.ID = 0
	for i := range record.Lines {
		record.Lines[i].ID = 0
		record.Lines[i].OrderID = 0
	}
	record.Payment = nil
	if err := platformpostgres.Conn(ctx, r.db).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("order number %s already exists: %w", order.Number, err)
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Update writes the mutable order fields guarded by the expected status and
// inserts a newly attached payment in the same transaction.
func (r *Repository) Update(ctx context.Context, order *domain.Order, expected domain.Status) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	err := r.uow.RunInTx(ctx, func(ctx context.Context) error {
		tx := platformpostgres.Conn(ctx, r.db)
		result := tx.Model(&orderRecord{}).
			Where("id = ? AND status = ?", order.ID, string(expected)).
			Updates(map[string]any{
				"status":              string(order.Status),
				"tracking_number":     order.TrackingNumber,
				"cancellation_reason": order.CancellationReason,
				"updated_at":          order.UpdatedAt,
			})
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("tracking number %s already assigned: %w", order.TrackingNumber, ports.ErrConflict)
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&orderRecord{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ports.ErrNotFound
			}
			return ports.ErrConflict
		}
		if order.Payment != nil && order.Payment.ID == 0 {
			payment := toPaymentRecord(order.ID, order.Payment)
			if err := tx.Create(&payment).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ports.ErrConflict
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, order.ID)
}

// GetByID loads an order with its lines and payment.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByNumber loads an order by its public number.
func (r *Repository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return r.first(ctx, "number = ?", number)
}

// List returns a window of orders newest first and the total number of matches.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.CustomerID != nil {
			db = db.Where("customer_id = ?", *filter.CustomerID)
		}
		if len(filter.Statuses) > 0 {
			statuses := make([]string, 0, len(filter.Statuses))
			for _, status := range filter.Statuses {
				statuses = append(statuses, string(status))
			}
			db = db.Where("status = ANY(?)", pq.Array(statuses))
		}
		return db
	}

	var total int64
	if err := platformpostgres.Conn(ctx, r.db).Model(&orderRecord{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query := platformpostgres.Conn(ctx, r.db).
		Scopes(scope).
		Preload("Lines", orderLines).
		Preload("Payment").
		Order("created_at DESC, id DESC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var records []orderRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for _, record := range records {
		orders = append(orders, record.toDomain())
	}
	return orders, total, nil
}

// Delete removes the order, its lines and its payment.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.uow.RunInTx(ctx, func(ctx context.Context) error {
		tx := platformpostgres.Conn(ctx, r.db)
		if err := tx.Where("order_id = ?", id).Delete(&paymentRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&lineItemRecord{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&orderRecord{}, "id = ?", id)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("tracking number %s already assigned: %w", order.TrackingNumber, ports.ErrConflict)
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		return nil
	})
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := platformpostgres.Conn(ctx, r.db).
		Preload("Lines", orderLines).
		Preload("Payment").
		First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}
