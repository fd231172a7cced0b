package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
)

var _ ports.RestorationLog = (*RestorationLog)(nil)

// RestorationLog persists failed stock restorations for the reconciler.
type RestorationLog struct {
	db *gorm.DB
}

func NewRestorationLog(db *gorm.DB) *RestorationLog {
	return &RestorationLog{db: db}
}

func (l *RestorationLog) Record(ctx context.Context, failure domain.RestorationFailure) (*domain.RestorationFailure, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	attempts := failure.Attempts
	if attempts == 0 {
		attempts = 1
	}
	record := restorationRecord{
		OrderID:     failure.OrderID,
		OrderNumber: failure.OrderNumber,
		ProductID:   failure.ProductID,
		Quantity:    failure.Quantity,
		Reason:      failure.Reason,
		Attempts:    attempts,
		CreatedAt:   failure.CreatedAt,
	}
	if err := platformpostgres.Conn(ctx, l.db).Create(&record).Error; err != nil {
		return nil, err
	}
	out := record.toDomain()
	return &out, nil
}

// Pending returns unresolved failures, oldest first.
func (l *RestorationLog) Pending(ctx context.Context, limit int) ([]domain.RestorationFailure, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	query := platformpostgres.Conn(ctx, l.db).
		Where("resolved_at IS NULL").
		Order("created_at, id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []restorationRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]domain.RestorationFailure, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (l *RestorationLog) MarkAttempt(ctx context.Context, id int64, reason string) error {
	return l.update(ctx, id, map[string]any{
		"attempts":   gorm.Expr("attempts + 1"),
		"reason":     reason,
		"updated_at": gorm.Expr("NOW()"),
	})
}

func (l *RestorationLog) Resolve(ctx context.Context, id int64) error {
	return l.update(ctx, id, map[string]any{
		"resolved_at": gorm.Expr("NOW()"),
		"updated_at":  gorm.Expr("NOW()"),
	})
}

func (l *RestorationLog) update(ctx context.Context, id int64, values map[string]any) error {
	if err := l.ensureDB(); err != nil {
		return err
	}
	result := platformpostgres.Conn(ctx, l.db).
		Model(&restorationRecord{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (l *RestorationLog) ensureDB() error {
	if l == nil || l.db == nil {
		return errors.New("postgres restoration log not configured")
	}
	return nil
}
