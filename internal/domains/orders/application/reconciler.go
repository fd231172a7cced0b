package application

import (
	"context"
	"errors"
	"log/slog"

	types "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

// Reconciler retries stock restorations that failed while cancelling orders.
type Reconciler struct {
	log    ports.RestorationLog
	stock  ports.StockLedger
	logger *slog.Logger
}

func NewReconciler(log ports.RestorationLog, stock ports.StockLedger, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{log: log, stock: stock, logger: logger}
}

// Run releases stock for up to limit pending failures, resolving each one that succeeds.
func (r *Reconciler) Run(ctx context.Context, limit int) (types.ReconciliationReport, error) {
	var report types.ReconciliationReport
	if r == nil || r.log == nil || r.stock == nil {
		return report, errors.New("reconciler not configured")
	}
	pending, err := r.log.Pending(ctx, limit)
	if err != nil {
		return report, err
	}
	for _, failure := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Examined++
		if err := r.stock.Release(ctx, failure.ProductID, failure.Quantity); err != nil {
			report.Failed++
			r.logger.LogAttrs(ctx, slog.LevelWarn, "stock restoration retry failed",
				slog.Int64("restoration.id", failure.ID),
				slog.String("order.number", failure.OrderNumber),
				slog.Int64("product.id", failure.ProductID),
				slog.String("error", err.Error()))
			if markErr := r.log.MarkAttempt(ctx, failure.ID, err.Error()); markErr != nil {
				return report, markErr
			}
			continue
		}
		if err := r.log.Resolve(ctx, failure.ID); err != nil {
			return report, err
		}
		report.Resolved++
		r.logger.LogAttrs(ctx, slog.LevelInfo, "stock restoration reconciled",
			slog.Int64("restoration.id", failure.ID),
			slog.String("order.number", failure.OrderNumber),
			slog.Int64("product.id", failure.ProductID),
			slog.Int("quantity", failure.Quantity))
	}
	return report, nil
}
