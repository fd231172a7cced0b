package observability

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

// RestorationLog counts restoration failures and their outcomes on a Prometheus registry.
type RestorationLog struct {
	inner    ports.RestorationLog
	logger   *slog.Logger
	recorded *prometheus.CounterVec
	resolved prometheus.Counter
	retried  prometheus.Counter
}

// NewRestorationLog registers the restoration counters on reg and wraps inner.
func NewRestorationLog(inner ports.RestorationLog, reg prometheus.Registerer, logger *slog.Logger) (*RestorationLog, error) {
	if logger == nil {
		logger = defaultLogger()
	}
	l := &RestorationLog{
		inner:  inner,
		logger: logger,
		recorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orders_api",
			Subsystem: "stock",
			Name:      "restoration_failures_total",
			Help:      "Stock restorations that failed while cancelling an order.",
		}, []string{"product_id"}),
		resolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orders_api",
			Subsystem: "stock",
			Name:      "restorations_reconciled_total",
			Help:      "Failed stock restorations later reconciled.",
		}),
		retried: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orders_api",
			Subsystem: "stock",
			Name:      "restoration_retries_failed_total",
			Help:      "Reconciliation attempts that failed again.",
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{l.recorded, l.resolved, l.retried} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return l, nil
}

func (l *RestorationLog) Record(ctx context.Context, failure domain.RestorationFailure) (*domain.RestorationFailure, error) {
	out, err := l.inner.Record(ctx, failure)
	if err != nil {
		return nil, err
	}
	l.recorded.WithLabelValues(strconv.FormatInt(failure.ProductID, 10)).Inc()
	l.logger.LogAttrs(ctx, slog.LevelWarn, "stock restoration failure recorded",
		slog.Int64("restoration.id", out.ID),
		slog.String("order.number", out.OrderNumber),
		slog.Int64("product.id", out.ProductID))
	return out, nil
}

func (l *RestorationLog) Pending(ctx context.Context, limit int) ([]domain.RestorationFailure, error) {
	return l.inner.Pending(ctx, limit)
}

func (l *RestorationLog) MarkAttempt(ctx context.Context, id int64, reason string) error {
	if err := l.inner.MarkAttempt(ctx, id, reason); err != nil {
		return err
	}
	l.retried.Inc()
	return nil
}

func (l *RestorationLog) Resolve(ctx context.Context, id int64) error {
	if err := l.inner.Resolve(ctx, id); err != nil {
		return err
	}
	l.resolved.Inc()
	return nil
}

var _ ports.RestorationLog = (*RestorationLog)(nil)
