package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	types "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/observability/service"

// Service decorates the orders application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// CreateOrder assembles and persists a new order with instrumentation.
func (s *Service) CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderService.CreateOrder",
		attribute.Int("order.lines.requested", len(input.Lines)),
		attribute.String("order.delivery_mode", input.DeliveryMode),
		attribute.Bool("order.guest", input.CustomerID == nil),
	)
	defer span.End()

	s.logInfo(ctx, "creating order", slog.Int("lines", len(input.Lines)), slog.String("delivery_mode", input.DeliveryMode))
	result, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "create")
		return nil, s.handleError(ctx, span, err, "failed to create order")
	}
	span.SetAttributes(attribute.Int64("order.id", result.ID), attribute.String("order.number", result.Number))
	s.metrics.recordCreated(ctx, result.DeliveryMode)
	s.logInfo(ctx, "order created",
		slog.Int64("order.id", result.ID),
		slog.String("order.number", result.Number),
		slog.String("order.total", result.Total.StringFixed(2)))
	return result, nil
}

// GetOrder loads a single order.
func (s *Service) GetOrder(ctx context.Context, input types.OrderIdentifier) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderService.GetOrder", attribute.Int64("order.id", input.ID))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", input.ID))
	}
	return result, nil
}

func (s *Service) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderService.GetOrderByNumber", attribute.String("order.number", number))
	defer span.End()

	result, err := s.inner.GetOrderByNumber(ctx, number)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order by number", slog.String("order.number", number))
	}
	return result, nil
}

// ListOrders pages through orders.
func (s *Service) ListOrders(ctx context.Context, input types.ListOrdersInput) (*types.OrderPage, error) {
	ctx, span := s.startSpan(ctx, "OrderService.ListOrders",
		attribute.StringSlice("order.statuses.requested", input.Statuses),
		attribute.Int("page", input.Page),
		attribute.Int("size", input.Size),
	)
	defer span.End()

	result, err := s.inner.ListOrders(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.Any("statuses", input.Statuses))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(result.Items)), attribute.Int64("order.result.total", result.TotalItems))
	s.logInfo(ctx, "listed orders", slog.Int("count", len(result.Items)), slog.Int64("total", result.TotalItems))
	return result, nil
}

// UpdateStatus applies a lifecycle transition.
func (s *Service) UpdateStatus(ctx context.Context, input types.UpdateStatusInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderService.UpdateStatus",
		attribute.Int64("order.id", input.OrderID),
		attribute.String("order.status.requested", input.Status),
	)
	defer span.End()

	s.logInfo(ctx, "updating order status", slog.Int64("order.id", input.OrderID), slog.String("status", input.Status))
	result, err := s.inner.UpdateStatus(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "update_status")
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.Int64("order.id", input.OrderID))
	}
	s.metrics.recordTransition(ctx, result.Status)
	s.logInfo(ctx, "order status updated", slog.Int64("order.id", result.ID), slog.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) CancelOrder(ctx context.Context, input types.CancelOrderInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderService.CancelOrder", attribute.Int64("order.id", input.OrderID))
	defer span.End()

	s.logInfo(ctx, "cancelling order", slog.Int64("order.id", input.OrderID))
	result, err := s.inner.CancelOrder(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "cancel")
		return nil, s.handleError(ctx, span, err, "failed to cancel order", slog.Int64("order.id", input.OrderID))
	}
	s.metrics.recordTransition(ctx, result.Status)
	s.logInfo(ctx, "order cancelled", slog.Int64("order.id", result.ID), slog.String("reason", result.CancellationReason))
	return result, nil
}

func (s *Service) DeleteOrder(ctx context.Context, input types.OrderIdentifier) error {
	ctx, span := s.startSpan(ctx, "OrderService.DeleteOrder", attribute.Int64("order.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "deleting order", slog.Int64("order.id", input.ID))
	if err := s.inner.DeleteOrder(ctx, input); err != nil {
		s.metrics.recordRejected(ctx, "delete")
		return s.handleError(ctx, span, err, "failed to delete order", slog.Int64("order.id", input.ID))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "order deleted", slog.Int64("order.id", input.ID))
	return nil
}

// ConfirmPayment records a gateway confirmation.
func (s *Service) ConfirmPayment(ctx context.Context, input types.ConfirmPaymentInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderService.ConfirmPayment",
		attribute.Int64("order.id", input.OrderID),
		attribute.String("payment.method", input.Method),
	)
	defer span.End()

	s.logInfo(ctx, "confirming payment", slog.Int64("order.id", input.OrderID), slog.String("payment.method", input.Method))
	result, err := s.inner.ConfirmPayment(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "confirm_payment")
		return nil, s.handleError(ctx, span, err, "failed to confirm payment", slog.Int64("order.id", input.OrderID))
	}
	if result.Payment != nil {
		span.SetAttributes(attribute.String("payment.reference", result.Payment.Reference))
		s.metrics.recordPayment(ctx, result.Payment.Method)
	}
	s.logInfo(ctx, "payment confirmed", slog.Int64("order.id", result.ID), slog.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersCreated     metric.Int64Counter
	ordersTransitions metric.Int64Counter
	ordersDeleted     metric.Int64Counter
	ordersRejected    metric.Int64Counter
	paymentsConfirmed metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders created"))
	transitions, _ := m.Int64Counter("orders.service.transitions", metric.WithDescription("Number of lifecycle transitions applied"))
	deleted, _ := m.Int64Counter("orders.service.deleted", metric.WithDescription("Number of orders deleted"))
	rejected, _ := m.Int64Counter("orders.service.rejected", metric.WithDescription("Number of order operations that failed"))
	payments, _ := m.Int64Counter("orders.service.payments_confirmed", metric.WithDescription("Number of payments recorded"))
	return serviceMetrics{
		ordersCreated:     created,
		ordersTransitions: transitions,
		ordersDeleted:     deleted,
		ordersRejected:    rejected,
		paymentsConfirmed: payments,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, mode domain.DeliveryMode) {
	addCounter(ctx, m.ordersCreated, 1, attribute.String("order.delivery_mode", string(mode)))
}

func (m serviceMetrics) recordTransition(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.ordersTransitions, 1, attribute.String("order.status", string(status)))
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	addCounter(ctx, m.ordersDeleted, 1)
}

func (m serviceMetrics) recordRejected(ctx context.Context, operation string) {
	addCounter(ctx, m.ordersRejected, 1, attribute.String("operation", operation))
}

func (m serviceMetrics) recordPayment(ctx context.Context, method domain.PaymentMethod) {
	addCounter(ctx, m.paymentsConfirmed, 1, attribute.String("payment.method", string(method)))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
