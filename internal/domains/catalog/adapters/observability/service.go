package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	catalogdomain "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
)

const tracerName = "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/observability/service"

// Service decorates the stock ledger with tracing, logging, and metrics.
type Service struct {
	inner   catalogports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics ledgerMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newLedgerMetrics(m)
	}
}

// New wraps the core catalog service.
func New(inner catalogports.Service, opts ...Option) catalogports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) SaveProduct(ctx context.Context, product *catalogdomain.Product) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.SaveProduct",
		trace.WithAttributes(attribute.String("product.reference", product.Reference)))
	defer span.End()

	result, err := s.inner.SaveProduct(ctx, product)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to save product", slog.String("product.reference", product.Reference))
	}
	s.logInfo(ctx, "product saved", slog.Int64("product.id", result.ID), slog.Int("product.stock", result.Stock))
	return result, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	result, err := s.inner.GetProduct(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load product", slog.Int64("product.id", id))
	}
	return result, nil
}

func (s *Service) CheckAvailable(ctx context.Context, id int64, qty int) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CheckAvailable",
		trace.WithAttributes(attribute.Int64("product.id", id), attribute.Int("quantity", qty)))
	defer span.End()

	ok, err := s.inner.CheckAvailable(ctx, id, qty)
	if err != nil {
		return false, s.handleError(ctx, span, err, "availability check failed", slog.Int64("product.id", id))
	}
	span.SetAttributes(attribute.Bool("product.available", ok))
	return ok, nil
}

func (s *Service) AdjustStock(ctx context.Context, id int64, newQty int) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.AdjustStock",
		trace.WithAttributes(attribute.Int64("product.id", id), attribute.Int("stock.new", newQty)))
	defer span.End()

	s.logInfo(ctx, "adjusting stock", slog.Int64("product.id", id), slog.Int("stock.new", newQty))
	result, err := s.inner.AdjustStock(ctx, id, newQty)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to adjust stock", slog.Int64("product.id", id))
	}
	s.metrics.recordAdjusted(ctx)
	return result, nil
}

func (s *Service) Reserve(ctx context.Context, id int64, qty int) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Reserve",
		trace.WithAttributes(attribute.Int64("product.id", id), attribute.Int("quantity", qty)))
	defer span.End()

	result, err := s.inner.Reserve(ctx, id, qty)
	if err != nil {
		if errors.Is(err, catalogports.ErrInsufficientStock) {
			s.metrics.recordRejected(ctx)
		}
		return nil, s.handleError(ctx, span, err, "stock reservation failed", slog.Int64("product.id", id), slog.Int("quantity", qty))
	}
	s.metrics.recordReserved(ctx, qty)
	s.logInfo(ctx, "stock reserved", slog.Int64("product.id", id), slog.Int("quantity", qty), slog.Int("stock.remaining", result.Stock))
	return result, nil
}

func (s *Service) Release(ctx context.Context, id int64, qty int) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Release",
		trace.WithAttributes(attribute.Int64("product.id", id), attribute.Int("quantity", qty)))
	defer span.End()

	result, err := s.inner.Release(ctx, id, qty)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "stock release failed", slog.Int64("product.id", id), slog.Int("quantity", qty))
	}
	s.metrics.recordReleased(ctx, qty)
	s.logInfo(ctx, "stock released", slog.Int64("product.id", id), slog.Int("quantity", qty), slog.Int("stock.remaining", result.Stock))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
	}
	return err
}

type ledgerMetrics struct {
	unitsReserved metric.Int64Counter
	unitsReleased metric.Int64Counter
	rejections    metric.Int64Counter
	adjustments   metric.Int64Counter
}

func newLedgerMetrics(m metric.Meter) ledgerMetrics {
	if m == nil {
		return ledgerMetrics{}
	}
	reserved, _ := m.Int64Counter("catalog.stock.units_reserved", metric.WithDescription("Units taken from stock by orders"))
	released, _ := m.Int64Counter("catalog.stock.units_released", metric.WithDescription("Units returned to stock"))
	rejections, _ := m.Int64Counter("catalog.stock.reservations_rejected", metric.WithDescription("Reservations refused for insufficient stock"))
	adjustments, _ := m.Int64Counter("catalog.stock.adjustments", metric.WithDescription("Absolute stock overrides"))
	return ledgerMetrics{unitsReserved: reserved, unitsReleased: released, rejections: rejections, adjustments: adjustments}
}

func (m ledgerMetrics) recordReserved(ctx context.Context, qty int) {
	if m.unitsReserved != nil {
		m.unitsReserved.Add(ctx, int64(qty))
	}
}

func (m ledgerMetrics) recordReleased(ctx context.Context, qty int) {
	if m.unitsReleased != nil {
		m.unitsReleased.Add(ctx, int64(qty))
	}
}

func (m ledgerMetrics) recordRejected(ctx context.Context) {
	if m.rejections != nil {
		m.rejections.Add(ctx, 1)
	}
}

func (m ledgerMetrics) recordAdjusted(ctx context.Context) {
	if m.adjustments != nil {
		m.adjustments.Add(ctx, 1)
	}
}

var _ catalogports.Service = (*Service)(nil)
