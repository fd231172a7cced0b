package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	ordersserver "github.com/Apurer/go-gin-orders-api/go"
	orderworkflows "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/workflows"
	ordersports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/platform/metrics"
	platformobservability "github.com/Apurer/go-gin-orders-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
)

const serviceName = "orders-api"

// Run boots the orders HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	registry := metrics.NewRegistry()
	stack, err := BuildStack(ctx, cfg, instruments, registry.Registerer())
	if err != nil {
		return err
	}
	defer stack.Close()

	var workflows ordersports.WorkflowOrchestrator = orderworkflows.NewInlineOrderWorkflows(stack.Orders)
	if temporalClient, err := ConnectTemporal(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, confirming payments inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		workflows = orderworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	router := NewRouter(stack, workflows, registry, logger)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("orders API listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("orders API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("orders API shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// NewRouter assembles the gin engine with tracing, metrics, access logging and the API routes.
func NewRouter(stack *Stack, workflows ordersports.WorkflowOrchestrator, registry *metrics.Registry, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName), registry.GinMiddleware(), accessLog(logger))

	checks := map[string]ordersserver.HealthCheck{}
	if stack.DB != nil {
		db := stack.DB
		checks["postgres"] = func(ctx context.Context) error { return platformpostgres.Ping(ctx, db) }
	}
	if stack.Redis != nil {
		client := stack.Redis
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	handlers := ordersserver.ApiHandleFunctions{
		OrderAPI:   ordersserver.NewOrderAPI(stack.Orders, workflows),
		ProductAPI: ordersserver.NewProductAPI(stack.Catalog),
		HealthAPI:  ordersserver.NewHealthAPI(checks),
	}
	router = ordersserver.NewRouterWithGinEngine(router, handlers)
	router.GET("/metrics", gin.WrapH(registry.Handler()))
	return router
}

// accessLog writes one structured line per request and surfaces errors the handlers attached.
func accessLog(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		attrs := []slog.Attr{
			slog.String("http.method", c.Request.Method),
			slog.String("http.route", c.FullPath()),
			slog.Int("http.status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		}
		level := slog.LevelInfo
		if len(c.Errors) > 0 {
			level = slog.LevelError
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}
		logger.LogAttrs(c.Request.Context(), level, "http request", attrs...)
	}
}
