package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-orders-api/internal/app/api"
	platformobservability "github.com/Apurer/go-gin-orders-api/internal/platform/observability"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "orders-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := api.LoadConfig()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	stack, err := api.BuildStack(ctx, cfg, instruments, nil)
	if err != nil {
		logger.Error("failed to build order services", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer stack.Close()
	if stack.DB == nil {
		logger.Warn("worker is running on in-memory repositories; payments will not reach the API's store")
	}
	activities := orderactivities.NewActivities(stack.Orders)

	temporalClient, err := api.ConnectTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.PaymentConfirmationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.PaymentConfirmationWorkflow, workflow.RegisterOptions{Name: orderworkflows.PaymentConfirmationWorkflowName})
	w.RegisterActivityWithOptions(activities.ConfirmPayment, activity.RegisterOptions{Name: orderactivities.ConfirmPaymentActivityName})
	w.RegisterActivityWithOptions(activities.LoadOrder, activity.RegisterOptions{Name: orderactivities.LoadOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.PaymentConfirmationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
