package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/app/api"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN not set; cannot reconcile stock restorations")
	}
	stack, err := api.BuildStack(ctx, cfg, nil, nil)
	if err != nil {
		log.Fatalf("failed to build order services: %v", err)
	}
	defer stack.Close()
	if stack.DB == nil {
		log.Fatal("postgres connection failed; cannot reconcile stock restorations")
	}

	report, err := stack.Reconciler.Run(ctx, cfg.ReconcileBatchSize)
	if err != nil {
		log.Fatalf("failed to reconcile stock restorations: %v", err)
	}
	logger.Info("stock reconciliation completed",
		slog.Int("examined", report.Examined),
		slog.Int("resolved", report.Resolved),
		slog.Int("failed", report.Failed))
}
