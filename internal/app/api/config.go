package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	orderkafka "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/events/kafka"
)

const (
	defaultOrderTopic      = "orders.events"
	defaultCacheTTL        = 5 * time.Minute
	defaultShutdownTimeout = 15 * time.Second
	defaultReconcileBatch  = 100
)

// Config carries environment-driven settings for the orders processes.
type Config struct {
	Port               string
	PostgresDSN        string
	MigrateOnStart     bool
	TemporalAddress    string
	TemporalNamespace  string
	TemporalDisabled   bool
	RedisAddr          string
	OrderCacheTTL      time.Duration
	KafkaBrokers       []string
	KafkaOrderTopic    string
	ShippingPolicyFile string
	StandardFee        string
	ExpressFee         string
	ShutdownTimeout    time.Duration
	ReconcileBatchSize int
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:               envDefault("PORT", "8080"),
		PostgresDSN:        strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		MigrateOnStart:     isTruthy(envDefault("MIGRATE_ON_START", "true")),
		TemporalAddress:    envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:  envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:   isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		OrderCacheTTL:      defaultCacheTTL,
		KafkaBrokers:       orderkafka.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic:    envDefault("KAFKA_ORDER_TOPIC", defaultOrderTopic),
		ShippingPolicyFile: strings.TrimSpace(os.Getenv("SHIPPING_POLICY_FILE")),
		StandardFee:        strings.TrimSpace(os.Getenv("SHIPPING_STANDARD_FEE")),
		ExpressFee:         strings.TrimSpace(os.Getenv("SHIPPING_EXPRESS_FEE")),
		ShutdownTimeout:    defaultShutdownTimeout,
		ReconcileBatchSize: defaultReconcileBatch,
	}
	if seconds, ok, err := positiveInt("ORDER_CACHE_TTL_SECONDS"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.OrderCacheTTL = time.Duration(seconds) * time.Second
	}
	if seconds, ok, err := positiveInt("SHUTDOWN_TIMEOUT_SECONDS"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.ShutdownTimeout = time.Duration(seconds) * time.Second
	}
	if size, ok, err := positiveInt("RECONCILE_BATCH_SIZE"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.ReconcileBatchSize = size
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric")
	}
	return cfg, nil
}

func positiveInt(key string) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, false, fmt.Errorf("%s must be a positive integer", key)
	}
	return value, true, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
