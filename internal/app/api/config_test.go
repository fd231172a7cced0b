package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "POSTGRES_DSN", "REDIS_ADDR", "KAFKA_BROKERS", "KAFKA_ORDER_TOPIC", "ORDER_CACHE_TTL_SECONDS", "SHUTDOWN_TIMEOUT_SECONDS", "TEMPORAL_DISABLED", "MIGRATE_ON_START"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.PostgresDSN)
	assert.True(t, cfg.MigrateOnStart)
	assert.False(t, cfg.TemporalDisabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "orders.events", cfg.KafkaOrderTopic)
	assert.Equal(t, 5*time.Minute, cfg.OrderCacheTTL)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.ReconcileBatchSize)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("ORDER_CACHE_TTL_SECONDS", "30")
	t.Setenv("TEMPORAL_DISABLED", "yes")
	t.Setenv("MIGRATE_ON_START", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.OrderCacheTTL)
	assert.True(t, cfg.TemporalDisabled)
	assert.False(t, cfg.MigrateOnStart)
}

func TestLoadConfigRejectsInvalidNumbers(t *testing.T) {
	t.Setenv("ORDER_CACHE_TTL_SECONDS", "-1")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("ORDER_CACHE_TTL_SECONDS", "")
	t.Setenv("PORT", "http")
	_, err = LoadConfig()
	require.Error(t, err)
}

func TestResolveShippingPolicy(t *testing.T) {
	policy, err := ResolveShippingPolicy(Config{})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2500).Equal(policy.Standard))
	assert.True(t, decimal.NewFromInt(5000).Equal(policy.Express))

	path := filepath.Join(t.TempDir(), "shipping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("standard: \"1500.50\"\nexpress: \"4000\"\n"), 0o600))

	policy, err = ResolveShippingPolicy(Config{ShippingPolicyFile: path, ExpressFee: "4500"})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1500.50").Equal(policy.Standard))
	assert.True(t, decimal.NewFromInt(4500).Equal(policy.Express))
}

func TestResolveShippingPolicyRejectsBadFees(t *testing.T) {
	_, err := ResolveShippingPolicy(Config{StandardFee: "cheap"})
	require.Error(t, err)

	_, err = ResolveShippingPolicy(Config{ExpressFee: "-1"})
	require.Error(t, err)

	_, err = ResolveShippingPolicy(Config{ShippingPolicyFile: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}
