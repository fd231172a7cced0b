package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range cases {
		assert.Equal(t, want, parseLevel(raw), "raw=%q", raw)
	}
}

func TestNewSamplerDescription(t *testing.T) {
	assert.Contains(t, newSampler("").Description(), "AlwaysOnSampler")
	assert.Contains(t, newSampler("2").Description(), "AlwaysOnSampler")
	assert.Contains(t, newSampler("0.25").Description(), "TraceIDRatioBased{0.25}")
}

func TestInstrumentsFallBackToGlobalProviders(t *testing.T) {
	var instruments *Instruments
	require.NotNil(t, instruments.Tracer("test"))
	counter, err := instruments.Meter("test").Int64Counter("noop")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
}
