package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	ordermemory "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

func TestRestorationLog_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	log, err := NewRestorationLog(ordermemory.NewRestorationLog(), reg, nil)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := log.Record(ctx, domain.RestorationFailure{OrderNumber: "CMD-1", ProductID: 4, Quantity: 1, Reason: "timeout"})
	require.NoError(t, err)
	_, err = log.Record(ctx, domain.RestorationFailure{OrderNumber: "CMD-2", ProductID: 4, Quantity: 2, Reason: "timeout"})
	require.NoError(t, err)

	require.NoError(t, log.MarkAttempt(ctx, first.ID, "still failing"))
	require.NoError(t, log.Resolve(ctx, first.ID))
	require.Error(t, log.Resolve(ctx, 999))

	require.Equal(t, 2.0, testutil.ToFloat64(log.recorded.WithLabelValues("4")))
	require.Equal(t, 1.0, testutil.ToFloat64(log.retried))
	require.Equal(t, 1.0, testutil.ToFloat64(log.resolved))

	pending, err := log.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = NewRestorationLog(ordermemory.NewRestorationLog(), reg, nil)
	require.Error(t, err)
}
