package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderworkflows "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/workflows"
	"github.com/Apurer/go-gin-orders-api/internal/platform/metrics"
)

func TestNewRouterServesAPIMetricsAndHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := metrics.NewRegistry()
	stack, err := BuildStack(context.Background(), Config{}, nil, registry.Registerer())
	require.NoError(t, err)
	t.Cleanup(stack.Close)
	require.Nil(t, stack.DB)

	router := NewRouter(stack, orderworkflows.NewInlineOrderWorkflows(stack.Orders), registry, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/orders/42", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/orders", bytes.NewBufferString(`{"lines":[]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `orders_api_http_requests_total{code="404",method="GET",route="/v1/orders/:orderId"} 1`)
}
