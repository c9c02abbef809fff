package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(body)
}

func TestManager_PrometheusMetrics(t *testing.T) {
	cfg := config.Config{Observability: config.Observability{
		ServiceName:     "orderdesk-test",
		EnableMetrics:   true,
		MetricsExporter: "prometheus",
	}}
	mgr, err := NewManager(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Shutdown(context.Background()) })

	assert.True(t, mgr.MetricsEnabled())
	assert.False(t, mgr.TracingEnabled())
	require.NotNil(t, mgr.MetricsHandler())

	counter, err := mgr.Meter("orderdesk/test").Int64Counter("orderdesk.transactions.mutations")
	require.NoError(t, err)
	counter.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("action", "create"),
		attribute.Bool("success", true),
		attribute.Int64("transaction_id", 42),
	))

	body := scrape(t, mgr.MetricsHandler())
	assert.Contains(t, body, "orderdesk_transactions_mutations_total{")
	assert.Contains(t, body, `action="create"`)
	assert.NotContains(t, body, "transaction_id")
}

func TestManager_Disabled(t *testing.T) {
	mgr, err := NewManager(fxtest.NewLifecycle(t), config.Config{}, nil)
	require.NoError(t, err)

	assert.False(t, mgr.MetricsEnabled())
	assert.False(t, mgr.TracingEnabled())
	assert.Nil(t, mgr.MetricsHandler())
	assert.NotNil(t, mgr.Meter("orderdesk/test"))
	assert.NoError(t, mgr.Shutdown(context.Background()))

	var nilMgr *Manager
	assert.False(t, nilMgr.MetricsEnabled())
	assert.NotNil(t, nilMgr.Meter("orderdesk/test"))
}

func TestManager_UnknownExporters(t *testing.T) {
	cfg := config.Config{Observability: config.Observability{
		EnableTracing:   true,
		TraceExporter:   "zipkin",
		EnableMetrics:   true,
		MetricsExporter: "statsd",
	}}
	mgr, err := NewManager(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mgr.TracingEnabled())
	assert.False(t, mgr.MetricsEnabled())
}
