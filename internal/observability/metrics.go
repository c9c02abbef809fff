package observability

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	stdoutmetric "go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
)

const metricReadInterval = 30 * time.Second

// transactionMetricKeys bounds the label set of the orderdesk.transactions.*
// instruments so ids or buyer data never become series.
var transactionMetricKeys = []attribute.Key{"action", "success", "type"}

func transactionView() sdkmetric.View {
	return sdkmetric.NewView(
		sdkmetric.Instrument{Name: "orderdesk.transactions.*"},
		sdkmetric.Stream{AttributeFilter: attribute.NewAllowKeysFilter(transactionMetricKeys...)},
	)
}

// newMeterProvider returns a nil provider when the exporter is unknown. The
// handler is only set for the prometheus exporter, which scrapes a registry
// private to this process.
func newMeterProvider(cfg config.Observability, res *sdkresource.Resource, logger *zap.Logger) (*sdkmetric.MeterProvider, http.Handler, error) {
	var (
		reader  sdkmetric.Reader
		handler http.Handler
	)
	switch strings.ToLower(cfg.MetricsExporter) {
	case "prometheus":
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
		if err != nil {
			return nil, nil, err
		}
		reader = exporter
		handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	case "stdout":
		exporter, err := stdoutmetric.New(stdoutmetric.WithPrettyPrint(), stdoutmetric.WithWriter(os.Stdout))
		if err != nil {
			return nil, nil, err
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(metricReadInterval))
	default:
		logger.Warn("unsupported metrics exporter; metrics disabled", zap.String("exporter", cfg.MetricsExporter))
		return nil, nil, nil
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
		sdkmetric.WithView(transactionView()),
	)
	return provider, handler, nil
}
