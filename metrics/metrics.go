// Package metrics exposes Prometheus counters for table lookups, QR
// provisioning and HTTP traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartmenu"

const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
	LookupError    = "error"

	QRCreated  = "created"
	QRExisting = "existing"
	QRError    = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	TableLookups     *prometheus.CounterVec
	QRProvisions     *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	WebsocketClients prometheus.Gauge
}

// New registers all collectors on a private registry. Pass withRuntime to
// also export Go runtime and process collectors.
func New(withRuntime bool) (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TableLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_lookups_total",
			Help:      "Table lookups by resolution strategy and result.",
		}, []string{"strategy", "result"}),
		QRProvisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qr_provisions_total",
			Help:      "QR code requests by outcome.",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"method", "route"}),
		WebsocketClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected dashboard websocket clients.",
		}),
	}

	cs := []prometheus.Collector{m.TableLookups, m.QRProvisions, m.HTTPRequests, m.HTTPDuration, m.WebsocketClients}
	if withRuntime {
		cs = append(cs, collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	for _, c := range cs {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveLookup(strategy, result string) {
	m.TableLookups.WithLabelValues(strategy, result).Inc()
}

func (m *Metrics) ObserveQR(outcome string) {
	m.QRProvisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
