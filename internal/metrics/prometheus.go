// Package metrics exports catalog engine and HTTP metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentstation/productmap"
)

// Prometheus records engine outcomes and HTTP requests.
type Prometheus struct {
	gatherer prometheus.Gatherer

	loads           *prometheus.CounterVec
	loadDuration    *prometheus.HistogramVec
	toggles         *prometheus.CounterVec
	visibleProducts prometheus.Gauge
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var _ productmap.Metrics = (*Prometheus)(nil)

// New registers the collectors with registry. A nil registry uses the
// process-wide default.
func New(registry *prometheus.Registry) *Prometheus {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if registry != nil {
		registerer, gatherer = registry, registry
	}
	factory := promauto.With(registerer)

	return &Prometheus{
		gatherer: gatherer,
		loads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "productmap_loads_total",
				Help: "Total number of catalog loads by outcome",
			},
			[]string{"outcome"},
		),
		loadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "productmap_load_duration_seconds",
				Help:    "Duration of catalog loads in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"outcome"},
		),
		toggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "productmap_favorite_toggles_total",
				Help: "Total number of favorite toggles by outcome",
			},
			[]string{"outcome"},
		),
		visibleProducts: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "productmap_visible_products",
				Help: "Number of products in the most recently published view",
			},
		),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "productmap_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "productmap_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveLoad implements productmap.Metrics.
func (p *Prometheus) ObserveLoad(outcome string, duration time.Duration) {
	p.loads.WithLabelValues(outcome).Inc()
	p.loadDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveToggle implements productmap.Metrics.
func (p *Prometheus) ObserveToggle(outcome string) {
	p.toggles.WithLabelValues(outcome).Inc()
}

// SetVisibleProducts implements productmap.Metrics.
func (p *Prometheus) SetVisibleProducts(n int) {
	p.visibleProducts.Set(float64(n))
}

// ObserveRequest records one served HTTP request.
func (p *Prometheus) ObserveRequest(method, route string, status int, duration time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registered metrics in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}
