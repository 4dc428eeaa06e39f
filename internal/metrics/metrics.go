// Package metrics holds the Prometheus collectors of go-lich.
// Collectors are registered on a dedicated Registry rather than the
// global default one; Handler exposes it.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registry all go-lich collectors belong to.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// HTTP Metrics
var (
	HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Advisory Metrics
var (
	SyncRuns = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSyncRuns,
			Help: HelpTextSyncRuns,
		},
		[]string{LabelResult},
	)

	FeedEvents = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameFeedEvents,
			Help: HelpTextFeedEvents,
		},
	)

	ContactsSurveyed = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameContacts,
			Help: HelpTextContacts,
		},
	)

	DayCacheLookups = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameDayCache,
			Help: HelpTextDayCache,
		},
		[]string{LabelResult},
	)
)

// Handler serves the Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// RecordSync counts one synchronization outcome.
func RecordSync(err error) {
	if err != nil {
		SyncRuns.WithLabelValues(ResultError).Inc()
		return
	}
	SyncRuns.WithLabelValues(ResultOK).Inc()
}
