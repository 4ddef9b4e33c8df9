// Package metrics exposes Prometheus instrumentation for queries, dwell
// reconstruction filtering, ingestion and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dwellmetrics/api/models"
)

// Metrics holds all Prometheus collectors. It implements analytics.Recorder.
type Metrics struct {
	// Query metrics
	QueriesTotal  *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec

	// Reconstruction metrics
	IntervalsTotal      *prometheus.CounterVec
	EventsFilteredTotal *prometheus.CounterVec

	// Ingestion metrics
	EventsIngestedTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dwellmetrics_queries_total",
				Help: "Total number of report queries by outcome",
			},
			[]string{"outcome"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dwellmetrics_query_duration_seconds",
				Help:    "Report query duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		IntervalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dwellmetrics_dwell_intervals_total",
				Help: "Candidate dwell intervals by level and plausibility result",
			},
			[]string{"level", "result"},
		),
		EventsFilteredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dwellmetrics_events_filtered_total",
				Help: "Events excluded from reconstruction by reason",
			},
			[]string{"reason"},
		),
		EventsIngestedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dwellmetrics_events_ingested_total",
				Help: "Tracking events stored by action type",
			},
			[]string{"action_type"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dwellmetrics_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dwellmetrics_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	reg.MustRegister(
		m.QueriesTotal,
		m.QueryDuration,
		m.IntervalsTotal,
		m.EventsFilteredTotal,
		m.EventsIngestedTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

func (m *Metrics) RecordQuery(outcome string, elapsed time.Duration) {
	m.QueriesTotal.WithLabelValues(outcome).Inc()
	m.QueryDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordDiagnostics(d models.Diagnostics) {
	m.IntervalsTotal.WithLabelValues("page", "accepted").Add(float64(d.PageIntervalsAccepted))
	m.IntervalsTotal.WithLabelValues("page", "rejected").Add(float64(d.PageIntervalsRejected))
	m.IntervalsTotal.WithLabelValues("session", "accepted").Add(float64(d.SessionsAccepted))
	m.IntervalsTotal.WithLabelValues("session", "rejected").Add(float64(d.SessionsRejected))
	m.EventsFilteredTotal.WithLabelValues("malformed").Add(float64(d.DroppedMalformed))
	m.EventsFilteredTotal.WithLabelValues("unknown_type").Add(float64(d.IgnoredUnknownType))
}

// RecordIngested counts stored events per action type.
func (m *Metrics) RecordIngested(counts map[string]int) {
	for actionType, n := range counts {
		m.EventsIngestedTotal.WithLabelValues(actionType).Add(float64(n))
	}
}

// Middleware instruments gin requests. Paths are the matched route
// templates so label cardinality stays bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
