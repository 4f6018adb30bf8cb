package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "academy"

// Metrics holds Prometheus metrics for the quiz service. A nil *Metrics is a no-op.
type Metrics struct {
	RequestCounter    *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	RequestsInFlight  prometheus.Gauge
	AttemptsStarted   *prometheus.CounterVec
	AttemptsSubmitted *prometheus.CounterVec
	AttemptPercentage prometheus.Histogram
	QuizCacheLookups  *prometheus.CounterVec
	DBConnPoolStats   *prometheus.GaugeVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
		AttemptsStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "attempts",
				Name:      "started_total",
				Help:      "Start attempt calls by outcome",
			},
			[]string{"outcome"},
		),
		AttemptsSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "attempts",
				Name:      "submitted_total",
				Help:      "Submit attempt calls by outcome",
			},
			[]string{"outcome"},
		),
		AttemptPercentage: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "attempts",
				Name:      "percentage",
				Help:      "Percentage scored by graded attempts",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
		),
		QuizCacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "quiz_cache",
				Name:      "lookups_total",
				Help:      "Quiz definition cache lookups by result",
			},
			[]string{"result"},
		),
		DBConnPoolStats: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      "connection_pool",
				Help:      "Database connection pool statistics",
			},
			[]string{"stat"},
		),
	}
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestCounter.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) RequestStarted() {
	if m == nil {
		return
	}
	m.RequestsInFlight.Inc()
}

func (m *Metrics) RequestFinished() {
	if m == nil {
		return
	}
	m.RequestsInFlight.Dec()
}

// AttemptStarted counts a start call. outcome is "ok" or an error code.
func (m *Metrics) AttemptStarted(outcome string) {
	if m == nil {
		return
	}
	m.AttemptsStarted.WithLabelValues(outcome).Inc()
}

// AttemptSubmitted counts a submit call. percentage is observed only for "ok".
func (m *Metrics) AttemptSubmitted(outcome string, percentage float64) {
	if m == nil {
		return
	}
	m.AttemptsSubmitted.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.AttemptPercentage.Observe(percentage)
	}
}

// CacheLookup records a quiz cache "hit", "miss" or "error".
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.QuizCacheLookups.WithLabelValues(result).Inc()
}

// RecordDBPoolStats records database connection pool statistics
func (m *Metrics) RecordDBPoolStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.DBConnPoolStats.WithLabelValues("open").Set(float64(stats.OpenConnections))
	m.DBConnPoolStats.WithLabelValues("in_use").Set(float64(stats.InUse))
	m.DBConnPoolStats.WithLabelValues("idle").Set(float64(stats.Idle))
	m.DBConnPoolStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
	m.DBConnPoolStats.WithLabelValues("wait_duration_ms").Set(float64(stats.WaitDuration.Milliseconds()))
}
