// Package txmetrics instruments the Store Gateway with Prometheus
// histograms and counters, grounded on the teacher's internal/metrics
// (Metrics struct built with promauto, DBQueryDuration histogram,
// db_instrumentation.go's MeasureDBQuery timing wrapper).
package txmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the Store Gateway records
// against. A nil *Metrics is safe to use everywhere below: all methods
// no-op so callers that don't wire metrics don't need a stub.
type Metrics struct {
	GatewayQueryDuration *prometheus.HistogramVec
	GatewayQueriesTotal  *prometheus.CounterVec
	CircuitStateChanges  *prometheus.CounterVec
	RetryAttemptsTotal   *prometheus.CounterVec
}

// New registers the registry's collectors against registry, defaulting to
// prometheus.DefaultRegisterer when nil.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		GatewayQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "txregistry_gateway_query_duration_seconds",
				Help:    "Store Gateway query latency by operation and table.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		GatewayQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txregistry_gateway_queries_total",
				Help: "Store Gateway queries by operation, table, and outcome.",
			},
			[]string{"operation", "table", "outcome"},
		),
		CircuitStateChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txregistry_gateway_circuit_state_changes_total",
				Help: "Circuit breaker state transitions by breaker name and target state.",
			},
			[]string{"breaker", "state"},
		),
		RetryAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txregistry_gateway_retry_attempts_total",
				Help: "Store Gateway retry attempts by operation and classified error.",
			},
			[]string{"operation", "class"},
		),
	}
}

// MeasureQuery wraps a gateway call with timing instrumentation, recording
// both the duration histogram and an outcome counter. Usage:
//
//	defer m.MeasureQuery("insert", "transactions", &err)()
func (m *Metrics) MeasureQuery(operation, table string, errp *error) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.GatewayQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
		outcome := "ok"
		if errp != nil && *errp != nil {
			outcome = "error"
		}
		m.GatewayQueriesTotal.WithLabelValues(operation, table, outcome).Inc()
	}
}

// RecordCircuitStateChange records a breaker transition.
func (m *Metrics) RecordCircuitStateChange(breaker, state string) {
	if m == nil {
		return
	}
	m.CircuitStateChanges.WithLabelValues(breaker, state).Inc()
}

// RecordRetryAttempt records one retry attempt of a classified error.
func (m *Metrics) RecordRetryAttempt(operation, class string) {
	if m == nil {
		return
	}
	m.RetryAttemptsTotal.WithLabelValues(operation, class).Inc()
}
