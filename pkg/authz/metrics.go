package authz

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DecisionMetrics tracks Prometheus metrics for authorization decisions.
//
// All metrics use the "xrealmd_authz_" prefix. Methods handle a nil
// receiver gracefully, so a nil *DecisionMetrics acts as a no-op with
// zero overhead when metrics are disabled.
type DecisionMetrics struct {
	// DecisionDuration tracks time to evaluate one cross-realm decision.
	DecisionDuration prometheus.Histogram

	// DecisionsTotal counts decisions by outcome.
	// Labels: result=[preapproved, realm_acl, principal_acl, denied, would_deny]
	DecisionsTotal *prometheus.CounterVec

	// StoreErrorsTotal counts decisions aborted by attribute-store
	// failures (lookup or attribute read).
	StoreErrorsTotal prometheus.Counter
}

var (
	decisionMetricsOnce     sync.Once
	decisionMetricsInstance *DecisionMetrics
)

// NewDecisionMetrics creates and registers decision metrics.
//
// If registerer is nil, prometheus.DefaultRegisterer is used. The
// function is idempotent: metrics are registered exactly once and the
// same instance is returned on subsequent calls.
func NewDecisionMetrics(registerer prometheus.Registerer) *DecisionMetrics {
	decisionMetricsOnce.Do(func() {
		if registerer == nil {
			registerer = prometheus.DefaultRegisterer
		}

		m := &DecisionMetrics{
			DecisionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "xrealmd_authz_decision_duration_seconds",
				Help:    "Time to evaluate a cross-realm authorization decision",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			}),
			DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "xrealmd_authz_decisions_total",
				Help: "Cross-realm authorization decisions by outcome",
			}, []string{"result"}),
			StoreErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "xrealmd_authz_store_errors_total",
				Help: "Decisions aborted by attribute-store failures",
			}),
		}

		registerer.MustRegister(m.DecisionDuration, m.DecisionsTotal, m.StoreErrorsTotal)
		decisionMetricsInstance = m
	})
	return decisionMetricsInstance
}

// ObserveDecision records a completed decision and its outcome.
func (m *DecisionMetrics) ObserveDecision(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.DecisionDuration.Observe(d.Seconds())
	m.DecisionsTotal.WithLabelValues(result).Inc()
}

// ObserveStoreError records a decision aborted by a store failure.
func (m *DecisionMetrics) ObserveStoreError() {
	if m == nil {
		return
	}
	m.StoreErrorsTotal.Inc()
}
