package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconciliationMetrics records the outcome of reconciliation runs.
type ReconciliationMetrics struct {
	runDuration      prometheus.Histogram
	alertsCreated    *prometheus.CounterVec
	detectorFailures *prometheus.CounterVec
}

// NewReconciliationMetrics registers the reconciliation metrics on the provided registerer.
func NewReconciliationMetrics(reg prometheus.Registerer) *ReconciliationMetrics {
	if reg == nil {
		return &ReconciliationMetrics{}
	}
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reconciliation_run_duration_seconds",
		Help:    "Duration of full reconciliation runs in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	alertsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciliation_alerts_created",
		Help: "Alerts created by reconciliation runs.",
	}, []string{"type"})
	detectorFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciliation_detector_failures",
		Help: "Detector reads that failed or timed out during a run.",
	}, []string{"detector"})
	reg.MustRegister(runDuration, alertsCreated, detectorFailures)
	return &ReconciliationMetrics{
		runDuration:      runDuration,
		alertsCreated:    alertsCreated,
		detectorFailures: detectorFailures,
	}
}

// ObserveRunDuration records how long a reconciliation run took.
func (r *ReconciliationMetrics) ObserveRunDuration(duration time.Duration) {
	if r == nil || r.runDuration == nil {
		return
	}
	r.runDuration.Observe(duration.Seconds())
}

// IncAlertsCreated adds to the created counter for the given alert type.
func (r *ReconciliationMetrics) IncAlertsCreated(alertType string, count int) {
	if r == nil || r.alertsCreated == nil || count <= 0 {
		return
	}
	r.alertsCreated.WithLabelValues(normalizeLabel(alertType)).Add(float64(count))
}

// IncDetectorFailure increments the failure counter for the named detector.
func (r *ReconciliationMetrics) IncDetectorFailure(detector string) {
	if r == nil || r.detectorFailures == nil {
		return
	}
	r.detectorFailures.WithLabelValues(normalizeLabel(detector)).Inc()
}
