package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the registration admin instruments.
type Metrics struct {
	LifecycleTransitions *prometheus.CounterVec
	LifecycleDuration    prometheus.Histogram
	TransferRequests     *prometheus.CounterVec
	ExpiredRegistrations prometheus.Gauge
	ExpiringSoon         prometheus.Gauge
	AlertRefreshFailures prometheus.Counter
	AlertsSurfaced       prometheus.Counter
}

// New registers every instrument on reg. Pass prometheus.DefaultRegisterer in
// the server and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LifecycleTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regdesk_lifecycle_transitions_total",
			Help: "Registration lifecycle operations by action and outcome",
		}, []string{"action", "outcome"}),
		LifecycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "regdesk_lifecycle_duration_seconds",
			Help:    "Duration of registration lifecycle operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		TransferRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regdesk_transfer_requests_total",
			Help: "Category transfer requests by action (submitted, approved, rejected)",
		}, []string{"action"}),
		ExpiredRegistrations: factory.NewGauge(prometheus.GaugeOpts{
			Name: "regdesk_registrations_expired",
			Help: "Pending registrations past their expiry date at the last refresh",
		}),
		ExpiringSoon: factory.NewGauge(prometheus.GaugeOpts{
			Name: "regdesk_registrations_expiring_soon",
			Help: "Pending registrations inside the expiring-soon window at the last refresh",
		}),
		AlertRefreshFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "regdesk_alert_refresh_failures_total",
			Help: "Expiry alert refreshes that failed to read the store",
		}),
		AlertsSurfaced: factory.NewCounter(prometheus.CounterOpts{
			Name: "regdesk_alerts_surfaced_total",
			Help: "Times the combined expiry alert list was surfaced automatically",
		}),
	}
}

// ObserveLifecycle records one lifecycle operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveLifecycle(action string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.LifecycleTransitions.WithLabelValues(action, outcome).Inc()
	m.LifecycleDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementTransfer(action string) {
	m.TransferRequests.WithLabelValues(action).Inc()
}

func (m *Metrics) SetExpiryCounts(expired, expiringSoon int) {
	m.ExpiredRegistrations.Set(float64(expired))
	m.ExpiringSoon.Set(float64(expiringSoon))
}
