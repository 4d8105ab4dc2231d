// Package metrics holds the prometheus collectors for the site.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "consultsite"

// Gatekeeper decision labels
const (
	DecisionPass      = "pass"
	DecisionLogin     = "redirect_login"
	DecisionDashboard = "redirect_dashboard"
	DecisionRecovered = "recovered"
)

// Session repair results
const (
	RepairRefreshed = "refreshed"
	RepairFailed    = "failed"
)

// OTP operation outcomes
const (
	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// Metrics is the set of collectors shared by the HTTP layer
type Metrics struct {
	Requests            *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	GatekeeperDecisions *prometheus.CounterVec
	SessionRepairs      *prometheus.CounterVec
	OTPOperations       *prometheus.CounterVec
	ActiveFlows         prometheus.GaugeFunc
}

// New registers the collectors on reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"method", "route", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		GatekeeperDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gatekeeper_decisions_total",
			Help:      "Routing decisions taken by the session gatekeeper",
		}, []string{"decision"}),

		SessionRepairs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gatekeeper_session_repairs_total",
			Help:      "Attempts to recover a session from leftover cookies",
		}, []string{"result"}),

		OTPOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_operations_total",
			Help:      "Phone verification operations by outcome",
		}, []string{"operation", "outcome"}),
	}
}

// TrackFlows exposes the number of live verification flows as a gauge
func (m *Metrics) TrackFlows(reg prometheus.Registerer, count func() int) {
	m.ActiveFlows = promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "otp_active_flows",
		Help:      "Verification flows currently held in memory",
	}, func() float64 { return float64(count()) })
}
