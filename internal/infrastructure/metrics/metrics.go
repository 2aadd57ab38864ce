// Package metrics provides Prometheus metrics for the voice-broker service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveBridges tracks the number of live upstream bridges.
	ActiveBridges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "voicebroker_active_bridges",
			Help: "Number of currently live upstream provider bridges",
		},
	)

	// SessionsCreated tracks the total number of sessions created.
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voicebroker_sessions_created_total",
			Help: "Total number of broker sessions created",
		},
	)

	// SessionsDeleted tracks the total number of sessions deleted.
	SessionsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voicebroker_sessions_deleted_total",
			Help: "Total number of broker sessions deleted",
		},
	)

	// OffersProcessed tracks signaling offers by outcome.
	OffersProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicebroker_offers_processed_total",
			Help: "Total number of SDP offers processed, by outcome",
		},
		[]string{"outcome"},
	)

	// StaleRecoveries tracks recreate-and-retry cycles triggered by stale
	// upstream sessions.
	StaleRecoveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicebroker_stale_recoveries_total",
			Help: "Total number of stale-session recovery cycles, by result",
		},
		[]string{"result"},
	)

	// BridgesEvicted tracks bridges removed by the idle sweep.
	BridgesEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voicebroker_bridges_evicted_total",
			Help: "Total number of idle bridges evicted by the sweeper",
		},
	)

	// UpstreamCallDuration tracks latency of upstream provider calls.
	UpstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voicebroker_upstream_call_duration_seconds",
			Help:    "Duration of upstream provider calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"call"},
	)

	// AuthorizationChecks tracks guard decisions.
	AuthorizationChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicebroker_authorization_checks_total",
			Help: "Total number of client authorization checks, by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordSessionCreated increments session creation metrics.
func RecordSessionCreated() {
	SessionsCreated.Inc()
}

// RecordSessionDeleted increments session deletion metrics.
func RecordSessionDeleted() {
	SessionsDeleted.Inc()
}

// RecordOffer records a processed offer outcome ("ok", "recovered",
// "new_session", "error").
func RecordOffer(outcome string) {
	OffersProcessed.WithLabelValues(outcome).Inc()
}

// RecordAuthorization records a guard decision ("allowed" or "denied").
func RecordAuthorization(allowed bool) {
	if allowed {
		AuthorizationChecks.WithLabelValues("allowed").Inc()
	} else {
		AuthorizationChecks.WithLabelValues("denied").Inc()
	}
}
