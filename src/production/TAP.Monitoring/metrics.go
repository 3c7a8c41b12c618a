package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queueLength = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tap_queue_length",
			Help: "Current wait queue length per tap",
		},
		[]string{"tap_id"},
	)

	queueOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tap_queue_operations_total",
			Help: "Total queue operations",
		},
		[]string{"operation"},
	)

	sessionsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tap_sessions_opened_total",
			Help: "Total tap sessions opened",
		},
	)

	sessionsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tap_sessions_closed_total",
			Help: "Total tap sessions closed, by close reason",
		},
		[]string{"reason"},
	)

	eventsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tap_events_recorded_total",
			Help: "Total telemetry readings persisted as tap events",
		},
	)

	watchdogFirings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tap_watchdog_firings_total",
			Help: "Total watchdog firings, by watchdog kind",
		},
		[]string{"kind"},
	)

	telemetryDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tap_telemetry_dropped_total",
			Help: "Total telemetry messages dropped, by reason",
		},
		[]string{"reason"},
	)
)

// SetQueueLength records the current queue length for a tap
func SetQueueLength(tapID string, length int) {
	queueLength.WithLabelValues(tapID).Set(float64(length))
}

// QueueOperation counts one public queue operation
func QueueOperation(operation string) {
	queueOperations.WithLabelValues(operation).Inc()
}

// SessionOpened counts one opened session
func SessionOpened() {
	sessionsOpened.Inc()
}

// SessionClosed counts one closed session with its close reason
// (done, watchdog, cancelled)
func SessionClosed(reason string) {
	sessionsClosed.WithLabelValues(reason).Inc()
}

// EventRecorded counts one persisted tap event
func EventRecorded() {
	eventsRecorded.Inc()
}

// WatchdogFired counts one watchdog firing (amount, status)
func WatchdogFired(kind string) {
	watchdogFirings.WithLabelValues(kind).Inc()
}

// TelemetryDropped counts one dropped telemetry message
func TelemetryDropped(reason string) {
	telemetryDropped.WithLabelValues(reason).Inc()
}
