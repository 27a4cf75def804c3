package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SearchesTotal counts search dispatches by mode and outcome.
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastetrail_searches_total",
			Help: "Search dispatches by mode (live/demo) and outcome (success or error code).",
		},
		[]string{"mode", "outcome"},
	)

	// SearchDuration tracks end-to-end search latency.
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tastetrail_search_duration_seconds",
			Help:    "End-to-end search latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// StaleCompletionsTotal counts search completions discarded because a
	// newer search was dispatched before they resolved.
	StaleCompletionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tastetrail_stale_search_completions_total",
			Help: "Search completions discarded in favor of a newer dispatch.",
		},
	)

	// BookingsTotal counts confirmed bookings.
	BookingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tastetrail_bookings_total",
			Help: "Confirmed bookings.",
		},
	)

	// BookingGateRejections counts bookings blocked by the assistant gate.
	BookingGateRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tastetrail_booking_gate_rejections_total",
			Help: "Booking attempts rejected before any assistant interaction.",
		},
	)

	// AssistantMessagesTotal counts inbound assistant messages.
	AssistantMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tastetrail_assistant_messages_total",
			Help: "Inbound assistant channel messages.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		SearchesTotal,
		SearchDuration,
		StaleCompletionsTotal,
		BookingsTotal,
		BookingGateRejections,
		AssistantMessagesTotal,
	)
}
