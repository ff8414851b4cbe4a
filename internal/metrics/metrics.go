package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eraya_travels",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "eraya_travels",
			Name:      "bookings_created_total",
			Help:      "Bookings accepted into pending state.",
		},
	)

	checkoutSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eraya_travels",
			Name:      "checkout_sessions_total",
			Help:      "Checkout session attempts by result.",
		},
		[]string{"result"},
	)

	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eraya_travels",
			Name:      "webhook_events_total",
			Help:      "Payment webhook deliveries by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, checkoutSessions, webhookEvents)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated counts an accepted booking.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncCheckout counts a checkout attempt: created, reused, invalid_state, gateway_error.
func IncCheckout(result string) {
	checkoutSessions.WithLabelValues(result).Inc()
}

// IncWebhook counts a webhook delivery: applied, duplicate, invalid_signature,
// invalid_payload, unknown_booking, unknown_outcome, invalid_transition.
func IncWebhook(result string) {
	webhookEvents.WithLabelValues(result).Inc()
}
