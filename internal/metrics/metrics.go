package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solafrican",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solafrican",
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by target status.",
		},
		[]string{"status"},
	)

	emailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solafrican",
			Name:      "emails_total",
			Help:      "Outbox email deliveries by template and result.",
		},
		[]string{"template", "result"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solafrican",
			Name:      "cache_lookups_total",
			Help:      "Catalog cache lookups by result (hit/miss).",
		},
		[]string{"result"},
	)

	eventsConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solafrican",
			Name:      "events_consumed_total",
			Help:      "Domain events handled by bus subscribers.",
		},
		[]string{"event"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingTransitions, emailsSent, cacheLookups, eventsConsumed)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingTransition counts a successful status change.
func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

// IncEmail counts an email delivery attempt outcome ("sent" or "failed").
func IncEmail(template, result string) {
	emailsSent.WithLabelValues(template, result).Inc()
}

// IncCache counts a cache lookup outcome ("hit" or "miss").
func IncCache(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

// IncEvent counts a domain event handled by a bus subscriber.
func IncEvent(eventType string) {
	eventsConsumed.WithLabelValues(eventType).Inc()
}
