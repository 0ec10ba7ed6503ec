package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	IncHTTP("test_endpoint")
	IncHTTP("test_endpoint")
	IncBookingTransition("APPROVED")
	IncEmail("booking_confirmation", "sent")
	IncCache("hit")
	IncEvent("booking_submitted")

	assert.Equal(t, 2.0, testutil.ToFloat64(httpRequests.WithLabelValues("test_endpoint")))
	assert.Equal(t, 1.0, testutil.ToFloat64(eventsConsumed.WithLabelValues("booking_submitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(bookingTransitions.WithLabelValues("APPROVED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(emailsSent.WithLabelValues("booking_confirmation", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(cacheLookups.WithLabelValues("hit")))
}
