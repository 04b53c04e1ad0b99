package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/api/v1/bookings/{bookingId}", 200, time.Millisecond)
		m.ObserveDBQuery("SELECT", nil, time.Millisecond)
		m.SetDBConnections(1, 1, 0)
		m.IncDispatchJob("sent")
		m.ObserveDispatchRun(time.Second)
		m.IncReconciliation("webhook", "marked_paid")
		m.IncWaitlistFulfillment("fulfilled")
		m.IncBookingConflict()
	})
}

func TestCounters(t *testing.T) {
	m := NewWithRegisterer("barber_booking", prometheus.NewRegistry())

	m.ObserveHTTPRequest("POST", "/api/v1/bookings", 409, time.Millisecond)
	m.IncDispatchJob("sent")
	m.IncDispatchJob("sent")
	m.IncReconciliation("sweep_tenant", "marked_failed")
	m.IncWaitlistFulfillment("slot_taken")
	m.IncBookingConflict()
	m.ObserveDBQuery("INSERT", errors.New("duplicate"), time.Millisecond)
	m.SetDBConnections(5, 2, 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/bookings", "409")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DispatchJobsTotal.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentReconciliations.WithLabelValues("sweep_tenant", "marked_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WaitlistFulfillmentsTotal.WithLabelValues("slot_taken")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingConflictsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DBConnections.WithLabelValues("in_use")))
}
