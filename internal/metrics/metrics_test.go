package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Transition("approve", nil)
	m.Transition("approve", nil)
	m.Transition("approve", errors.New("lost race"))
	m.Notification("approved", errors.New("smtp down"))
	m.HTTPRequest("approve_request", http.StatusConflict)
	m.SetPending(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("approve", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("approve", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("approved", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("approve_request", "409")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.pendingRequests))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Transition("submit", nil)
		m.Notification("rejected", nil)
		m.HTTPRequest("healthz", 200)
		m.SetPending(1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Transition("submit", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `registration_transitions_total{outcome="success",transition="submit"} 1`)
}
