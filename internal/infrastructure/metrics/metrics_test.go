package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.ObserveMessage("text")
	m.ObserveMessage("text")
	m.ObserveMessage("image")
	m.ObserveEvent("messages")
	m.SetConnections(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MessagesSent.WithLabelValues("text")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesSent.WithLabelValues("image")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RealtimeEvents.WithLabelValues("messages")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.WebSocketConnections))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveNotification("new_message")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `partmatch_notifications_created_total{kind="new_message"} 1`)
}
