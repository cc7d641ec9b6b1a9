package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCollector_Records(t *testing.T) {
	m := NewMetricsCollector(nil)

	m.RecordEvent("text", "show_error", 5*time.Millisecond)
	m.RecordEvent("text", "show_error", time.Millisecond)
	m.RecordWithdrawal("BTC", "completed")
	m.UpdateBalance("BTC", 0.2)
	m.SetActiveSessions(3)
	m.RecordExpiredSessions(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.eventsHandled.WithLabelValues("text", "show_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.withdrawals.WithLabelValues("BTC", "completed")))
	assert.Equal(t, 0.2, testutil.ToFloat64(m.ledgerBalance.WithLabelValues("BTC")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeSessions))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.expiredSessions))
}

func TestMetricsCollector_Handler(t *testing.T) {
	m := NewMetricsCollector(nil)
	m.RecordWithdrawal("ETH", "failed")

	w := httptest.NewRecorder()
	m.GetHandler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `bot_withdrawals_total{asset="ETH",status="failed"} 1`))
}
