package status

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"
)

func scrapeMetrics(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("reading metrics body: %v", err)
	}
	return string(body)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordSync(true)
	m.RecordAck(time.Millisecond)
	m.SetDrops(1, 2, 3, 4)
	m.SetWindowOpen(true)
	m.SetDistress(true)
	m.SetTrend(1.5)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("nil metrics handler: expected 404, got %d", rec.Code)
	}
}

func TestNilMetricsTracker(t *testing.T) {
	tr := NewTracker(time.Now(), Config{}, nil)
	tr.SetDistress(true)
	tr.RecordSync(false)
	tr.RecordAck(time.Millisecond)
	tr.SetDrops(0, 0, 0, 0)
	tr.SetTrend(1, 1)

	if !tr.Snapshot().Distress {
		t.Error("tracker state should update without metrics")
	}
}
