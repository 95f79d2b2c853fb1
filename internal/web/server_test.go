package web

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/reef-guardian/internal/status"
)

func testTracker() *status.Tracker {
	return status.NewTracker(time.Now(), status.Config{
		Broker:   "tcp://broker.example:1883",
		HTTPAddr: ":8080",
	}, nil)
}

func TestIndexServesHTML(t *testing.T) {
	s := New(":0", testTracker(), nil)

	rec := httptest.NewRecorder()
	s.handleIndex(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "tcp://broker.example:1883") {
		t.Error("page should show the broker address")
	}
}

func TestIndexRejectsOtherPaths(t *testing.T) {
	s := New(":0", testTracker(), nil)

	rec := httptest.NewRecorder()
	s.handleIndex(rec, httptest.NewRequest("GET", "/nope", nil))
	if rec.Code != 404 {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestJSONEndpoint(t *testing.T) {
	tr := testTracker()
	tr.RecordSync(true)
	s := New(":0", tr, nil)

	rec := httptest.NewRecorder()
	s.handleJSON(rec, httptest.NewRequest("GET", "/index.json", nil))

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var parsed status.StatusJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Counts.SyncSuccess != 1 {
		t.Errorf("expected 1 sync success, got %d", parsed.Status.Counts.SyncSuccess)
	}
}

func TestHealthz(t *testing.T) {
	s := New(":0", testTracker(), nil)

	rec := httptest.NewRecorder()
	s.handleHealthz(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != 200 || rec.Body.String() != "ok\n" {
		t.Errorf("unexpected healthz response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpointWired(t *testing.T) {
	m := status.NewMetrics()
	s := New(":0", testTracker(), m)

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Errorf("expected 200 from /metrics, got %d", rec.Code)
	}
}
