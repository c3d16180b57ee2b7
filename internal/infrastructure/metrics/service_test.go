package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestServiceExposesRecordedMetrics(t *testing.T) {
	s := NewService()

	s.RecordHTTPRequest("/v1/chat/completions", http.MethodPost, 200, 150*time.Millisecond)
	s.RecordBackendRequest("gemini-2.5-pro", "stream", "ok")
	s.RecordSessionInit("ok")
	s.RecordCookieRotation("error")

	server := httptest.NewServer(s.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read scrape body: %v", err)
	}

	for _, want := range []string{
		"janus_http_requests_total",
		"janus_http_request_duration_seconds",
		"janus_backend_requests_total",
		"janus_session_inits_total",
		"janus_cookie_rotations_total",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("scrape output missing %s", want)
		}
	}
}

func TestNilServiceRecordsNothing(t *testing.T) {
	var s *Service

	s.RecordHTTPRequest("/health", http.MethodGet, 200, time.Millisecond)
	s.RecordBackendRequest("unspecified", "complete", "ok")
	s.RecordSessionInit("error")
	s.RecordCookieRotation("ok")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil service Handler() status = %d, want 404", rec.Code)
	}
}
