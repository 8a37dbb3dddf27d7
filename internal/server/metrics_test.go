package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/54b3r/newsrag-go/internal/answer"
)

func TestMetrics_QueryOutcomeCounted(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	fake := &fakeAnswerer{result: answer.Result{Outcome: answer.NoContext}}
	s, err := New(fake, &Config{Registry: reg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.stopRL)

	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"query":"q"}`))
	w := httptest.NewRecorder()
	s.handleQuery(w, req)

	got := testutil.ToFloat64(s.metrics.queryRequestsTotal.WithLabelValues("no_context"))
	if got != 1 {
		t.Errorf("no_context counter = %v, want 1", got)
	}
	if other := testutil.ToFloat64(s.metrics.queryRequestsTotal.WithLabelValues("answered")); other != 0 {
		t.Errorf("answered counter = %v, want 0", other)
	}
}

func TestMetrics_EndpointExposesRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	fake := &fakeAnswerer{result: answer.Result{Outcome: answer.Answered, Text: "ok"}}
	s, err := New(fake, &Config{Registry: reg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.stopRL)

	ts := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(ts.Close)

	resp, err := http.Post(ts.URL+"/query", "application/json", strings.NewReader(`{"query":"q"}`))
	if err != nil {
		t.Fatalf("POST /query: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /metrics: expected 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "newsrag_query_requests_total") {
		t.Error("metrics exposition is missing newsrag_query_requests_total")
	}
}
