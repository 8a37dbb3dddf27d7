package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// ---------------------------------------------------------------------------
// Fake Pinger for readiness tests
// ---------------------------------------------------------------------------

// fakePinger is a test double for the Pinger interface.
type fakePinger struct {
	// name is returned by Name().
	name string
	// err is returned by Ping(); nil means healthy.
	err error
}

func (f *fakePinger) Name() string                 { return f.name }
func (f *fakePinger) Ping(_ context.Context) error { return f.err }

// newReadyTestServer builds a *Server with the given pingers wired in.
func newReadyTestServer(t *testing.T, pingers ...Pinger) *Server {
	t.Helper()
	s := newTestServer(t, nil)
	s.pingers = pingers
	return s
}

// ---------------------------------------------------------------------------
// GET /api/health: liveness
// ---------------------------------------------------------------------------

func TestHandleHealth_OK(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d, body: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: expected application/json, got %q", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

// ---------------------------------------------------------------------------
// GET /api/ready: readiness
// ---------------------------------------------------------------------------

func TestHandleReady_AllHealthy(t *testing.T) {
	t.Parallel()

	s := newReadyTestServer(t,
		&fakePinger{name: "qdrant"},
		&fakePinger{name: "ledger"},
	)
	req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	w := httptest.NewRecorder()

	s.handleReady(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body: %s", w.Code, w.Body.String())
	}

	var body readyResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if !body.Ready {
		t.Error("ready = false, want true")
	}
	if len(body.Checks) != 2 {
		t.Fatalf("got %d checks, want 2", len(body.Checks))
	}
	for _, c := range body.Checks {
		if !c.OK || c.Error != "" {
			t.Errorf("check %s: ok=%v error=%q, want healthy", c.Name, c.OK, c.Error)
		}
	}
}

func TestHandleReady_OneDown(t *testing.T) {
	t.Parallel()

	s := newReadyTestServer(t,
		&fakePinger{name: "qdrant", err: errors.New("connection refused")},
		&fakePinger{name: "ledger"},
	)
	req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	w := httptest.NewRecorder()

	s.handleReady(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	var body readyResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if body.Ready {
		t.Error("ready = true, want false")
	}
	if body.Checks[0].OK || body.Checks[0].Error == "" {
		t.Errorf("qdrant check should be failing with an error, got %+v", body.Checks[0])
	}
	if !body.Checks[1].OK {
		t.Errorf("ledger check should still be healthy, got %+v", body.Checks[1])
	}
}

func TestHandleReady_NoPingers(t *testing.T) {
	t.Parallel()

	s := newReadyTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	w := httptest.NewRecorder()

	s.handleReady(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 in liveness-only mode, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// PingerFunc
// ---------------------------------------------------------------------------

func TestPingerFunc_AdaptsClosure(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("database is locked")
	p := PingerFunc{Label: "ledger", Fn: func(_ context.Context) error { return wantErr }}

	if p.Name() != "ledger" {
		t.Errorf("Name = %q, want ledger", p.Name())
	}
	if err := p.Ping(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Ping error = %v, want %v", err, wantErr)
	}
}

func TestHandleReady_PingerFuncFailing(t *testing.T) {
	t.Parallel()

	s := newReadyTestServer(t,
		&fakePinger{name: "qdrant"},
		PingerFunc{Label: "ledger", Fn: func(_ context.Context) error {
			return errors.New("disk I/O error")
		}},
	)
	req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	w := httptest.NewRecorder()

	s.handleReady(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	var body readyResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if body.Checks[1].Name != "ledger" || body.Checks[1].OK {
		t.Errorf("ledger check should be failing, got %+v", body.Checks[1])
	}
}

// ---------------------------------------------------------------------------
// MultiPinger
// ---------------------------------------------------------------------------

func TestMultiPinger_FirstErrorWins(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("down")
	m := NewMultiPinger(
		&fakePinger{name: "a"},
		&fakePinger{name: "b", err: wantErr},
		&fakePinger{name: "c", err: errors.New("also down")},
	)

	err := m.Ping(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("Ping error = %v, want wrapped %v", err, wantErr)
	}
}

func TestMultiPinger_AllHealthy(t *testing.T) {
	t.Parallel()

	m := NewMultiPinger(&fakePinger{name: "a"}, &fakePinger{name: "b"})
	if err := m.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
