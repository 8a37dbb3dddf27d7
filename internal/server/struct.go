package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/newsrag-go/internal/answer"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8000).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	// Must be long enough for a full retrieve-and-generate round trip.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [slog.Default] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on POST /query
	// (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// Registry is the Prometheus registry the server registers its metrics
	// into. If nil, a fresh registry is created; it also backs GET /metrics.
	Registry *prometheus.Registry
}

// answerer is the interface handleQuery calls to answer a question.
// *answer.Service satisfies it; tests inject a fake.
type answerer interface {
	// Answer runs the retrieve-then-generate pipeline for one query.
	Answer(ctx context.Context, query string, topK int) answer.Result
}

// Server is the HTTP server that exposes the query API.
type Server struct {
	// answerer runs the query pipeline for POST /query.
	answerer answerer
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// queryRequest is the JSON body for POST /query.
type queryRequest struct {
	// Query is the user's natural language question.
	Query string `json:"query"`
	// TopK is the number of passages to retrieve. Defaults to 5 if omitted.
	TopK int `json:"top_k"`
}

// queryResponse is the JSON response for POST /query. Pipeline failures are
// reported here with an "Error: " prefix rather than as HTTP errors.
type queryResponse struct {
	// Result is the answer text, the no-context message, or an error report.
	Result string `json:"result"`
}

// greetingResponse is the JSON response for GET /.
type greetingResponse struct {
	// Message is a fixed liveness greeting.
	Message string `json:"message"`
}
