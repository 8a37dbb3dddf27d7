package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/54b3r/newsrag-go/internal/answer"
	"github.com/54b3r/newsrag-go/internal/embedder"
	"github.com/54b3r/newsrag-go/internal/generator"
	"github.com/54b3r/newsrag-go/internal/logging"
	"github.com/54b3r/newsrag-go/internal/provider"
	"github.com/54b3r/newsrag-go/internal/rag"
	"github.com/54b3r/newsrag-go/internal/server"
	"github.com/54b3r/newsrag-go/internal/tracing"
)

// NewServeCmd constructs the `newsrag serve` command, which starts the HTTP
// query API.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the newsrag HTTP query API",
		Long: `Start the newsrag HTTP server.

The server answers POST /query requests by embedding the question,
retrieving the most relevant article chunks from Qdrant, and generating
a grounded answer with the configured chat model. Run 'newsrag ingest'
first to populate the index.

Examples:
  newsrag serve
  newsrag serve --port 9090
  MODEL_PROVIDER=openai newsrag serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Langfuse tracing is opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model provider: %w", err)
			}
			gen, err := generator.New(chatModel)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("serve: failed to initialise embedder: %w", err)
			}

			qs, err := buildQdrantStore(log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer qs.Close()

			retriever, err := rag.NewRetriever(emb, qs, 5)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			svc, err := answer.NewService(retriever, gen, answer.WithLogger(log))
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			pingers := []server.Pinger{server.NewQdrantPinger(qs.Client())}
			ledger, err := openLedger(log)
			if err != nil {
				log.Warn("serve: ingest ledger unavailable, readiness will not probe it",
					slog.String("error", err.Error()))
			} else if ledger != nil {
				defer ledger.Close()
				pingers = append(pingers, server.PingerFunc{Label: "ledger", Fn: ledger.Ping})
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			// Flags win over env; env (including YAML-applied values) wins
			// over the built-in defaults inside server.New.
			if !cmd.Flags().Changed("host") {
				host = getEnvOrDefault("SERVER_HOST", host)
			}
			if !cmd.Flags().Changed("port") {
				port = getEnvInt("SERVER_PORT", port)
			}

			srv, err := server.New(svc, &server.Config{
				Host:      host,
				Port:      port,
				Logger:    log,
				Pingers:   pingers,
				RateLimit: getEnvFloat("SERVER_RATE_LIMIT", 0),
				RateBurst: getEnvInt("SERVER_RATE_BURST", 0),
				Registry:  registry,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8000, "TCP port to listen on")

	return cmd
}
