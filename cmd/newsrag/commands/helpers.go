package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/54b3r/newsrag-go/internal/rag"
	"github.com/54b3r/newsrag-go/internal/store"
)

// buildQdrantStore connects to Qdrant using the QDRANT_* environment
// variables and returns the store. The caller owns Close.
func buildQdrantStore(log *slog.Logger) (*rag.QdrantStore, error) {
	host := getEnvOrDefault("QDRANT_HOST", "localhost")
	port := getEnvInt("QDRANT_PORT", 6334)
	collection := getEnvOrDefault("QDRANT_COLLECTION", "news")

	qs, err := rag.NewQdrantStore(&rag.QdrantConfig{
		Host:       host,
		Port:       port,
		Collection: collection,
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
	}

	log.Info("qdrant store ready",
		slog.String("host", host),
		slog.Int("port", port),
		slog.String("collection", collection),
	)
	return qs, nil
}

// openLedger opens the ingest-run ledger. NEWSRAG_LEDGER_DB overrides the
// default path (~/.newsrag/ledger.db); "disabled" turns the ledger off.
// A nil ledger with nil error means the ledger is disabled.
func openLedger(log *slog.Logger) (store.RunLedger, error) {
	dbPath := os.Getenv("NEWSRAG_LEDGER_DB")
	if dbPath == "disabled" {
		log.Info("ledger: disabled via NEWSRAG_LEDGER_DB=disabled")
		return nil, nil
	}
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("ledger: %w", err)
		}
	}
	ledger, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}
	log.Info("ledger: opened", slog.String("path", dbPath))
	return ledger, nil
}

// getEnvOrDefault returns the env var value or fallback when unset.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the env var parsed as int, or fallback when unset or
// unparseable.
func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvFloat returns the env var parsed as float64, or fallback when unset
// or unparseable.
func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
