package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/54b3r/newsrag-go/internal/chunker"
	"github.com/54b3r/newsrag-go/internal/corpus"
	"github.com/54b3r/newsrag-go/internal/embedder"
	"github.com/54b3r/newsrag-go/internal/ingestion"
	"github.com/54b3r/newsrag-go/internal/logging"
	"github.com/54b3r/newsrag-go/internal/store"
)

// NewIngestCmd constructs the `newsrag ingest` command, which rebuilds the
// vector index from a directory of news articles.
func NewIngestCmd() *cobra.Command {
	var dir string
	var chunkSize int
	var chunkStep int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Index a directory of news articles into the vector store",
		Long: `Chunk, embed, and index every .txt article under the given directory.

The Qdrant collection is dropped and recreated on each run, so the index
always reflects exactly the articles present in the corpus directory.
Each run is recorded in the ingest ledger (~/.newsrag/ledger.db).

Required environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: news)
  EMBEDDING_PROVIDER   Embedding backend: jina, openai, azure, ollama (default: jina)
  JINA_API_KEY         API key for the default Jina backend
  EMBEDDING_*          Provider-specific overrides (see README)

Examples:
  newsrag ingest --dir ./news
  newsrag ingest --dir /data/articles --chunk-size 800 --chunk-step 400`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			docs, err := corpus.ReadDir(dir)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			log.Info("corpus loaded", slog.String("dir", dir), slog.Int("documents", len(docs)))

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ingest: failed to initialise embedder: %w", err)
			}

			qs, err := buildQdrantStore(log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer qs.Close()

			ledger, err := openLedger(log)
			if err != nil {
				log.Warn("ledger unavailable, run will not be recorded", slog.Any("error", err))
			}
			if ledger != nil {
				defer ledger.Close()
			}

			pipeline, err := ingestion.NewPipeline(emb, qs, &ingestion.Config{
				ChunkSize: chunkSize,
				ChunkStep: chunkStep,
			})
			if err != nil {
				return fmt.Errorf("ingest: failed to create pipeline: %w", err)
			}

			started := time.Now()
			summary, runErr := pipeline.Ingest(ctx, docs, func(msg string) {
				log.Info(msg)
			})

			if ledger != nil {
				run := store.Run{
					Corpus:    dir,
					Status:    store.StatusSucceeded,
					StartedAt: started,
					Duration:  time.Since(started),
				}
				if summary != nil {
					run.Documents = summary.Documents
					run.Chunks = summary.Chunks
					run.PointsWritten = summary.PointsWritten
					run.VectorSize = summary.VectorSize
				}
				if runErr != nil {
					run.Status = store.StatusFailed
					run.Detail = runErr.Error()
				}
				if err := ledger.Record(ctx, run); err != nil {
					log.Warn("failed to record ingest run", slog.Any("error", err))
				}
			}

			if runErr != nil {
				return fmt.Errorf("ingest: pipeline failed: %w", runErr)
			}

			log.Info("ingestion complete",
				slog.Int("documents", summary.Documents),
				slog.Int("chunks", summary.Chunks),
				slog.Int("points", summary.PointsWritten),
				slog.Uint64("vector_size", summary.VectorSize),
				slog.Duration("took", time.Since(started)),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory of .txt articles to ingest")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", chunker.DefaultSize, "Chunk size in bytes")
	cmd.Flags().IntVar(&chunkStep, "chunk-step", chunker.DefaultStep, "Distance between chunk offsets in bytes")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}
