// Package ingestion implements the corpus ingestion pipeline. It chunks
// each document into overlapping windows, assigns deterministic point IDs,
// embeds the chunk texts in bounded batches, rebuilds the vector collection,
// and upserts the points. The pipeline is invoked by the `newsrag ingest`
// CLI command; every run is a full rebuild of the collection.
package ingestion

import (
	"context"
	"fmt"

	"github.com/54b3r/newsrag-go/internal/chunker"
	"github.com/54b3r/newsrag-go/internal/identity"
	"github.com/54b3r/newsrag-go/internal/rag"
)

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// ChunkSize is the maximum number of bytes per document chunk.
	// Defaults to 500 if zero.
	ChunkSize int

	// ChunkStep is the distance between consecutive chunk offsets.
	// Defaults to 250 (50% overlap) if zero; clamped below ChunkSize.
	ChunkStep int
}

// Summary reports what an ingestion run accomplished. PointsWritten may be
// smaller than Chunks when an upsert fails partway through; the collection
// then holds a prefix of the points and the operator must rerun ingestion.
type Summary struct {
	// Documents is the number of corpus documents processed.
	Documents int

	// Chunks is the number of chunks produced across all documents.
	Chunks int

	// PointsWritten is the number of points confirmed written to the index.
	PointsWritten int

	// VectorSize is the embedding dimensionality observed on this run.
	VectorSize uint64
}

// Pipeline orchestrates the chunk → identify → embed → rebuild → upsert flow.
type Pipeline struct {
	// embedder converts chunk texts into dense vector embeddings.
	embedder rag.Embedder

	// store owns the vector collection being (re)populated.
	store rag.VectorStore

	// cfg holds the resolved pipeline configuration.
	cfg *Config
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(embedder rag.Embedder, store rag.VectorStore, cfg *Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("ingestion: store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunker.DefaultSize
	}
	if cfg.ChunkStep <= 0 {
		cfg.ChunkStep = chunker.DefaultStep
	}
	if cfg.ChunkStep >= cfg.ChunkSize {
		cfg.ChunkStep = cfg.ChunkSize / 2
	}

	return &Pipeline{embedder: embedder, store: store, cfg: cfg}, nil
}

// Chunk splits the documents into overlapping chunks with deterministic keys.
// Pure, no network or I/O, so it can be inspected and tested separately
// from the embed/upsert stages.
func (p *Pipeline) Chunk(docs []rag.Document) []rag.Chunk {
	var chunks []rag.Chunk
	for _, doc := range docs {
		for offset, text := range chunker.Windows(doc.Text, p.cfg.ChunkSize, p.cfg.ChunkStep) {
			chunks = append(chunks, rag.Chunk{
				Key:      identity.ChunkKey(doc.SourceID, offset),
				SourceID: doc.SourceID,
				Offset:   offset,
				Text:     text,
			})
		}
	}
	return chunks
}

// Ingest runs the full pipeline over docs and returns a run summary.
// The collection is dropped and recreated on every call; a failure anywhere
// aborts the run with the summary reflecting progress up to that point.
// Progress is reported via the optional progress callback.
func (p *Pipeline) Ingest(ctx context.Context, docs []rag.Document, progress func(msg string)) (*Summary, error) {
	if progress == nil {
		progress = func(string) {}
	}

	summary := &Summary{Documents: len(docs)}

	chunks := p.Chunk(docs)
	summary.Chunks = len(chunks)
	if len(chunks) == 0 {
		return summary, fmt.Errorf("ingestion: corpus produced no chunks")
	}
	progress(fmt.Sprintf("chunked %d documents into %d chunks", len(docs), len(chunks)))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return summary, fmt.Errorf("ingestion: embedding failed: %w", err)
	}
	// Embedders enforce per-batch counts, but the one-to-one invariant is
	// what point assembly below depends on, so verify it here too.
	if len(vectors) != len(chunks) {
		return summary, fmt.Errorf("ingestion: embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	summary.VectorSize = uint64(len(vectors[0]))
	progress(fmt.Sprintf("embedded %d chunks (dimension %d)", len(chunks), summary.VectorSize))

	points := make([]rag.Point, len(chunks))
	for i, c := range chunks {
		points[i] = rag.Point{
			ID:       identity.PointID(c.Key),
			Vector:   vectors[i],
			Text:     c.Text,
			SourceID: c.Key,
		}
	}

	// The vector size is only known once embeddings exist, so the rebuild
	// happens here rather than at pipeline construction.
	if err := p.store.Rebuild(ctx, summary.VectorSize); err != nil {
		return summary, fmt.Errorf("ingestion: rebuild failed: %w", err)
	}
	progress("collection rebuilt")

	written, err := p.store.Upsert(ctx, points)
	summary.PointsWritten = written
	if err != nil {
		return summary, fmt.Errorf("ingestion: upsert failed after %d of %d points: %w", written, len(points), err)
	}
	progress(fmt.Sprintf("upserted %d points", written))

	return summary, nil
}
