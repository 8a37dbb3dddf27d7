// Package rag defines the record types and interfaces for the
// retrieval-augmented generation pipeline: documents, chunks, indexed
// points, vector storage, embedding, retrieval, and text generation.
// Concrete implementations (Qdrant, Jina, eino chat models) satisfy these
// interfaces so the pipeline layers never depend on a specific backend.
package rag

import (
	"context"
)

// Document is one (source_id, text) pair produced by the corpus source.
// Immutable once read.
type Document struct {
	// SourceID uniquely identifies the document within the corpus
	// (the corpus directory reader uses the file base name).
	SourceID string

	// Text is the full document text.
	Text string
}

// Chunk is a bounded contiguous substring of a Document, the atomic unit
// of embedding and retrieval.
type Chunk struct {
	// Key is the logical chunk identifier: "{source_id}_{offset}".
	Key string

	// SourceID is the owning document's identifier.
	SourceID string

	// Offset is the byte offset of the chunk within the document text.
	Offset int

	// Text is the chunk content, at most the configured chunk size.
	Text string
}

// Point is the unit stored in the vector index: a numeric ID derived from
// the chunk key, the chunk's embedding, and the payload fields needed at
// query time.
type Point struct {
	// ID is the stable numeric identifier derived from the chunk key.
	// Re-ingesting the same chunk produces the same ID, so upsert
	// overwrites instead of duplicating.
	ID uint64

	// Vector is the chunk's embedding.
	Vector []float32

	// Text is the chunk text, stored as payload for context assembly.
	Text string

	// SourceID is the chunk key, stored as payload for provenance.
	SourceID string
}

// ScoredPoint is a Point returned from similarity search together with its
// similarity score under the collection's distance metric.
type ScoredPoint struct {
	// ID is the numeric point identifier.
	ID uint64

	// Text is the stored chunk text.
	Text string

	// SourceID is the stored chunk key.
	SourceID string

	// Score is the similarity score (higher is more similar).
	Score float32
}

// Embedder converts batches of text into fixed-dimension embeddings.
// Implementations must preserve input order, return exactly one vector per
// input text, and be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore owns the vector collection's lifecycle and search.
// Implementations must be safe to call from multiple goroutines.
type VectorStore interface {
	// Rebuild deletes the collection if it exists, then creates it fresh
	// with the given vector dimensionality and cosine distance. Destructive:
	// all previously indexed points are lost.
	Rebuild(ctx context.Context, vectorSize uint64) error

	// Upsert writes points in bounded batches, preserving input order.
	// There is no atomicity across batch boundaries; on failure the
	// returned count reports how many points were confirmed written.
	Upsert(ctx context.Context, points []Point) (int, error)

	// Search returns up to topK points ordered by descending similarity
	// score. An empty result is not an error.
	Search(ctx context.Context, queryVector []float32, topK int) ([]ScoredPoint, error)

	// Close releases any resources held by the store.
	Close() error
}

// Retriever is the query-side composition of embedding and vector search.
// Implementations must be safe to call from multiple goroutines.
type Retriever interface {
	// Retrieve embeds the query and returns the top-k most similar points.
	Retrieve(ctx context.Context, query string, topK int) ([]ScoredPoint, error)
}

// Generator produces an answer from a single text prompt.
// Implementations must be safe to call from multiple goroutines.
type Generator interface {
	// Generate returns the generated text for prompt, leading and trailing
	// whitespace removed.
	Generate(ctx context.Context, prompt string) (string, error)
}
