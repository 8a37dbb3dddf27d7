package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/54b3r/newsrag-go/internal/rag"
)

// letterEmbedder embeds a text as its A/B/C letter counts. Texts sharing
// letters get similar vectors, which makes retrieval outcomes predictable.
type letterEmbedder struct {
	calls int
	err   error
}

func (e *letterEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{
			float32(strings.Count(text, "A")),
			float32(strings.Count(text, "B")),
			float32(strings.Count(text, "C")),
		}
	}
	return vectors, nil
}

func testDocs() []rag.Document {
	return []rag.Document{
		{SourceID: "doc1.txt", Text: "A A A B B B"},
		{SourceID: "doc2.txt", Text: "C C C"},
	}
}

func TestPipelineChunk(t *testing.T) {
	p, err := NewPipeline(&letterEmbedder{}, rag.NewMemoryStore(), &Config{ChunkSize: 6, ChunkStep: 3})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	chunks := p.Chunk(testDocs())
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}

	// doc1 (11 bytes, size 6, step 3) yields offsets 0 and 3; doc2 is
	// shorter than the chunk size and yields a single chunk at offset 0.
	wantKeys := []string{"doc1.txt_0", "doc1.txt_3", "doc2.txt_0"}
	for i, want := range wantKeys {
		if chunks[i].Key != want {
			t.Errorf("chunk %d key = %q, want %q", i, chunks[i].Key, want)
		}
	}
	if chunks[2].Text != "C C C" {
		t.Errorf("doc2 chunk text = %q, want %q", chunks[2].Text, "C C C")
	}
}

func TestPipelineIngestAndRetrieve(t *testing.T) {
	embedder := &letterEmbedder{}
	store := rag.NewMemoryStore()
	p, err := NewPipeline(embedder, store, &Config{ChunkSize: 6, ChunkStep: 3})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	summary, err := p.Ingest(t.Context(), testDocs(), nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Documents != 2 || summary.Chunks != 3 || summary.PointsWritten != 3 {
		t.Fatalf("summary = %+v, want 2 documents, 3 chunks, 3 points", summary)
	}
	if summary.VectorSize != 3 {
		t.Errorf("summary.VectorSize = %d, want 3", summary.VectorSize)
	}

	retriever, err := rag.NewRetriever(embedder, store, 5)
	if err != nil {
		t.Fatalf("NewRetriever: %v", err)
	}

	// A query about B should surface the B-heavy chunk of doc1, not the
	// A-only chunk and not doc2.
	hits, err := retriever.Retrieve(t.Context(), "B B", 1)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if !strings.Contains(hits[0].Text, "B") {
		t.Errorf("top hit text = %q, want a chunk containing B", hits[0].Text)
	}
	if !strings.HasPrefix(hits[0].SourceID, "doc1.txt") {
		t.Errorf("top hit source = %q, want a doc1.txt chunk", hits[0].SourceID)
	}
}

func TestPipelineIngestReplacesCollection(t *testing.T) {
	embedder := &letterEmbedder{}
	store := rag.NewMemoryStore()
	p, err := NewPipeline(embedder, store, &Config{ChunkSize: 6, ChunkStep: 3})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	if _, err := p.Ingest(t.Context(), testDocs(), nil); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}

	// A second run over a smaller corpus must fully replace the first.
	summary, err := p.Ingest(t.Context(), []rag.Document{{SourceID: "doc3.txt", Text: "B B"}}, nil)
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if summary.PointsWritten != 1 {
		t.Fatalf("second run wrote %d points, want 1", summary.PointsWritten)
	}

	hits, err := store.Search(t.Context(), []float32{0, 1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("collection holds %d points after rebuild, want 1", len(hits))
	}
}

func TestPipelineIngestEmbedderFailure(t *testing.T) {
	wantErr := errors.New("backend unavailable")
	store := rag.NewMemoryStore()
	p, err := NewPipeline(&letterEmbedder{err: wantErr}, store, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	summary, err := p.Ingest(t.Context(), testDocs(), nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Ingest error = %v, want wrapped %v", err, wantErr)
	}
	if summary.PointsWritten != 0 {
		t.Errorf("summary.PointsWritten = %d, want 0", summary.PointsWritten)
	}

	// The store must be untouched when embedding fails: no rebuild, no points.
	if _, err := store.Upsert(t.Context(), []rag.Point{{ID: 1, Vector: []float32{1}}}); err == nil {
		t.Error("store was rebuilt despite embedding failure")
	}
}

func TestPipelineIngestEmptyCorpus(t *testing.T) {
	p, err := NewPipeline(&letterEmbedder{}, rag.NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if _, err := p.Ingest(t.Context(), nil, nil); err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestNewPipelineDefaults(t *testing.T) {
	p, err := NewPipeline(&letterEmbedder{}, rag.NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if p.cfg.ChunkSize != 500 || p.cfg.ChunkStep != 250 {
		t.Errorf("defaults = size %d step %d, want 500/250", p.cfg.ChunkSize, p.cfg.ChunkStep)
	}

	if _, err := NewPipeline(nil, rag.NewMemoryStore(), nil); err == nil {
		t.Error("expected error for nil embedder")
	}
	if _, err := NewPipeline(&letterEmbedder{}, nil, nil); err == nil {
		t.Error("expected error for nil store")
	}
}
