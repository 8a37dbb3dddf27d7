package rag

import (
	"context"
	"testing"
)

func TestMemoryStore_UpsertBeforeRebuildFails(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	_, err := s.Upsert(context.Background(), []Point{{ID: 1, Vector: []float32{1, 0}}})
	if err == nil {
		t.Fatal("expected error upserting into a collection that was never rebuilt")
	}
}

func TestMemoryStore_RebuildDropsPoints(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Rebuild(ctx, 2); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if _, err := s.Upsert(ctx, []Point{{ID: 1, Vector: []float32{1, 0}, Text: "a"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := s.Rebuild(ctx, 2); err != nil {
		t.Fatalf("second rebuild: %v", err)
	}

	hits, err := s.Search(ctx, []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected empty result after rebuild, got %d hits", len(hits))
	}
}

func TestMemoryStore_UpsertOverwritesSameID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Rebuild(ctx, 2); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	if _, err := s.Upsert(ctx, []Point{{ID: 7, Vector: []float32{1, 0}, Text: "old"}}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := s.Upsert(ctx, []Point{{ID: 7, Vector: []float32{1, 0}, Text: "new"}}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	hits, err := s.Search(ctx, []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Text != "new" {
		t.Errorf("expected overwrite, got text %q", hits[0].Text)
	}
}

func TestMemoryStore_SearchOrdersByScore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Rebuild(ctx, 3); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	points := []Point{
		{ID: 1, Vector: []float32{1, 0, 0}, Text: "aligned"},
		{ID: 2, Vector: []float32{0, 1, 0}, Text: "orthogonal"},
		{ID: 3, Vector: []float32{1, 1, 0}, Text: "diagonal"},
	}
	if _, err := s.Upsert(ctx, points); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	hits, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Text != "aligned" {
		t.Errorf("best hit: expected %q, got %q", "aligned", hits[0].Text)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("hits not in descending score order: %f < %f", hits[0].Score, hits[1].Score)
	}
}

func TestMemoryStore_DimensionMismatchReportsWrittenPrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Rebuild(ctx, 2); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	points := []Point{
		{ID: 1, Vector: []float32{1, 0}},
		{ID: 2, Vector: []float32{1, 0, 0}}, // wrong dimension
		{ID: 3, Vector: []float32{0, 1}},
	}
	written, err := s.Upsert(ctx, points)
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if written != 1 {
		t.Errorf("expected 1 confirmed point before failure, got %d", written)
	}
}
