package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process VectorStore using brute-force cosine
// similarity. It backs tests and local development where no Qdrant instance
// is available; the production store is QdrantStore.
type MemoryStore struct {
	// mu protects points and vectorSize.
	mu sync.RWMutex

	// points maps numeric ID to the stored point. Upserting an existing ID
	// overwrites it, mirroring index semantics.
	points map[uint64]Point

	// order tracks insertion order of IDs for deterministic iteration.
	order []uint64

	// vectorSize is the collection dimensionality set by Rebuild.
	// Zero means the collection does not exist yet.
	vectorSize uint64
}

// NewMemoryStore constructs an empty MemoryStore. Rebuild must be called
// before Upsert, matching the lifecycle of the real store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{points: make(map[uint64]Point)}
}

// Rebuild discards all stored points and fixes the collection dimensionality.
func (s *MemoryStore) Rebuild(_ context.Context, vectorSize uint64) error {
	if vectorSize == 0 {
		return fmt.Errorf("memory store: vector size must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = make(map[uint64]Point)
	s.order = nil
	s.vectorSize = vectorSize
	return nil
}

// Upsert stores the points, overwriting any existing point with the same ID.
func (s *MemoryStore) Upsert(_ context.Context, points []Point) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vectorSize == 0 {
		return 0, fmt.Errorf("memory store: collection does not exist, call Rebuild first")
	}
	for i, p := range points {
		if uint64(len(p.Vector)) != s.vectorSize {
			return i, fmt.Errorf("memory store: point %d has dimension %d, collection expects %d",
				p.ID, len(p.Vector), s.vectorSize)
		}
		if _, exists := s.points[p.ID]; !exists {
			s.order = append(s.order, p.ID)
		}
		s.points[p.ID] = p
	}
	return len(points), nil
}

// Search scores every stored point against queryVector with cosine
// similarity and returns the topK highest scorers in descending order.
func (s *MemoryStore) Search(_ context.Context, queryVector []float32, topK int) ([]ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 || len(s.points) == 0 {
		return nil, nil
	}

	hits := make([]ScoredPoint, 0, len(s.points))
	for _, id := range s.order {
		p := s.points[id]
		hits = append(hits, ScoredPoint{
			ID:       p.ID,
			Text:     p.Text,
			SourceID: p.SourceID,
			Score:    cosine(queryVector, p.Vector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// cosine returns the cosine similarity of a and b, or 0 when either has
// zero magnitude or the dimensions differ.
func cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
