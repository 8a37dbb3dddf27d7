package rag

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

const (
	// defaultUpsertBatchSize bounds the number of points per upsert request.
	// This is the only backpressure toward Qdrant on the ingestion path.
	defaultUpsertBatchSize = 100

	// defaultHNSWEf is the HNSW exploration factor used for searches.
	// Higher values trade latency for recall.
	defaultHNSWEf = 128
)

// QdrantConfig holds connection parameters for a Qdrant vector store instance.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the Qdrant collection name to use.
	Collection string

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool

	// UpsertBatchSize overrides the per-request point count for upserts.
	// Defaults to 100 if zero.
	UpsertBatchSize int

	// HNSWEf overrides the HNSW exploration factor for searches.
	// Defaults to 128 if zero.
	HNSWEf uint64
}

// QdrantStore implements VectorStore backed by a Qdrant instance.
type QdrantStore struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// cfg holds the resolved configuration for this store.
	cfg *QdrantConfig
}

// NewQdrantStore creates a QdrantStore connected to the configured instance.
// It does not create the collection, that happens in Rebuild, once the
// vector size is known from the first embedding.
func NewQdrantStore(cfg *QdrantConfig) (*QdrantStore, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant: collection name must not be empty")
	}
	if cfg.UpsertBatchSize <= 0 {
		cfg.UpsertBatchSize = defaultUpsertBatchSize
	}
	if cfg.HNSWEf == 0 {
		cfg.HNSWEf = defaultHNSWEf
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	return &QdrantStore{client: client, cfg: cfg}, nil
}

// Client exposes the underlying gRPC client for dependency probes.
func (s *QdrantStore) Client() *qdrant.Client { return s.client }

// Rebuild drops the collection if it exists and creates it fresh with the
// given dimensionality and cosine distance. Every ingestion run starts here;
// all previously indexed points are lost.
func (s *QdrantStore) Rebuild(ctx context.Context, vectorSize uint64) error {
	exists, err := s.client.CollectionExists(ctx, s.cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection existence: %w", err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, s.cfg.Collection); err != nil {
			return fmt.Errorf("qdrant: failed to delete collection %q: %w", s.cfg.Collection, err)
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %q: %w", s.cfg.Collection, err)
	}

	return nil
}

// Upsert writes points in batches of cfg.UpsertBatchSize, preserving input
// order across batches. A failure partway through leaves a prefix of points
// written; the returned count reports how many were confirmed.
func (s *QdrantStore) Upsert(ctx context.Context, points []Point) (int, error) {
	written := 0
	for start := 0; start < len(points); start += s.cfg.UpsertBatchSize {
		end := start + s.cfg.UpsertBatchSize
		if end > len(points) {
			end = len(points)
		}

		batch := make([]*qdrant.PointStruct, 0, end-start)
		for _, p := range points[start:end] {
			batch = append(batch, &qdrant.PointStruct{
				Id:      qdrant.NewIDNum(p.ID),
				Vectors: qdrant.NewVectors(p.Vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"text":      p.Text,
					"source_id": p.SourceID,
				}),
			})
		}

		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.cfg.Collection,
			Points:         batch,
		})
		if err != nil {
			return written, fmt.Errorf("qdrant: upsert of points %d..%d failed: %w", start, end, err)
		}
		written = end
	}

	return written, nil
}

// Search performs a cosine similarity search and returns up to topK scored
// points in descending score order. An empty collection or no matches yields
// an empty slice, not an error.
func (s *QdrantStore) Search(ctx context.Context, queryVector []float32, topK int) ([]ScoredPoint, error) {
	limit := uint64(topK) //nolint:gosec // topK is validated by callers
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.Collection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		Params: &qdrant.SearchParams{
			HnswEf: &s.cfg.HNSWEf,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search failed: %w", err)
	}

	hits := make([]ScoredPoint, 0, len(results))
	for _, r := range results {
		hit := ScoredPoint{
			ID:    r.Id.GetNum(),
			Score: r.Score,
		}
		if p := r.Payload; p != nil {
			if v, ok := p["text"]; ok {
				hit.Text = v.GetStringValue()
			}
			if v, ok := p["source_id"]; ok {
				hit.SourceID = v.GetStringValue()
			}
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

// Close closes the underlying Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}
