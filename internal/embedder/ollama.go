package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OllamaEmbedder implements rag.Embedder using the Ollama /api/embed
// endpoint. It is safe for concurrent use. No API key is required, Ollama
// runs locally.
type OllamaEmbedder struct {
	// host is the Ollama server base URL (e.g. "http://localhost:11434").
	host string
	// model is the embedding model name (e.g. "nomic-embed-text").
	model string
	// batchSize is the maximum number of texts per request.
	batchSize int
	// client is the shared HTTP client with a sensible timeout.
	client *http.Client
}

// OllamaConfig holds the settings for constructing an OllamaEmbedder.
type OllamaConfig struct {
	// Host is the Ollama server base URL (e.g. "http://localhost:11434").
	Host string
	// Model is the embedding model name (e.g. "nomic-embed-text").
	Model string
	// BatchSize is the maximum number of texts per request. Defaults to 32.
	BatchSize int
}

// NewOllamaEmbedder constructs an OllamaEmbedder from the given config.
func NewOllamaEmbedder(cfg *OllamaConfig) *OllamaEmbedder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &OllamaEmbedder{
		host:      cfg.Host,
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

// ollamaEmbedRequest is the JSON body sent to the Ollama /api/embed endpoint.
type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// ollamaEmbedResponse is the JSON body returned from the /api/embed endpoint.
type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// Embed converts texts into their corresponding embeddings, one request per
// batch. The returned slice is parallel to the input.
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))

	for _, r := range batches(len(texts), e.batchSize) {
		start, end := r[0], r[1]
		vectors, err := e.embedBatch(ctx, texts[start:end], start, end)
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, vectors...)
	}

	return embeddings, nil
}

// embedBatch issues a single embed request for texts[start:end].
func (e *OllamaEmbedder) embedBatch(ctx context.Context, batch []string, start, end int) ([][]float32, error) {
	payload, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Input: batch})
	if err != nil {
		return nil, fmt.Errorf("ollama embedder: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.host+"/api/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ollama embedder: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &BatchError{Start: start, End: end, Err: err}
	}
	defer resp.Body.Close()

	var result ollamaEmbedResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if decodeErr == nil && result.Error != "" {
			detail = result.Error
		}
		return nil, &BatchError{Start: start, End: end, Detail: detail}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("ollama embedder: decode response: %w", decodeErr)
	}

	if len(result.Embeddings) != len(batch) {
		return nil, &BatchError{
			Start:  start,
			End:    end,
			Detail: fmt.Sprintf("expected %d embeddings, got %d", len(batch), len(result.Embeddings)),
		}
	}

	return result.Embeddings, nil
}
