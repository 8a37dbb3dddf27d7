package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// JinaEmbedder implements rag.Embedder using the Jina AI embeddings REST API.
// It is safe for concurrent use.
type JinaEmbedder struct {
	// endpoint is the full embeddings URL (default: https://api.jina.ai/v1/embeddings).
	endpoint string
	// apiKey is the Bearer token.
	apiKey string
	// model is the embedding model name (e.g. "jina-clip-v2").
	model string
	// batchSize is the maximum number of texts per request.
	batchSize int
	// client is the shared HTTP client with a sensible timeout.
	client *http.Client
}

// JinaConfig holds the settings for constructing a JinaEmbedder.
type JinaConfig struct {
	// Endpoint is the embeddings URL. Defaults to the public Jina API.
	Endpoint string
	// APIKey is the authentication key.
	APIKey string
	// Model is the embedding model name. Defaults to "jina-clip-v2".
	Model string
	// BatchSize is the maximum number of texts per request. Defaults to 32.
	BatchSize int
}

// NewJinaEmbedder constructs a JinaEmbedder from the given config.
func NewJinaEmbedder(cfg *JinaConfig) *JinaEmbedder {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.jina.ai/v1/embeddings"
	}
	if cfg.Model == "" {
		cfg.Model = "jina-clip-v2"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &JinaEmbedder{
		endpoint:  cfg.Endpoint,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

// jinaInput is one entry of the request's input array.
type jinaInput struct {
	Text string `json:"text"`
}

// jinaEmbedRequest is the JSON body sent to the embeddings endpoint.
type jinaEmbedRequest struct {
	Model string      `json:"model"`
	Input []jinaInput `json:"input"`
}

// jinaEmbedResponse is the JSON body returned from the embeddings endpoint.
type jinaEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}

// Embed converts texts into their corresponding embeddings, issuing one
// request per batch of at most batchSize texts. The returned slice is
// parallel to the input. Any failed batch aborts the whole call with a
// *BatchError; a batch returning fewer vectors than inputs is also an error
// rather than a silent misalignment.
func (e *JinaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
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

// embedBatch issues a single embeddings request for texts[start:end].
func (e *JinaEmbedder) embedBatch(ctx context.Context, batch []string, start, end int) ([][]float32, error) {
	body := jinaEmbedRequest{Model: e.model, Input: make([]jinaInput, len(batch))}
	for i, t := range batch {
		body.Input[i] = jinaInput{Text: t}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("jina embedder: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("jina embedder: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &BatchError{Start: start, End: end, Err: err}
	}
	defer resp.Body.Close()

	var result jinaEmbedResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if decodeErr == nil && result.Detail != "" {
			detail = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, result.Detail)
		}
		return nil, &BatchError{Start: start, End: end, Detail: detail}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("jina embedder: decode response: %w", decodeErr)
	}

	if len(result.Data) != len(batch) {
		return nil, &BatchError{
			Start:  start,
			End:    end,
			Detail: fmt.Sprintf("expected %d embeddings, got %d", len(batch), len(result.Data)),
		}
	}

	vectors := make([][]float32, len(result.Data))
	for i, d := range result.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
