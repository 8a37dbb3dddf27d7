// Package embedder provides implementations of the rag.Embedder interface
// for converting text into dense vector embeddings. Each implementation
// talks to a different backend (Jina, OpenAI, Azure OpenAI, Ollama) via
// plain HTTP, no additional SDK dependencies are required.
//
// All implementations share the same batching contract: inputs are
// partitioned into batches of at most the configured batch size, one request
// is issued per batch, and input order is preserved in the output. A failed
// batch aborts the whole call with a *BatchError naming the batch range;
// partial results from earlier batches are discarded and the caller must
// retry the entire call.
package embedder

import (
	"fmt"
)

// DefaultBatchSize bounds the number of texts per embedding request. This is
// the only backpressure toward the embedding provider and keeps individual
// payloads under provider rate/size limits.
const DefaultBatchSize = 32

// BatchError reports the failure of a single embedding batch. Start and End
// identify the half-open input index range [Start, End) of the failed batch
// so operators can correlate the failure with their corpus.
type BatchError struct {
	// Start is the index of the first text in the failed batch.
	Start int

	// End is one past the index of the last text in the failed batch.
	End int

	// Detail is the status detail reported by the service (e.g. "HTTP 429"
	// or the provider's error message).
	Detail string

	// Err is the underlying transport error, if any.
	Err error
}

// Error formats the batch range and status detail.
func (e *BatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding batch %d..%d failed: %v", e.Start, e.End, e.Err)
	}
	return fmt.Sprintf("embedding batch %d..%d failed: %s", e.Start, e.End, e.Detail)
}

// Unwrap returns the underlying transport error.
func (e *BatchError) Unwrap() error { return e.Err }

// batches yields the half-open index ranges [start, end) that partition n
// inputs into batches of at most size.
func batches(n, size int) [][2]int {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
