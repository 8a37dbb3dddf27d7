// Package budget provides token budget estimation and passage trimming for
// the grounding context. Because the service supports multiple generation
// backends with different tokenizers, it uses a conservative character-based
// heuristic: 1 token ≈ 4 characters of English prose. This deliberately
// under-estimates so the assembled prompt leaves headroom for the question
// and the model's own overhead.
package budget

import (
	"github.com/54b3r/newsrag-go/internal/rag"
)

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English text.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default grounding-context budget in
	// tokens. Conservative enough to fit within 8k-context models while
	// leaving room for the question and the answer.
	DefaultMaxContextTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// TrimPassages drops the lowest-scored passages from the tail of hits until
// the estimated total token count fits within maxTokens. hits must already
// be in descending score order, so trimming from the tail removes the least
// relevant passages first. The best passage is always kept, even when it
// alone exceeds the budget, an over-long prompt beats an empty one.
//
// Returns the (possibly shortened) prefix of hits; the input is not mutated.
func TrimPassages(hits []rag.ScoredPoint, maxTokens int) []rag.ScoredPoint {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxContextTokens
	}

	total := 0
	for i, h := range hits {
		// Blank-line separators between passages count toward the budget.
		total += Estimate(h.Text) + 1
		if total > maxTokens && i > 0 {
			return hits[:i]
		}
	}
	return hits
}
