package budget

import (
	"strings"
	"testing"

	"github.com/54b3r/newsrag-go/internal/rag"
)

func TestEstimate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s    string
		want int
	}{
		{"", 0},
		{"ab", 1},   // short non-empty rounds up to 1
		{"abcd", 1}, // 4 chars = 1 token
		{strings.Repeat("x", 400), 100},
	}
	for _, tt := range tests {
		if got := Estimate(tt.s); got != tt.want {
			t.Errorf("Estimate(%d chars): expected %d, got %d", len(tt.s), tt.want, got)
		}
	}
}

func TestTrimPassages_UnderBudgetKeepsAll(t *testing.T) {
	t.Parallel()

	hits := []rag.ScoredPoint{
		{Text: "short one", Score: 0.9},
		{Text: "short two", Score: 0.8},
	}
	trimmed := TrimPassages(hits, 100)
	if len(trimmed) != 2 {
		t.Errorf("expected all passages kept, got %d", len(trimmed))
	}
}

func TestTrimPassages_DropsTailFirst(t *testing.T) {
	t.Parallel()

	big := strings.Repeat("w", 400) // ~100 tokens each
	hits := []rag.ScoredPoint{
		{Text: big, Score: 0.9},
		{Text: big, Score: 0.7},
		{Text: big, Score: 0.5},
	}

	trimmed := TrimPassages(hits, 220)
	if len(trimmed) != 2 {
		t.Fatalf("expected 2 passages within budget, got %d", len(trimmed))
	}
	if trimmed[0].Score != 0.9 || trimmed[1].Score != 0.7 {
		t.Errorf("expected highest-scored passages retained, got scores %v, %v",
			trimmed[0].Score, trimmed[1].Score)
	}
}

func TestTrimPassages_BestPassageAlwaysKept(t *testing.T) {
	t.Parallel()

	hits := []rag.ScoredPoint{{Text: strings.Repeat("w", 4000), Score: 0.9}}
	trimmed := TrimPassages(hits, 10)
	if len(trimmed) != 1 {
		t.Errorf("expected the single best passage kept despite budget, got %d", len(trimmed))
	}
}

func TestTrimPassages_ZeroBudgetUsesDefault(t *testing.T) {
	t.Parallel()

	hits := []rag.ScoredPoint{{Text: "hello", Score: 1}}
	if got := TrimPassages(hits, 0); len(got) != 1 {
		t.Errorf("expected default budget to keep passage, got %d", len(got))
	}
}
