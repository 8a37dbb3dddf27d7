package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/54b3r/newsrag-go/internal/rag"
)

type fakeRetriever struct {
	hits []rag.ScoredPoint
	err  error
	topK int
}

func (r *fakeRetriever) Retrieve(_ context.Context, _ string, topK int) ([]rag.ScoredPoint, error) {
	r.topK = topK
	return r.hits, r.err
}

type fakeGenerator struct {
	answer string
	err    error
	prompt string
	calls  int
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompt = prompt
	return g.answer, g.err
}

func TestAnswerBuildsGroundedPrompt(t *testing.T) {
	retriever := &fakeRetriever{hits: []rag.ScoredPoint{
		{Text: "first passage", Score: 0.9},
		{Text: "second passage", Score: 0.8},
	}}
	generator := &fakeGenerator{answer: "the answer"}
	svc, err := NewService(retriever, generator)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result := svc.Answer(t.Context(), "what happened?", 5)
	if result.Outcome != Answered {
		t.Fatalf("outcome = %v, want Answered", result.Outcome)
	}
	if result.Text != "the answer" {
		t.Errorf("text = %q, want %q", result.Text, "the answer")
	}
	if result.Passages != 2 {
		t.Errorf("passages = %d, want 2", result.Passages)
	}
	if retriever.topK != 5 {
		t.Errorf("retriever got topK %d, want 5", retriever.topK)
	}

	wantPrompt := "Use the following context to answer the question.\n\n" +
		"Context:\nfirst passage\n\nsecond passage\n\n" +
		"Question: what happened?"
	if generator.prompt != wantPrompt {
		t.Errorf("prompt = %q, want %q", generator.prompt, wantPrompt)
	}

	if result.Wire() != "the answer" {
		t.Errorf("Wire() = %q, want %q", result.Wire(), "the answer")
	}
}

func TestAnswerNoContext(t *testing.T) {
	generator := &fakeGenerator{answer: "never used"}
	svc, err := NewService(&fakeRetriever{}, generator)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result := svc.Answer(t.Context(), "anything", 5)
	if result.Outcome != NoContext {
		t.Fatalf("outcome = %v, want NoContext", result.Outcome)
	}
	if result.Wire() != "No relevant articles found." {
		t.Errorf("Wire() = %q, want %q", result.Wire(), "No relevant articles found.")
	}
	if generator.calls != 0 {
		t.Errorf("generator called %d times for empty retrieval, want 0", generator.calls)
	}
}

func TestAnswerRetrieveFailure(t *testing.T) {
	wantErr := errors.New("qdrant unreachable")
	svc, err := NewService(&fakeRetriever{err: wantErr}, &fakeGenerator{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result := svc.Answer(t.Context(), "anything", 5)
	if result.Outcome != Failed || result.Stage != "retrieve" {
		t.Fatalf("result = %+v, want Failed at retrieve", result)
	}
	if !errors.Is(result.Err, wantErr) {
		t.Errorf("result.Err = %v, want %v", result.Err, wantErr)
	}
	if result.Wire() != "Error: qdrant unreachable" {
		t.Errorf("Wire() = %q, want %q", result.Wire(), "Error: qdrant unreachable")
	}
}

func TestAnswerGenerateFailure(t *testing.T) {
	retriever := &fakeRetriever{hits: []rag.ScoredPoint{{Text: "passage"}}}
	svc, err := NewService(retriever, &fakeGenerator{err: errors.New("model timeout")})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result := svc.Answer(t.Context(), "anything", 5)
	if result.Outcome != Failed || result.Stage != "generate" {
		t.Fatalf("result = %+v, want Failed at generate", result)
	}
	if !strings.HasPrefix(result.Wire(), "Error: ") {
		t.Errorf("Wire() = %q, want an Error: prefix", result.Wire())
	}
}

func TestAnswerTrimsContextToBudget(t *testing.T) {
	long := strings.Repeat("w ", 200) // ~100 tokens
	retriever := &fakeRetriever{hits: []rag.ScoredPoint{
		{Text: long, Score: 0.9},
		{Text: long, Score: 0.8},
		{Text: long, Score: 0.7},
	}}
	generator := &fakeGenerator{answer: "ok"}
	svc, err := NewService(retriever, generator, WithMaxContextTokens(150))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result := svc.Answer(t.Context(), "q", 5)
	if result.Outcome != Answered {
		t.Fatalf("outcome = %v, want Answered", result.Outcome)
	}
	if result.Passages != 1 {
		t.Errorf("passages = %d, want 1 after trimming", result.Passages)
	}
}

func TestNewServiceValidation(t *testing.T) {
	if _, err := NewService(nil, &fakeGenerator{}); err == nil {
		t.Error("expected error for nil retriever")
	}
	if _, err := NewService(&fakeRetriever{}, nil); err == nil {
		t.Error("expected error for nil generator")
	}
}

func TestOutcomeString(t *testing.T) {
	cases := map[Outcome]string{
		Answered:    "answered",
		NoContext:   "no_context",
		Failed:      "failed",
		Outcome(99): "unknown",
	}
	for outcome, want := range cases {
		if got := outcome.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", outcome, got, want)
		}
	}
}
