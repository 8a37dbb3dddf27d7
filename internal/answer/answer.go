// Package answer implements the query answering pipeline: retrieve relevant
// chunks for a question, assemble them into a grounded prompt, and generate
// an answer with the configured chat model. Pipeline failures are carried in
// the Result rather than surfaced as transport errors, so HTTP callers can
// report them in the response body with a 200 status.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/54b3r/newsrag-go/internal/budget"
	"github.com/54b3r/newsrag-go/internal/rag"
)

// NoContextMessage is returned verbatim when retrieval finds nothing.
const NoContextMessage = "No relevant articles found."

// promptTemplate grounds the model on retrieved passages before the question.
const promptTemplate = "Use the following context to answer the question.\n\nContext:\n%s\n\nQuestion: %s"

// Outcome classifies how a query run ended.
type Outcome int

const (
	// Answered means the model produced an answer from retrieved context.
	Answered Outcome = iota

	// NoContext means retrieval returned no passages; no model call was made.
	NoContext

	// Failed means a pipeline stage errored. Result.Stage and Result.Err
	// carry the detail.
	Failed
)

// String names the outcome for logs and metrics labels.
func (o Outcome) String() string {
	switch o {
	case Answered:
		return "answered"
	case NoContext:
		return "no_context"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of one query run.
type Result struct {
	// Outcome classifies the run.
	Outcome Outcome

	// Text is the generated answer; set only when Outcome is Answered.
	Text string

	// Passages is the number of retrieved passages that made it into the
	// prompt after budget trimming.
	Passages int

	// Stage names the failed pipeline stage when Outcome is Failed.
	Stage string

	// Err is the underlying error when Outcome is Failed.
	Err error
}

// Wire flattens the result into the single response string the query API
// returns. Failures are reported in-band with an "Error: " prefix.
func (r Result) Wire() string {
	switch r.Outcome {
	case NoContext:
		return NoContextMessage
	case Failed:
		return fmt.Sprintf("Error: %s", r.Err)
	default:
		return r.Text
	}
}

// Service runs the retrieve-then-generate pipeline.
type Service struct {
	// retriever finds passages relevant to a query.
	retriever rag.Retriever

	// generator produces the final answer from the assembled prompt.
	generator rag.Generator

	// maxContextTokens bounds the prompt context budget.
	maxContextTokens int

	// logger receives per-query outcome logs.
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMaxContextTokens overrides the default context token budget.
func WithMaxContextTokens(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxContextTokens = n
		}
	}
}

// WithLogger sets the logger used for per-query outcome logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs a Service from its two required dependencies.
func NewService(retriever rag.Retriever, generator rag.Generator, opts ...Option) (*Service, error) {
	if retriever == nil {
		return nil, fmt.Errorf("answer: retriever must not be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("answer: generator must not be nil")
	}
	s := &Service{
		retriever:        retriever,
		generator:        generator,
		maxContextTokens: budget.DefaultMaxContextTokens,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Answer runs the pipeline for one query. It never returns an error: every
// failure mode is encoded in the Result so callers decide how to surface it.
func (s *Service) Answer(ctx context.Context, query string, topK int) Result {
	hits, err := s.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		return s.fail(query, "retrieve", err)
	}
	if len(hits) == 0 {
		s.logger.InfoContext(ctx, "query found no context", "query_len", len(query))
		return Result{Outcome: NoContext}
	}

	hits = budget.TrimPassages(hits, s.maxContextTokens)

	passages := make([]string, len(hits))
	for i, hit := range hits {
		passages[i] = hit.Text
	}
	prompt := fmt.Sprintf(promptTemplate, strings.Join(passages, "\n\n"), query)

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return s.fail(query, "generate", err)
	}

	s.logger.InfoContext(ctx, "query answered",
		"passages", len(hits),
		"prompt_tokens_est", budget.Estimate(prompt),
		"answer_len", len(text))
	return Result{Outcome: Answered, Text: text, Passages: len(hits)}
}

func (s *Service) fail(query, stage string, err error) Result {
	s.logger.Error("query pipeline failed", "stage", stage, "query_len", len(query), "error", err)
	return Result{Outcome: Failed, Stage: stage, Err: err}
}
