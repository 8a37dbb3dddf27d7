package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/54b3r/newsrag-go/internal/answer"
	"github.com/54b3r/newsrag-go/internal/embedder"
	"github.com/54b3r/newsrag-go/internal/generator"
	"github.com/54b3r/newsrag-go/internal/logging"
	"github.com/54b3r/newsrag-go/internal/provider"
	"github.com/54b3r/newsrag-go/internal/rag"
)

// NewAskCmd constructs the `newsrag ask` command, which answers a single
// question from the command line without starting the server.
func NewAskCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a one-shot question against the indexed corpus",
		Long: `Answer a single natural language question using the indexed news corpus.

The question is embedded, the most relevant article chunks are retrieved
from Qdrant, and the chat model generates an answer grounded on them.
The index must already be populated via 'newsrag ingest'.

Examples:
  newsrag ask "what did the central bank announce this week?"
  newsrag ask --top-k 10 "summarise the election coverage"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model provider: %w", err)
			}
			gen, err := generator.New(chatModel)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ask: failed to initialise embedder: %w", err)
			}

			qs, err := buildQdrantStore(log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer qs.Close()

			retriever, err := rag.NewRetriever(emb, qs, topK)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			svc, err := answer.NewService(retriever, gen, answer.WithLogger(log))
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			result := svc.Answer(ctx, args[0], topK)
			if result.Outcome == answer.Failed {
				return fmt.Errorf("ask: %s stage failed: %w", result.Stage, result.Err)
			}

			fmt.Println(result.Wire())
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "Number of article chunks to retrieve")

	return cmd
}
