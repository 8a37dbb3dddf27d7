// Package commands defines all Cobra CLI commands for the newsrag binary.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/54b3r/newsrag-go/internal/audit"
	"github.com/54b3r/newsrag-go/internal/config"
	"github.com/54b3r/newsrag-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "newsrag",
		Short: "newsrag answers questions over a local news corpus",
		Long: `newsrag is a retrieval-augmented question answering service for news
articles.

The ingest command chunks a directory of articles, embeds the chunks, and
indexes them in a Qdrant collection. The serve command exposes a JSON API
that embeds incoming questions, retrieves the most relevant chunks, and
answers with a chat model grounded on them.

Model and embedding providers are selected via environment variables
(MODEL_PROVIDER, EMBEDDING_PROVIDER) or a YAML config file
(~/.newsrag/config.yaml). See 'newsrag --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Pick up a local .env for development; real env vars win.
			_ = godotenv.Load()

			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.newsrag/config.yaml)")

	root.AddCommand(
		NewServeCmd(),
		NewIngestCmd(),
		NewAskCmd(),
		NewRunsCmd(),
		NewVersionCmd(),
	)

	return root
}
