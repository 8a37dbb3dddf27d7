package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/54b3r/newsrag-go/internal/logging"
)

// NewRunsCmd constructs the `newsrag runs` command, which lists recent
// ingestion runs from the ledger.
func NewRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent ingestion runs from the ledger",
		Long: `Print the most recent ingestion runs recorded in the ingest ledger.

Each row shows when the run started, which corpus directory it ingested,
how many points were written, and whether it completed.

Examples:
  newsrag runs
  newsrag runs --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			ledger, err := openLedger(log)
			if err != nil {
				return fmt.Errorf("runs: %w", err)
			}
			if ledger == nil {
				return fmt.Errorf("runs: ledger is disabled (NEWSRAG_LEDGER_DB=disabled)")
			}
			defer ledger.Close()

			runs, err := ledger.Recent(ctx, limit)
			if err != nil {
				return fmt.Errorf("runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Println("no ingestion runs recorded")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STARTED\tCORPUS\tDOCS\tCHUNKS\tPOINTS\tDIM\tTOOK\tSTATUS")
			for _, r := range runs {
				status := r.Status
				if r.Detail != "" {
					status = fmt.Sprintf("%s (%s)", r.Status, r.Detail)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
					r.StartedAt.Format("2006-01-02 15:04:05"),
					r.Corpus, r.Documents, r.Chunks, r.PointsWritten,
					r.VectorSize, r.Duration.Round(10*time.Millisecond), status)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")

	return cmd
}
