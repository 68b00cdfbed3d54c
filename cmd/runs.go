package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fedora-infra/quaystats/internal/model"
	"github.com/fedora-infra/quaystats/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past fetch runs from the local history database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		repo, _ := cmd.Flags().GetString("repository")
		kind, _ := cmd.Flags().GetString("kind")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Repository: repo,
			Kind:       model.RunKind(kind),
			Status:     model.RunStatus(status),
			Limit:      limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRuns(os.Stdout, runs)
		return nil
	},
}

// formatRuns writes a tabular list of fetch runs to w.
func formatRuns(out io.Writer, runs []model.FetchRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tREPOSITORY\tKIND\tSTATUS\tENTRIES\tOUTPUT\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----------\t----\t------\t-------\t------\t-------")

	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			truncateID(r.ID),
			r.Repository,
			r.Kind,
			r.Status,
			r.Entries,
			r.OutputFile,
			r.CreatedAt.Format(time.DateTime),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	runsCmd.Flags().String("repository", "", "filter by repository path")
	runsCmd.Flags().String("kind", "", "filter by run kind (logs, aggregate)")
	runsCmd.Flags().String("status", "", "filter by run status (running, complete, failed)")
	runsCmd.Flags().Int("limit", 50, "max number of runs to display")

	rootCmd.AddCommand(runsCmd)
}
