package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fedora-infra/quaystats/internal/model"
	"github.com/fedora-infra/quaystats/pkg/quay"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch usage logs for a repository and save them as JSON",
	Long: "Pulls usage-log entries for one repository from the Quay API, following\n" +
		"pagination, and writes them as a JSON array. The output file feeds the\n" +
		"stats command.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		repo, _ := cmd.Flags().GetString("repository")
		startTime, _ := cmd.Flags().GetString("start-time")
		endTime, _ := cmd.Flags().GetString("end-time")
		output, _ := cmd.Flags().GetString("output")

		if repo == "" {
			repo = cfg.Fetch.Repository
		}
		if !cmd.Flags().Changed("start-time") {
			startTime = cfg.Fetch.StartTime
		}
		if endTime == "" {
			endTime = cfg.Fetch.EndTime
		}
		if output == "" {
			output = filepath.Join(cfg.Fetch.OutputDir, logsFilename(repo, startTime))
		}

		client, err := newQuayClient()
		if err != nil {
			return err
		}

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.CreateRun(ctx, repo, model.RunKindLogs, startTime, endTime)
		if err != nil {
			return err
		}

		zap.L().Info("fetching usage logs",
			zap.String("repository", repo),
			zap.String("starttime", startTime),
			zap.String("endtime", endTime),
			zap.Int("page_size", cfg.Quay.PageSize),
		)

		entries, err := client.Logs(ctx, repo, quay.LogsOptions{
			StartTime: startTime,
			EndTime:   endTime,
			OnPage: func(page, retrieved int) {
				zap.L().Info("retrieved log page", zap.Int("page", page), zap.Int("entries", retrieved))
			},
		})
		if err != nil {
			_ = st.FailRun(ctx, run.ID, err.Error())
			return eris.Wrap(err, "fetch")
		}

		if len(entries) == 0 {
			zap.L().Warn("no logs found for the specified criteria, no file written")
			return st.CompleteRun(ctx, run.ID, 0, "")
		}

		data, err := json.Marshal(entries)
		if err != nil {
			_ = st.FailRun(ctx, run.ID, err.Error())
			return eris.Wrap(err, "fetch: encode logs")
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			_ = st.FailRun(ctx, run.ID, err.Error())
			return eris.Wrapf(err, "fetch: write %s", output)
		}

		if err := st.CompleteRun(ctx, run.ID, len(entries), output); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Saved %d log entries to %s\n", len(entries), output)
		return nil
	},
}

// logsFilename derives the default output name from the repository and start
// time, e.g. quay_fedora_fedora-bootc_logs_last_30d.json.
func logsFilename(repo, startTime string) string {
	name := "quay_" + strings.ReplaceAll(repo, "/", "_") + "_logs"
	if startTime != "" {
		name += "_last_" + strings.ReplaceAll(startTime, "/", "_")
	}
	return name + ".json"
}

func init() {
	fetchCmd.Flags().String("repository", "", "repository path (namespace/name), defaults to fetch.repository")
	fetchCmd.Flags().String("start-time", "", `log window start ("30d" or MM/DD/YYYY), defaults to fetch.start_time`)
	fetchCmd.Flags().String("end-time", "", "log window end (MM/DD/YYYY)")
	fetchCmd.Flags().String("output", "", "output file path (default derived from repository and window)")

	rootCmd.AddCommand(fetchCmd)
}
