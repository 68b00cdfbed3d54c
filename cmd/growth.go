package main

import (
	"errors"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fedora-infra/quaystats/internal/growth"
	"github.com/fedora-infra/quaystats/internal/model"
	"github.com/fedora-infra/quaystats/pkg/quay"
)

var growthCmd = &cobra.Command{
	Use:   "growth",
	Short: "Track monthly pull growth across repositories",
	Long: "Fetches aggregated per-day event counts for the configured repositories,\n" +
		"merges them into the local growth dataset, and writes a monthly pull-growth\n" +
		"summary.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		days, _ := cmd.Flags().GetInt("days")
		startDate, _ := cmd.Flags().GetString("start-date")
		endDate, _ := cmd.Flags().GetString("end-date")
		analyzeOnly, _ := cmd.Flags().GetBool("analyze-only")

		if !cmd.Flags().Changed("days") {
			days = cfg.Growth.Days
		}

		if !analyzeOnly {
			start, end, err := growthWindow(days, startDate, endDate, time.Now().UTC())
			if err != nil {
				return err
			}
			if err := collectGrowthData(cmd, start, end); err != nil {
				return err
			}
		}

		records, err := growth.LoadDataset(cfg.Growth.DataFile)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return eris.Errorf("growth: no data available for analysis in %s", cfg.Growth.DataFile)
		}

		growth.PrintSummary(os.Stdout, records)

		existing, err := growth.LoadSummary(cfg.Growth.SummaryFile)
		if err != nil {
			return err
		}
		summary := growth.BuildSummary(records, existing, time.Now())
		if err := growth.SaveSummary(cfg.Growth.SummaryFile, summary); err != nil {
			return err
		}

		zap.L().Info("growth summary written",
			zap.String("dataset", cfg.Growth.DataFile),
			zap.String("summary", cfg.Growth.SummaryFile),
		)
		return nil
	},
}

// collectGrowthData fetches aggregated logs for all configured repositories
// and merges them into the dataset file. A repository whose aggregate
// endpoint is unavailable or failing is skipped so the others still land.
func collectGrowthData(cmd *cobra.Command, start, end time.Time) error {
	ctx := cmd.Context()

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

	repos := cfg.Growth.Repositories
	results := make([][]model.AggregatedEntry, len(repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for i, repo := range repos {
		g.Go(func() error {
			log := zap.L().With(zap.String("repository", repo))
			log.Info("fetching aggregated logs",
				zap.Time("start", start), zap.Time("end", end))

			run, err := st.CreateRun(gctx, repo, model.RunKindAggregate,
				start.Format(quay.APITimeFormat), end.Format(quay.APITimeFormat))
			if err != nil {
				return err
			}

			entries, err := client.AggregateLogs(gctx, repo, start, end)
			if err != nil {
				_ = st.FailRun(gctx, run.ID, err.Error())
				if errors.Is(err, quay.ErrAggregateUnavailable) {
					log.Warn("aggregated logs endpoint unavailable, skipping repository")
					return nil
				}
				if gctx.Err() != nil {
					return err
				}
				log.Warn("failed to fetch aggregated logs, skipping repository", zap.Error(err))
				return nil
			}

			if err := st.CompleteRun(gctx, run.ID, len(entries), ""); err != nil {
				return err
			}

			log.Info("retrieved aggregated entries", zap.Int("entries", len(entries)))
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "growth: collect")
	}

	var all []model.AggregatedEntry
	for _, r := range results {
		all = append(all, r...)
	}
	if len(all) == 0 {
		return eris.New("growth: no data collected")
	}

	existing, err := growth.LoadDataset(cfg.Growth.DataFile)
	if err != nil {
		return err
	}
	merged, added, skipped := growth.Merge(existing, all)
	if err := growth.SaveDataset(cfg.Growth.DataFile, merged); err != nil {
		return err
	}

	zap.L().Info("growth dataset updated",
		zap.Int("added", added),
		zap.Int("duplicates_skipped", skipped),
		zap.Int("total", len(merged)),
	)
	return nil
}

// growthWindow resolves the fetch date range from flags: an explicit
// start/end date pair (YYYY-MM-DD) wins; otherwise the window is the last
// `days` days ending now.
func growthWindow(days int, startDate, endDate string, now time.Time) (start, end time.Time, err error) {
	end = now
	if endDate != "" {
		end, err = time.Parse("2006-01-02", endDate)
		if err != nil {
			return time.Time{}, time.Time{}, eris.Wrapf(err, "growth: parse end date %q", endDate)
		}
	}

	if startDate != "" {
		start, err = time.Parse("2006-01-02", startDate)
		if err != nil {
			return time.Time{}, time.Time{}, eris.Wrapf(err, "growth: parse start date %q", startDate)
		}
	} else {
		start = end.AddDate(0, 0, -days)
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, eris.Errorf("growth: start date %s is after end date %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return start, end, nil
}

func init() {
	growthCmd.Flags().Int("days", 7, "number of days to fetch, ending today")
	growthCmd.Flags().String("start-date", "", "window start in YYYY-MM-DD form (overrides --days)")
	growthCmd.Flags().String("end-date", "", "window end in YYYY-MM-DD form (default today)")
	growthCmd.Flags().Bool("analyze-only", false, "skip fetching and only analyze the existing dataset")

	rootCmd.AddCommand(growthCmd)
}
