package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fedora-infra/quaystats/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats <logfile.json>",
	Short: "Compile statistics from a downloaded log file",
	Long: "Reads a JSON log file produced by fetch and prints summary statistics:\n" +
		"event-kind breakdown, time range, and top user agents, IPs, pulled tags,\n" +
		"countries, and performers.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topN, _ := cmd.Flags().GetInt("top-n")
		format, _ := cmd.Flags().GetString("format")

		entries, err := stats.Load(args[0])
		if err != nil {
			return err
		}

		report := stats.Compile(entries, topN)
		return eris.Wrap(report.Render(os.Stdout, stats.Format(format), args[0]), "stats")
	},
}

func init() {
	statsCmd.Flags().Int("top-n", 10, "number of top items to display in ranked sections")
	statsCmd.Flags().String("format", "text", "output format (text, json, yaml)")

	rootCmd.AddCommand(statsCmd)
}
