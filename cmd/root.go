package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fedora-infra/quaystats/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "quaystats",
	Short: "Collect and analyze Quay.io repository usage logs",
	Long: "Fetches usage logs from the Quay.io API with a bearer token, compiles summary\n" +
		"statistics from downloaded log files, and tracks monthly pull growth across\n" +
		"repositories.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
