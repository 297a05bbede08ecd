package main

import (
	"fmt"
	"os"

	"github.com/nvandessel/resultagg/internal/config"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "resultagg",
		Short: "Aggregate per-seed simulation metrics into one summary table",
		Long: `resultagg walks a simulation result tree laid out as

  <root>/<seed>/result/<configuration>/metrics.txt

and writes one row per configuration with the mean and Student-t
confidence interval of every requested metric across seeds.

The table can then be narrowed with 'filter' or queried with 'lookup'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./resultagg.yaml if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace")

	rootCmd.AddCommand(
		newVersionCmd(),
		newAggregateCmd(),
		newFilterCmd(),
		newLookupCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

// loadConfig loads the configuration named by --config and applies --log-level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}
