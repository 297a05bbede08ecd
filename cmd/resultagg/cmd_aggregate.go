package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/resultagg/internal/aggregate"
	"github.com/nvandessel/resultagg/internal/config"
	"github.com/nvandessel/resultagg/internal/constants"
	"github.com/nvandessel/resultagg/internal/logging"
	"github.com/nvandessel/resultagg/internal/table"
	"github.com/spf13/cobra"
)

func newAggregateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Summarize a result tree into one table",
		Long: `Walk every seed directory under --root, collect the requested metrics
from each configuration's metrics.txt, and write one row per configuration.

Columns are the configuration properties in discovery order, then for each
metric <metric>_AVG, <metric>_CONFIDENCE_MIN and <metric>_CONFIDENCE_MAX.

Examples:
  resultagg aggregate --root runs --metrics EdgeCount,Stretch
  resultagg aggregate --root runs --metrics Energy --separator , --confidence 0.99
  resultagg aggregate --config experiment.yaml --missing abort`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyAggregateFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			a := cfg.Aggregation
			sep, _ := a.SeparatorRune()

			logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
			warnings, err := logging.NewCollector(logger, cfg.Logging.WarningsFile)
			if err != nil {
				return err
			}
			defer warnings.Close()

			res, err := aggregate.Run(aggregate.Options{
				Root:            a.Root,
				Metrics:         a.Metrics,
				MissingPolicy:   a.MissingPolicy,
				DuplicatePolicy: a.DuplicatePolicy,
			}, logger, warnings)
			if err != nil {
				return fmt.Errorf("aggregation failed: %w", err)
			}

			writer := &table.Writer{
				Separator:      sep,
				Precision:      a.Precision,
				Level:          a.ConfidenceLevel,
				OnInsufficient: a.InsufficientPolicy,
				Warnings:       warnings,
			}
			rows, err := writeTable(a.Output, writer, res)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"output":         a.Output,
					"configurations": rows,
					"properties":     res.Registry.Names(),
					"metrics":        res.Metrics,
					"seeds":          res.Seeds,
					"files":          res.Files,
					"skipped":        res.Skipped,
					"warnings":       warnings.Warnings(),
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d configurations from %d seeds (%d files) to %s\n",
				rows, res.Seeds, res.Files, a.Output)
			if n := len(warnings.Warnings()); n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d warnings, %d units skipped\n", n, res.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().String("root", "", "Result tree root (one subdirectory per seed)")
	cmd.Flags().StringSlice("metrics", nil, "Metric names to collect (comma separated)")
	cmd.Flags().StringP("output", "o", "", "Summary table path")
	cmd.Flags().String("separator", "", `Cell separator character ("\t" for tab)`)
	cmd.Flags().Float64("confidence", 0, "Confidence level of the interval columns")
	cmd.Flags().Int("precision", 0, "Decimal places (-1 for shortest form)")
	cmd.Flags().String("missing", "", "Missing result dir or metrics file: skip, abort")
	cmd.Flags().String("duplicates", "", "Metric repeated within one file: accumulate, last, error")
	cmd.Flags().String("insufficient", "", "Metric with fewer than two samples: blank, abort")
	cmd.Flags().String("warnings-file", "", "Append warnings as JSON lines to this file")

	return cmd
}

// applyAggregateFlags overrides cfg with every flag given on the command line.
func applyAggregateFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	a := &cfg.Aggregation

	if flags.Changed("root") {
		a.Root, _ = flags.GetString("root")
	}
	if flags.Changed("metrics") {
		a.Metrics, _ = flags.GetStringSlice("metrics")
	}
	if flags.Changed("output") {
		a.Output, _ = flags.GetString("output")
	}
	if flags.Changed("separator") {
		a.Separator, _ = flags.GetString("separator")
	}
	if flags.Changed("confidence") {
		a.ConfidenceLevel, _ = flags.GetFloat64("confidence")
	}
	if flags.Changed("precision") {
		a.Precision, _ = flags.GetInt("precision")
	}
	if flags.Changed("missing") {
		v, _ := flags.GetString("missing")
		a.MissingPolicy = constants.MissingPolicy(v)
	}
	if flags.Changed("duplicates") {
		v, _ := flags.GetString("duplicates")
		a.DuplicatePolicy = constants.DuplicatePolicy(v)
	}
	if flags.Changed("insufficient") {
		v, _ := flags.GetString("insufficient")
		a.InsufficientPolicy = constants.InsufficientPolicy(v)
	}
	if flags.Changed("warnings-file") {
		cfg.Logging.WarningsFile, _ = flags.GetString("warnings-file")
	}
}

// writeTable writes the table next to path and renames it into place, so a
// failed run never leaves a truncated table behind.
func writeTable(path string, w *table.Writer, res *aggregate.Result) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	rows, err := w.Write(tmp, res.Registry.Names(), res.Metrics, res.Store)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return 0, fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to move table into place: %w", err)
	}
	return rows, nil
}
