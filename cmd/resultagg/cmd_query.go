package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nvandessel/resultagg/internal/config"
	"github.com/nvandessel/resultagg/internal/query"
	"github.com/spf13/cobra"
)

func newFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Select summary rows by column value",
		Long: `Print the rows of a summary table whose columns equal every --where
condition. Values are compared as text, exactly as they appear in the table.

Examples:
  resultagg filter --where overlayEnabled=true
  resultagg filter --input summary.csv --where k=3 --where a=0.5 -o k3.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			output, _ := cmd.Flags().GetString("output")

			tbl, sep, err := openTable(cmd)
			if err != nil {
				return err
			}
			defer tbl.Close()

			conds, err := parseConditions(cmd)
			if err != nil {
				return err
			}

			rows, err := tbl.Filter(cmd.Context(), conds)
			if err != nil {
				return fmt.Errorf("failed to filter rows: %w", err)
			}

			var out io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			if jsonOut {
				return json.NewEncoder(out).Encode(rowsAsObjects(rows))
			}
			return query.Write(out, rows, sep)
		},
	}

	addTableFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Write rows to this file instead of stdout")

	return cmd
}

func newLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Print one cell of the summary table",
		Long: `Print the value of --column in the single row matching every --where
condition. Fails when no row or more than one row matches.

Examples:
  resultagg lookup --where k=3 --where a=0.5 --column EdgeCount_AVG`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			column, _ := cmd.Flags().GetString("column")

			tbl, _, err := openTable(cmd)
			if err != nil {
				return err
			}
			defer tbl.Close()

			conds, err := parseConditions(cmd)
			if err != nil {
				return err
			}

			value, err := tbl.Lookup(cmd.Context(), conds, column)
			if err != nil {
				return fmt.Errorf("lookup %s: %w", column, err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"column": column,
					"value":  value,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	addTableFlags(cmd)
	cmd.Flags().String("column", "", "Column to print")
	cmd.MarkFlagRequired("column")

	return cmd
}

func addTableFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "Summary table (default: configured output)")
	cmd.Flags().String("separator", "", "Cell separator character (default: configured separator)")
	cmd.Flags().StringArray("where", nil, "column=value condition (repeatable)")
}

// openTable loads the table named by --input, falling back to the configured output.
func openTable(cmd *cobra.Command) (*query.Table, rune, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, 0, err
	}
	applyTableFlags(cmd, cfg)
	if err := cfg.ValidateQuery(); err != nil {
		return nil, 0, fmt.Errorf("invalid configuration: %w", err)
	}
	sep, _ := cfg.Aggregation.SeparatorRune()

	tbl, err := query.Load(cmd.Context(), cfg.Aggregation.Output, sep)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load table: %w", err)
	}
	return tbl, sep, nil
}

func applyTableFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("input") {
		cfg.Aggregation.Output, _ = cmd.Flags().GetString("input")
	}
	if cmd.Flags().Changed("separator") {
		cfg.Aggregation.Separator, _ = cmd.Flags().GetString("separator")
	}
}

func parseConditions(cmd *cobra.Command) ([]query.Condition, error) {
	raw, _ := cmd.Flags().GetStringArray("where")
	conds := make([]query.Condition, 0, len(raw))
	for _, r := range raw {
		c, err := query.ParseCondition(r)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

// rowsAsObjects turns header + rows into one object per row.
func rowsAsObjects(rows [][]string) []map[string]string {
	out := make([]map[string]string, 0, len(rows))
	if len(rows) == 0 {
		return out
	}
	header := rows[0]
	for _, row := range rows[1:] {
		obj := make(map[string]string, len(header))
		for i, name := range header {
			obj[name] = row[i]
		}
		out = append(out, obj)
	}
	return out
}
