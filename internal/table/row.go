// Package table renders aggregated samples as a delimited summary table:
// property columns first, then an average and two confidence bound columns
// per metric.
package table

import (
	"fmt"

	"github.com/nvandessel/resultagg/internal/configkey"
	"github.com/nvandessel/resultagg/internal/stats"
)

// SampleSource is the read side of an aggregation store.
type SampleSource interface {
	Configurations() []string
	Samples(key, metric string) []float64
}

// Cell is the summary of one metric of one configuration. Err is set,
// and Summary is zero, when the samples could not be summarized.
type Cell struct {
	Metric  string
	Summary stats.Summary
	Err     error
}

// Row is the summary of one configuration.
type Row struct {
	Key        string
	Properties configkey.Properties
	// Cells holds one entry per metric, in metric order.
	Cells []Cell
}

// BuildRows summarizes every configuration of src, in src order.
func BuildRows(src SampleSource, metrics []string, level float64) ([]Row, error) {
	keys := src.Configurations()
	rows := make([]Row, 0, len(keys))
	for _, key := range keys {
		props, err := configkey.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("building row: %w", err)
		}

		row := Row{Key: key, Properties: props, Cells: make([]Cell, len(metrics))}
		for i, metric := range metrics {
			summary, err := stats.Summarize(src.Samples(key, metric), level)
			row.Cells[i] = Cell{Metric: metric, Summary: summary, Err: err}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
