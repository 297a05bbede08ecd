package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/nvandessel/resultagg/internal/constants"
	"github.com/nvandessel/resultagg/internal/logging"
	"github.com/nvandessel/resultagg/internal/models"
	"github.com/nvandessel/resultagg/internal/stats"
)

// Writer renders summary tables.
type Writer struct {
	// Separator separates cells. Every cell, the last one included, is
	// followed by it.
	Separator rune

	// Precision is the number of decimal places; negative renders the
	// shortest representation that round-trips.
	Precision int

	// Level is the confidence level of the interval columns.
	Level float64

	// OnInsufficient decides what a metric with fewer than two samples becomes.
	OnInsufficient constants.InsufficientPolicy

	// Warnings receives blanked-cell warnings. May be nil.
	Warnings *logging.Collector
}

// NewWriter returns a writer with the default separator, precision, level and policy.
func NewWriter() *Writer {
	return &Writer{
		Separator:      constants.DefaultSeparator,
		Precision:      constants.DefaultPrecision,
		Level:          constants.DefaultConfidenceLevel,
		OnInsufficient: constants.InsufficientBlank,
	}
}

// Header returns the column names: properties, then for each metric its
// average and confidence bound columns.
func Header(properties, metrics []string) []string {
	header := make([]string, 0, len(properties)+3*len(metrics))
	header = append(header, properties...)
	for _, m := range metrics {
		header = append(header,
			m+constants.SuffixAverage,
			m+constants.SuffixConfidenceMin,
			m+constants.SuffixConfidenceMax,
		)
	}
	return header
}

// Write summarizes src and writes the header and one row per configuration
// to out. It returns the number of data rows written.
func (w *Writer) Write(out io.Writer, properties, metrics []string, src SampleSource) (int, error) {
	rows, err := BuildRows(src, metrics, w.Level)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(out)
	cw.Comma = w.Separator

	if err := cw.Write(terminate(Header(properties, metrics))); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, row := range rows {
		record, err := w.record(row, properties)
		if err != nil {
			return 0, err
		}
		if err := cw.Write(terminate(record)); err != nil {
			return 0, fmt.Errorf("writing row %s: %w", row.Key, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing table: %w", err)
	}
	return len(rows), nil
}

func (w *Writer) record(row Row, properties []string) ([]string, error) {
	record := make([]string, 0, len(properties)+3*len(row.Cells))
	for _, name := range properties {
		value, _ := row.Properties.Get(name)
		record = append(record, value)
	}

	for _, cell := range row.Cells {
		if cell.Err != nil {
			if w.OnInsufficient == constants.InsufficientAbort || !errors.Is(cell.Err, stats.ErrInsufficientSamples) {
				return nil, fmt.Errorf("summarizing %s of %s: %w", cell.Metric, row.Key, cell.Err)
			}
			w.Warnings.Add(models.Warning{
				Kind:    models.WarningInsufficientSamples,
				Path:    row.Key,
				Message: fmt.Sprintf("metric %s left blank: %v", cell.Metric, cell.Err),
			})
			record = append(record, "", "", "")
			continue
		}
		record = append(record,
			FormatValue(cell.Summary.Mean, w.Precision),
			FormatValue(cell.Summary.Lower, w.Precision),
			FormatValue(cell.Summary.Upper, w.Precision),
		)
	}
	return record, nil
}

// terminate appends an empty field so the row ends with a separator.
func terminate(record []string) []string {
	return append(record, "")
}

// FormatValue renders v with precision decimal places, or, for a negative
// precision, in its shortest round-trip form with at least one fractional
// digit ("5.0", "0.125"). Very large and very small magnitudes use exponent form.
func FormatValue(v float64, precision int) string {
	if precision >= 0 {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
	abs := math.Abs(v)
	if abs >= 1e16 || (abs != 0 && abs < 1e-4) || math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
