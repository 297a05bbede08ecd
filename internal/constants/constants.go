// Package constants provides named constants used throughout the resultagg codebase.
// This centralizes the on-disk layout and default settings in one place.
package constants

// Result tree layout
const (
	// ResultDirName is the child of each seed directory that holds one
	// subdirectory per configuration.
	ResultDirName = "result"

	// MetricsFileName is the key=value metrics file inside a configuration directory.
	MetricsFileName = "metrics.txt"
)

// Configuration key encoding
const (
	// TokenSeparator separates property tokens in a configuration key.
	TokenSeparator = "_"

	// ValueSeparator separates a property name from its value, and a metric
	// name from its value. Only the first occurrence splits.
	ValueSeparator = "="

	// CommentPrefix marks comment lines in a metrics file.
	CommentPrefix = "#"
)

// Output table defaults
const (
	// DefaultSeparator is the cell separator of the summary table.
	DefaultSeparator = ';'

	// DefaultConfidenceLevel is the two-sided confidence level of the interval columns.
	DefaultConfidenceLevel = 0.95

	// DefaultPrecision renders values in their shortest round-trip form.
	// Non-negative values switch to fixed decimal places.
	DefaultPrecision = -1

	// DefaultOutputFile is the summary table written when no output is configured.
	DefaultOutputFile = "summary.csv"
)

// Column suffixes of the per-metric statistic columns.
const (
	SuffixAverage       = "_AVG"
	SuffixConfidenceMin = "_CONFIDENCE_MIN"
	SuffixConfidenceMax = "_CONFIDENCE_MAX"
)
