package models

import "fmt"

// WarningKind classifies a non-fatal diagnostic.
type WarningKind string

const (
	// WarningMetricCount: a metrics file matched a different number of lines
	// than metrics were requested.
	WarningMetricCount WarningKind = "metric_count"

	// WarningSkipped: a seed or configuration was skipped after a structural error.
	WarningSkipped WarningKind = "skipped"

	// WarningInsufficientSamples: a metric had too few samples for an interval.
	WarningInsufficientSamples WarningKind = "insufficient_samples"
)

// Warning is a diagnostic the run reports and continues past.
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Path    string      `json:"path,omitempty" yaml:"path,omitempty"`
	Message string      `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	if w.Path == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", w.Kind, w.Message, w.Path)
}
