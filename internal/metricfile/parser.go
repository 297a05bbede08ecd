// Package metricfile reads metrics.txt files: one metricName=value pair per
// line, interleaved with comment and free-text lines.
package metricfile

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nvandessel/resultagg/internal/constants"
	"github.com/nvandessel/resultagg/internal/models"
)

// Recorder receives parsed samples. The aggregation store hands out one
// Recorder per configuration so samples from every seed land in one place.
type Recorder interface {
	Record(metric string, value float64)
}

// Sample is one matched line.
type Sample struct {
	Metric string
	Value  float64
}

// Result describes what a Parse call contributed.
type Result struct {
	// Samples are the recorded samples in file order.
	Samples []Sample

	// Matched is the number of requested-metric lines found, duplicates included.
	Matched int

	// Warning is set when Matched differs from the number of requested metrics.
	Warning *models.Warning
}

// Parse reads path and records every line whose name is in requested into rec.
//
// Samples are staged and only handed to rec once the whole file parsed, so a
// malformed file contributes nothing. A count mismatch is reported through
// Result.Warning and is not an error.
func Parse(path string, requested []string, rec Recorder, policy constants.DuplicatePolicy) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.StructuralError{Op: "open metrics file", Path: path, Err: err}
	}
	defer f.Close()

	wanted := make(map[string]bool, len(requested))
	for _, name := range requested {
		wanted[name] = true
	}

	var staged []Sample
	seen := make(map[string]int) // metric -> index in staged
	matched := 0

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, constants.CommentPrefix) {
			continue
		}

		name, raw, ok := strings.Cut(line, constants.ValueSeparator)
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if !wanted[name] {
			continue
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, &models.StructuralError{
				Op:   fmt.Sprintf("parse line %d", lineNo),
				Path: path,
				Err:  fmt.Errorf("metric %s: %w", name, err),
			}
		}
		matched++

		if idx, dup := seen[name]; dup {
			switch policy {
			case constants.DuplicateError:
				return nil, &models.StructuralError{
					Op:   fmt.Sprintf("parse line %d", lineNo),
					Path: path,
					Err:  fmt.Errorf("metric %s appears more than once", name),
				}
			case constants.DuplicateLast:
				staged[idx].Value = value
				continue
			}
		}
		seen[name] = len(staged)
		staged = append(staged, Sample{Metric: name, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, &models.StructuralError{Op: "read metrics file", Path: path, Err: err}
	}

	for _, s := range staged {
		rec.Record(s.Metric, s.Value)
	}

	res := &Result{Samples: staged, Matched: matched}
	if matched != len(wanted) {
		res.Warning = &models.Warning{
			Kind:    models.WarningMetricCount,
			Path:    path,
			Message: fmt.Sprintf("matched %d lines for %d requested metrics", matched, len(wanted)),
		}
	}
	return res, nil
}
