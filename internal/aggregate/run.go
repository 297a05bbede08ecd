package aggregate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/nvandessel/resultagg/internal/configkey"
	"github.com/nvandessel/resultagg/internal/constants"
	"github.com/nvandessel/resultagg/internal/logging"
	"github.com/nvandessel/resultagg/internal/metricfile"
	"github.com/nvandessel/resultagg/internal/models"
	"github.com/nvandessel/resultagg/internal/walker"
)

// Options configures an aggregation run.
type Options struct {
	// Root is the directory holding one subdirectory per seed.
	Root string

	// Metrics are the metric names to collect. Duplicates are dropped.
	Metrics []string

	// MissingPolicy applies to seeds without a result directory and
	// configurations without a metrics file.
	MissingPolicy constants.MissingPolicy

	// DuplicatePolicy applies to a metric repeated within one metrics file.
	DuplicatePolicy constants.DuplicatePolicy
}

// Result is everything a run accumulated.
type Result struct {
	Store    *Store
	Registry *configkey.Registry

	// Metrics is the de-duplicated list of requested metrics, in request order.
	Metrics []string

	// Seeds is the number of seed directories visited.
	Seeds int
	// Files is the number of metrics files that contributed samples.
	Files int
	// Skipped is the number of seeds and configurations skipped after a structural error.
	Skipped int
}

// Run walks opts.Root and accumulates the requested metrics of every
// configuration. Warnings go to warnings, which may be nil.
//
// A missing root always fails the run. Missing result directories and
// metrics files follow opts.MissingPolicy. A malformed configuration key or
// metrics file skips that configuration of that seed and is reported as a
// warning; what other configurations accumulated is kept.
func Run(opts Options, logger *slog.Logger, warnings *logging.Collector) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.MissingPolicy == "" {
		opts.MissingPolicy = constants.MissingSkip
	}
	if opts.DuplicatePolicy == "" {
		opts.DuplicatePolicy = constants.DuplicateAccumulate
	}

	metrics := dedupe(opts.Metrics)
	if len(metrics) == 0 {
		return nil, errors.New("no metrics requested")
	}

	res := &Result{
		Store:    NewStore(),
		Registry: configkey.NewRegistry(),
		Metrics:  metrics,
	}
	codec := configkey.NewCodec(res.Registry)
	ctx := context.Background()

	lastSeed := ""
	for entry, err := range walker.New(opts.Root, logger).Walk() {
		if entry.Seed != lastSeed {
			lastSeed = entry.Seed
			res.Seeds++
		}

		if err != nil {
			if entry.Seed == "" {
				return nil, fmt.Errorf("walking result tree: %w", err)
			}
			if opts.MissingPolicy == constants.MissingAbort && errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("seed %s: %w", entry.Seed, err)
			}
			res.skip(warnings, err)
			continue
		}

		// Validate the key before parsing so a malformed name never reaches the registry.
		if _, err := configkey.Parse(entry.ConfigKey); err != nil {
			res.skip(warnings, &models.StructuralError{
				Op:   "decode configuration key",
				Path: filepath.Dir(entry.MetricsPath),
				Err:  err,
			})
			continue
		}

		parsed, err := metricfile.Parse(entry.MetricsPath, metrics, res.Store.Recorder(entry.ConfigKey), opts.DuplicatePolicy)
		if err != nil {
			res.skip(warnings, err)
			continue
		}
		if _, err := codec.Decode(entry.ConfigKey); err != nil {
			return nil, fmt.Errorf("decoding configuration key %q: %w", entry.ConfigKey, err)
		}
		res.Store.Touch(entry.ConfigKey)
		res.Files++

		logger.Log(ctx, logging.LevelTrace, "parsed metrics file",
			"seed", entry.Seed, "config", entry.ConfigKey, "matched", parsed.Matched)
		if parsed.Warning != nil {
			warnings.Add(*parsed.Warning)
		}
	}

	logger.Debug("aggregation finished",
		"seeds", res.Seeds, "configurations", res.Store.Len(), "files", res.Files, "skipped", res.Skipped)
	return res, nil
}

func (r *Result) skip(warnings *logging.Collector, err error) {
	r.Skipped++
	w := models.Warning{Kind: models.WarningSkipped, Message: err.Error()}
	var se *models.StructuralError
	if errors.As(err, &se) {
		w.Path = se.Path
	}
	warnings.Add(w)
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
