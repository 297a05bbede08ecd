// Package walker enumerates a simulation result tree laid out as
// root/<seed>/result/<configuration>/metrics.txt.
package walker

import (
	"errors"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/nvandessel/resultagg/internal/constants"
	"github.com/nvandessel/resultagg/internal/models"
)

// Entry is one configuration directory of one seed.
type Entry struct {
	// Seed is the seed directory name.
	Seed string
	// SeedIndex is the 1-based position of the seed, SeedCount the number of seeds.
	SeedIndex int
	SeedCount int
	// ConfigKey is the configuration directory name.
	ConfigKey string
	// MetricsPath is the absolute path of the configuration's metrics file.
	MetricsPath string
}

// Walker walks a result tree in lexicographic order.
type Walker struct {
	root   string
	logger *slog.Logger
}

// New returns a walker over root. Progress is logged to logger; a nil
// logger discards it.
func New(root string, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Walker{root: root, logger: logger}
}

// Walk yields every configuration of every seed.
//
// A failure is yielded as a *models.StructuralError with a zero Entry, except
// that Entry.Seed (and ConfigKey, for a missing metrics file) still name the
// unit that failed. A missing root ends the walk; a seed without a result
// directory or a configuration without a metrics file does not, and the
// consumer decides whether to stop by breaking out of the loop.
func (w *Walker) Walk() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		root, err := filepath.Abs(w.root)
		if err != nil {
			yield(Entry{}, &models.StructuralError{Op: "resolve root", Path: w.root, Err: err})
			return
		}

		seeds, err := subdirs(root)
		if err != nil {
			yield(Entry{}, &models.StructuralError{Op: "read root", Path: root, Err: err})
			return
		}

		for i, seed := range seeds {
			w.logger.Info("processing seed", "seed", seed, "index", i+1, "total", len(seeds))

			resultDir := filepath.Join(root, seed, constants.ResultDirName)
			configs, err := subdirs(resultDir)
			if err != nil {
				serr := &models.StructuralError{Op: "read result dir", Path: resultDir, Err: err}
				if !yield(Entry{Seed: seed, SeedIndex: i + 1, SeedCount: len(seeds)}, serr) {
					return
				}
				continue
			}

			for _, config := range configs {
				entry := Entry{
					Seed:        seed,
					SeedIndex:   i + 1,
					SeedCount:   len(seeds),
					ConfigKey:   config,
					MetricsPath: filepath.Join(resultDir, config, constants.MetricsFileName),
				}

				var walkErr error
				if info, err := os.Stat(entry.MetricsPath); err != nil {
					walkErr = &models.StructuralError{Op: "stat metrics file", Path: entry.MetricsPath, Err: err}
				} else if info.IsDir() {
					walkErr = &models.StructuralError{
						Op:   "stat metrics file",
						Path: entry.MetricsPath,
						Err:  errors.New("is a directory"),
					}
				}
				if !yield(entry, walkErr) {
					return
				}
			}
		}
	}
}

// subdirs returns the names of the immediate subdirectories of dir, sorted.
func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if isDir(dir, e) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// isDir follows symlinks so that linked seed directories are walked too.
func isDir(parent string, e fs.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && info.IsDir()
}
