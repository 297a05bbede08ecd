package logging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nvandessel/resultagg/internal/models"
)

// Collector gathers the warnings of one run. Each warning is kept in memory,
// logged at Warn, and, when a trace file is open, appended to it as one JSON
// line. A nil Collector is safe to use; Add is a no-op on nil receiver.
type Collector struct {
	logger   *slog.Logger
	file     *os.File
	warnings []models.Warning
}

// NewCollector returns a collector logging to logger. If tracePath is not
// empty, warnings are also appended to that file, creating its directory.
func NewCollector(logger *slog.Logger, tracePath string) (*Collector, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Collector{logger: logger}
	if tracePath == "" {
		return c, nil
	}

	if err := os.MkdirAll(filepath.Dir(tracePath), 0755); err != nil {
		return nil, fmt.Errorf("creating warnings file directory: %w", err)
	}
	f, err := os.OpenFile(tracePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening warnings file: %w", err)
	}
	c.file = f
	return c, nil
}

// Add records w.
func (c *Collector) Add(w models.Warning) {
	if c == nil {
		return
	}
	c.warnings = append(c.warnings, w)
	c.logger.Warn(w.Message, "kind", string(w.Kind), "path", w.Path)

	if c.file == nil {
		return
	}
	entry := map[string]any{
		"kind":    w.Kind,
		"message": w.Message,
		"time":    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if w.Path != "" {
		entry["path"] = w.Path
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = c.file.Write(data)
}

// Warnings returns a copy of the collected warnings in the order they were added.
func (c *Collector) Warnings() []models.Warning {
	if c == nil {
		return nil
	}
	out := make([]models.Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Count returns how many warnings of kind were collected.
func (c *Collector) Count(kind models.WarningKind) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, w := range c.warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// Close closes the trace file. Safe to call on nil receiver and more than once.
func (c *Collector) Close() error {
	if c == nil || c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}
