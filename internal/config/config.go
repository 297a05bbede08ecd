// Package config provides unified configuration loading for resultagg.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nvandessel/resultagg/internal/constants"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no file is named.
const DefaultFile = "resultagg.yaml"

// Config contains all resultagg configuration settings.
type Config struct {
	// Aggregation contains settings for walking, summarizing and writing.
	Aggregation AggregationConfig `json:"aggregation" yaml:"aggregation"`

	// Logging contains settings for operational logging and warning traces.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// AggregationConfig configures one aggregation run.
type AggregationConfig struct {
	// Root is the result tree: one subdirectory per seed. Supports ${VAR}.
	Root string `json:"root" yaml:"root"`

	// Metrics are the metric names to collect from every metrics.txt.
	Metrics []string `json:"metrics" yaml:"metrics"`

	// Output is the summary table path. Supports ${VAR}.
	Output string `json:"output" yaml:"output"`

	// Separator is the single cell separator character. "\t" means tab.
	Separator string `json:"separator" yaml:"separator"`

	// ConfidenceLevel is the two-sided level of the interval columns, in (0, 1).
	ConfidenceLevel float64 `json:"confidence_level" yaml:"confidence_level"`

	// Precision is the number of decimal places; -1 for shortest form.
	Precision int `json:"precision" yaml:"precision"`

	// MissingPolicy is "skip" or "abort" for missing result dirs and metrics files.
	MissingPolicy constants.MissingPolicy `json:"missing_policy" yaml:"missing_policy"`

	// DuplicatePolicy is "accumulate", "last" or "error" for a metric repeated in one file.
	DuplicatePolicy constants.DuplicatePolicy `json:"duplicate_policy" yaml:"duplicate_policy"`

	// InsufficientPolicy is "blank" or "abort" for metrics with fewer than two samples.
	InsufficientPolicy constants.InsufficientPolicy `json:"insufficient_policy" yaml:"insufficient_policy"`
}

// LoggingConfig configures resultagg's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level"`

	// WarningsFile, if set, receives every run warning as a JSON line.
	WarningsFile string `json:"warnings_file,omitempty" yaml:"warnings_file,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Aggregation: AggregationConfig{
			Root:               ".",
			Output:             constants.DefaultOutputFile,
			Separator:          string(constants.DefaultSeparator),
			ConfidenceLevel:    constants.DefaultConfidenceLevel,
			Precision:          constants.DefaultPrecision,
			MissingPolicy:      constants.MissingSkip,
			DuplicatePolicy:    constants.DuplicateAccumulate,
			InsufficientPolicy: constants.InsufficientBlank,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from path, or from ./resultagg.yaml when path is
// empty and that file exists, then applies environment variables.
// Order: defaults -> file -> environment variables
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Aggregation.Root = expandEnvVars(config.Aggregation.Root)
	config.Aggregation.Output = expandEnvVars(config.Aggregation.Output)
	config.Logging.WarningsFile = expandEnvVars(config.Logging.WarningsFile)

	return config, nil
}

// SeparatorRune returns the configured separator as a single rune.
func (a AggregationConfig) SeparatorRune() (rune, error) {
	s := a.Separator
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) {
		return 0, fmt.Errorf("separator must be a single character, got %q", s)
	}
	if r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("separator %q cannot delimit cells", s)
	}
	return r, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	a := c.Aggregation
	if a.Root == "" {
		return fmt.Errorf("root must not be empty")
	}
	if a.Output == "" {
		return fmt.Errorf("output must not be empty")
	}
	if len(a.Metrics) == 0 {
		return fmt.Errorf("at least one metric must be requested")
	}
	for _, m := range a.Metrics {
		if m == "" || strings.Contains(m, constants.ValueSeparator) {
			return fmt.Errorf("invalid metric name %q", m)
		}
	}
	if _, err := a.SeparatorRune(); err != nil {
		return err
	}
	if !(a.ConfidenceLevel > 0 && a.ConfidenceLevel < 1) {
		return fmt.Errorf("confidence_level must be between 0 and 1 (exclusive), got %f", a.ConfidenceLevel)
	}
	if a.Precision < -1 {
		return fmt.Errorf("precision must be -1 or non-negative, got %d", a.Precision)
	}
	if !a.MissingPolicy.Valid() {
		return fmt.Errorf("invalid missing_policy: %s (valid: skip, abort)", a.MissingPolicy)
	}
	if !a.DuplicatePolicy.Valid() {
		return fmt.Errorf("invalid duplicate_policy: %s (valid: accumulate, last, error)", a.DuplicatePolicy)
	}
	if !a.InsufficientPolicy.Valid() {
		return fmt.Errorf("invalid insufficient_policy: %s (valid: blank, abort)", a.InsufficientPolicy)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// ValidateQuery checks only the settings the filter and lookup commands use.
func (c *Config) ValidateQuery() error {
	_, err := c.Aggregation.SeparatorRune()
	return err
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("RESULTAGG_ROOT"); v != "" {
		config.Aggregation.Root = v
	}

	if v := os.Getenv("RESULTAGG_METRICS"); v != "" {
		config.Aggregation.Metrics = SplitList(v)
	}

	if v := os.Getenv("RESULTAGG_OUTPUT"); v != "" {
		config.Aggregation.Output = v
	}

	if v := os.Getenv("RESULTAGG_SEPARATOR"); v != "" {
		config.Aggregation.Separator = v
	}

	if v := os.Getenv("RESULTAGG_CONFIDENCE_LEVEL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Aggregation.ConfidenceLevel = f
		}
	}

	if v := os.Getenv("RESULTAGG_PRECISION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Aggregation.Precision = n
		}
	}

	if v := os.Getenv("RESULTAGG_MISSING_POLICY"); v != "" {
		config.Aggregation.MissingPolicy = constants.MissingPolicy(v)
	}
	if v := os.Getenv("RESULTAGG_DUPLICATE_POLICY"); v != "" {
		config.Aggregation.DuplicatePolicy = constants.DuplicatePolicy(v)
	}
	if v := os.Getenv("RESULTAGG_INSUFFICIENT_POLICY"); v != "" {
		config.Aggregation.InsufficientPolicy = constants.InsufficientPolicy(v)
	}

	if v := os.Getenv("RESULTAGG_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("RESULTAGG_WARNINGS_FILE"); v != "" {
		config.Logging.WarningsFile = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
