package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nvandessel/resultagg/internal/constants"
)

// validConfig returns the defaults plus the one setting they lack.
func validConfig() *Config {
	config := Default()
	config.Aggregation.Metrics = []string{"X"}
	return config
}

func TestDefault(t *testing.T) {
	config := Default()

	if config.Aggregation.Root != "." {
		t.Errorf("expected Root '.', got '%s'", config.Aggregation.Root)
	}
	if config.Aggregation.Output != "summary.csv" {
		t.Errorf("expected Output 'summary.csv', got '%s'", config.Aggregation.Output)
	}
	if config.Aggregation.Separator != ";" {
		t.Errorf("expected Separator ';', got '%s'", config.Aggregation.Separator)
	}
	if config.Aggregation.ConfidenceLevel != 0.95 {
		t.Errorf("expected ConfidenceLevel 0.95, got %f", config.Aggregation.ConfidenceLevel)
	}
	if config.Aggregation.Precision != -1 {
		t.Errorf("expected Precision -1, got %d", config.Aggregation.Precision)
	}
	if config.Aggregation.MissingPolicy != constants.MissingSkip {
		t.Errorf("expected MissingPolicy 'skip', got '%s'", config.Aggregation.MissingPolicy)
	}
	if config.Aggregation.DuplicatePolicy != constants.DuplicateAccumulate {
		t.Errorf("expected DuplicatePolicy 'accumulate', got '%s'", config.Aggregation.DuplicatePolicy)
	}
	if config.Aggregation.InsufficientPolicy != constants.InsufficientBlank {
		t.Errorf("expected InsufficientPolicy 'blank', got '%s'", config.Aggregation.InsufficientPolicy)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "resultagg.yaml")

	configContent := `
aggregation:
  root: /data/runs
  metrics: [EdgeCount, Stretch]
  output: out.csv
  separator: ","
  confidence_level: 0.99
  precision: 4
  missing_policy: abort
  duplicate_policy: last

logging:
  level: debug
  warnings_file: warnings.jsonl
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	a := config.Aggregation
	if a.Root != "/data/runs" {
		t.Errorf("expected Root '/data/runs', got '%s'", a.Root)
	}
	if !reflect.DeepEqual(a.Metrics, []string{"EdgeCount", "Stretch"}) {
		t.Errorf("expected Metrics [EdgeCount Stretch], got %v", a.Metrics)
	}
	if a.Separator != "," || a.ConfidenceLevel != 0.99 || a.Precision != 4 {
		t.Errorf("unexpected separator/level/precision: %q %f %d", a.Separator, a.ConfidenceLevel, a.Precision)
	}
	if a.MissingPolicy != constants.MissingAbort || a.DuplicatePolicy != constants.DuplicateLast {
		t.Errorf("unexpected policies: %s %s", a.MissingPolicy, a.DuplicatePolicy)
	}
	// Unset keys keep their defaults.
	if a.InsufficientPolicy != constants.InsufficientBlank {
		t.Errorf("expected InsufficientPolicy default 'blank', got '%s'", a.InsufficientPolicy)
	}
	if config.Logging.Level != "debug" || config.Logging.WarningsFile != "warnings.jsonl" {
		t.Errorf("unexpected logging config: %+v", config.Logging)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("expected loaded config to be valid, got %v", err)
	}
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "resultagg.yaml")

	configContent := `
aggregation:
  root: ${TEST_RESULTS_DIR}/runs
  output: ${TEST_RESULTS_DIR}/summary.csv
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("TEST_RESULTS_DIR", "/scratch")

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Aggregation.Root != "/scratch/runs" {
		t.Errorf("expected Root '/scratch/runs', got '%s'", config.Aggregation.Root)
	}
	if config.Aggregation.Output != "/scratch/summary.csv" {
		t.Errorf("expected Output '/scratch/summary.csv', got '%s'", config.Aggregation.Output)
	}
}

func TestLoad_ExplicitFileAndEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom.yaml")
	if err := os.WriteFile(configPath, []byte("aggregation:\n  metrics: [A]\n  root: /from/file\n"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("RESULTAGG_ROOT", "/from/env")

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Aggregation.Root != "/from/env" {
		t.Errorf("expected env to override file, got Root '%s'", config.Aggregation.Root)
	}
	if !reflect.DeepEqual(config.Aggregation.Metrics, []string{"A"}) {
		t.Errorf("expected Metrics [A], got %v", config.Aggregation.Metrics)
	}
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, DefaultFile), []byte("aggregation:\n  output: cwd.csv\n"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Chdir(tmpDir)

	config, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Aggregation.Output != "cwd.csv" {
		t.Errorf("expected Output 'cwd.csv', got '%s'", config.Aggregation.Output)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RESULTAGG_METRICS", "X, Y,,Z")
	t.Setenv("RESULTAGG_OUTPUT", "env.csv")
	t.Setenv("RESULTAGG_SEPARATOR", ",")
	t.Setenv("RESULTAGG_CONFIDENCE_LEVEL", "0.9")
	t.Setenv("RESULTAGG_PRECISION", "2")
	t.Setenv("RESULTAGG_MISSING_POLICY", "abort")
	t.Setenv("RESULTAGG_DUPLICATE_POLICY", "error")
	t.Setenv("RESULTAGG_INSUFFICIENT_POLICY", "abort")
	t.Setenv("RESULTAGG_LOG_LEVEL", "trace")
	t.Setenv("RESULTAGG_WARNINGS_FILE", "w.jsonl")

	config := Default()
	applyEnvOverrides(config)

	a := config.Aggregation
	if !reflect.DeepEqual(a.Metrics, []string{"X", "Y", "Z"}) {
		t.Errorf("expected Metrics [X Y Z], got %v", a.Metrics)
	}
	if a.Output != "env.csv" || a.Separator != "," {
		t.Errorf("unexpected output/separator: %q %q", a.Output, a.Separator)
	}
	if a.ConfidenceLevel != 0.9 || a.Precision != 2 {
		t.Errorf("unexpected level/precision: %f %d", a.ConfidenceLevel, a.Precision)
	}
	if a.MissingPolicy != constants.MissingAbort || a.DuplicatePolicy != constants.DuplicateError ||
		a.InsufficientPolicy != constants.InsufficientAbort {
		t.Errorf("unexpected policies: %s %s %s", a.MissingPolicy, a.DuplicatePolicy, a.InsufficientPolicy)
	}
	if config.Logging.Level != "trace" || config.Logging.WarningsFile != "w.jsonl" {
		t.Errorf("unexpected logging config: %+v", config.Logging)
	}
}

func TestEnvOverrides_IgnoresUnparsableNumbers(t *testing.T) {
	t.Setenv("RESULTAGG_CONFIDENCE_LEVEL", "high")
	t.Setenv("RESULTAGG_PRECISION", "many")

	config := Default()
	applyEnvOverrides(config)

	if config.Aggregation.ConfidenceLevel != 0.95 || config.Aggregation.Precision != -1 {
		t.Errorf("unparsable values should be ignored, got %f %d",
			config.Aggregation.ConfidenceLevel, config.Aggregation.Precision)
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no metrics", func(c *Config) { c.Aggregation.Metrics = nil }},
		{"metric with equals", func(c *Config) { c.Aggregation.Metrics = []string{"a=b"} }},
		{"empty root", func(c *Config) { c.Aggregation.Root = "" }},
		{"empty output", func(c *Config) { c.Aggregation.Output = "" }},
		{"two character separator", func(c *Config) { c.Aggregation.Separator = ";;" }},
		{"quote separator", func(c *Config) { c.Aggregation.Separator = `"` }},
		{"empty separator", func(c *Config) { c.Aggregation.Separator = "" }},
		{"level zero", func(c *Config) { c.Aggregation.ConfidenceLevel = 0 }},
		{"level one", func(c *Config) { c.Aggregation.ConfidenceLevel = 1 }},
		{"precision below -1", func(c *Config) { c.Aggregation.Precision = -2 }},
		{"missing policy", func(c *Config) { c.Aggregation.MissingPolicy = "ignore" }},
		{"duplicate policy", func(c *Config) { c.Aggregation.DuplicatePolicy = "first" }},
		{"insufficient policy", func(c *Config) { c.Aggregation.InsufficientPolicy = "nan" }},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_ValidLogLevels(t *testing.T) {
	validLevels := []string{"", "info", "debug", "trace"}

	for _, level := range validLevels {
		t.Run(level, func(t *testing.T) {
			config := validConfig()
			config.Logging.Level = level
			if err := config.Validate(); err != nil {
				t.Errorf("expected log level '%s' to be valid, got error: %v", level, err)
			}
		})
	}
}

func TestSeparatorRune(t *testing.T) {
	tests := []struct {
		sep  string
		want rune
	}{
		{";", ';'},
		{",", ','},
		{`\t`, '\t'},
		{"\t", '\t'},
		{"|", '|'},
	}

	for _, tt := range tests {
		got, err := AggregationConfig{Separator: tt.sep}.SeparatorRune()
		if err != nil {
			t.Errorf("SeparatorRune(%q) failed: %v", tt.sep, err)
			continue
		}
		if got != tt.want {
			t.Errorf("SeparatorRune(%q) = %q, want %q", tt.sep, got, tt.want)
		}
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/resultagg.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "resultagg.yaml")

	invalidYAML := `
aggregation:
  metrics: [invalid yaml
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a,b ,, c")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("SplitList = %v, want [a b c]", got)
	}
	if SplitList("") != nil {
		t.Error("expected nil for empty list")
	}
}
