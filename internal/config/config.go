// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Validation bounds.
const (
	maxScorePrecision = 10
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the dashboard listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Dataset is "builtin" or a path to a .yaml/.yml/.json/.csv file of test cases.
	Dataset string `koanf:"dataset"`

	// OutputDir receives the report artifacts.
	OutputDir string `koanf:"output_dir"`

	// DetailCSV, SummaryCSV and ChartPNG name the artifacts inside OutputDir.
	DetailCSV  string `koanf:"detail_csv"`
	SummaryCSV string `koanf:"summary_csv"`
	ChartPNG   string `koanf:"chart_png"`

	// PassThreshold is the similarity ratio an answer must exceed to pass
	// without containing the expected text.
	PassThreshold float64 `koanf:"pass_threshold"`

	// ScorePrecision is the number of decimals reported scores are rounded to.
	ScorePrecision int `koanf:"score_precision"`

	// WorkerCount bounds concurrent evaluations within a run.
	WorkerCount int `koanf:"worker_count"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		Dataset:        "builtin",
		OutputDir:      ".",
		DetailCSV:      "agent_evaluation.csv",
		SummaryCSV:     "agent_summary.csv",
		ChartPNG:       "agent_accuracy_chart.png",
		PassThreshold:  0.75,
		ScorePrecision: 2,
		WorkerCount:    runtime.NumCPU(),
	}
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.PassThreshold < 0 || c.PassThreshold > 1:
		return fmt.Errorf("%w: pass_threshold must be within [0, 1], got %v", ErrInvalidConfig, c.PassThreshold)
	case c.ScorePrecision < 0 || c.ScorePrecision > maxScorePrecision:
		return fmt.Errorf("%w: score_precision must be within [0, %d], got %d", ErrInvalidConfig, maxScorePrecision, c.ScorePrecision)
	case strings.TrimSpace(c.DetailCSV) == "", strings.TrimSpace(c.SummaryCSV) == "", strings.TrimSpace(c.ChartPNG) == "":
		return fmt.Errorf("%w: output file names must not be empty", ErrInvalidConfig)
	}
	return nil
}

// DetailPath returns the detail CSV path inside OutputDir.
func (c *Config) DetailPath() string { return filepath.Join(c.OutputDir, c.DetailCSV) }

// SummaryPath returns the summary CSV path inside OutputDir.
func (c *Config) SummaryPath() string { return filepath.Join(c.OutputDir, c.SummaryCSV) }

// ChartPath returns the chart PNG path inside OutputDir.
func (c *Config) ChartPath() string { return filepath.Join(c.OutputDir, c.ChartPNG) }
