// Package config provides configuration management for the flowlint CLI.
//
// Configuration is layered with koanf. Precedence, highest first: explicitly
// set flags, FLOWLINT_* environment variables, flowlint.yaml, built-in
// defaults.
package config

import (
	"time"

	"github.com/leapstack-labs/flowlint/pkg/core"
)

// Config holds all CLI configuration options.
type Config struct {
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	InputFormat  string        `koanf:"input_format"`
	Workflows    []string      `koanf:"workflows"`
	Lint         LintConfig    `koanf:"lint"`
	History      HistoryConfig `koanf:"history"`
	Watch        WatchConfig   `koanf:"watch"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// LintConfig selects and tunes the structural checks.
type LintConfig struct {
	// Disabled lists rule IDs, rule names or categories to skip.
	Disabled []string `koanf:"disabled"`
	// Severity overrides the severity of a rule or category.
	Severity map[string]core.Severity `koanf:"severity"`
	// MinSeverity hides findings less severe than this.
	MinSeverity core.Severity `koanf:"min_severity"`
}

// HistoryConfig controls recording of validation runs.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// Default configuration values.
const (
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultInputFormat = "auto" // by file extension
	DefaultHistoryFile = ".flowlint/history.db"
	DefaultDebounce    = 200 * time.Millisecond
	DefaultMinSeverity = "hint"
)

// ConfigFileNames are searched, in order, when no --config is given.
var ConfigFileNames = []string{"flowlint.yaml", "flowlint.yml"}

// Default returns the configuration used when nothing has been loaded.
func Default() *Config {
	return &Config{
		OutputFormat: DefaultOutput,
		InputFormat:  DefaultInputFormat,
		Lint:         LintConfig{MinSeverity: core.SeverityHint},
		History:      HistoryConfig{Path: DefaultHistoryFile},
		Watch:        WatchConfig{Debounce: DefaultDebounce},
	}
}
