package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/flowlint/pkg/document"
	"github.com/leapstack-labs/flowlint/pkg/lint"
)

var validOutputModes = []string{"auto", "text", "markdown", "json"}

// Validate checks the loaded configuration for values the commands cannot use.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if !isOneOf(c.OutputFormat, validOutputModes) {
		errs = append(errs, fmt.Errorf("output: invalid mode %q (want %s)",
			c.OutputFormat, strings.Join(validOutputModes, ", ")))
	}
	if _, err := document.ParseFormat(c.InputFormat); err != nil {
		errs = append(errs, fmt.Errorf("input_format: %w", err))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: must not be negative, got %s", c.Watch.Debounce))
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		errs = append(errs, errors.New("history.path: required when history is enabled"))
	}

	return errors.Join(errs...)
}

// AnalyzerConfig builds the analyzer configuration from the lint section.
func (c *Config) AnalyzerConfig() *lint.Config {
	lc := lint.NewConfig()
	for _, key := range c.Lint.Disabled {
		if key = strings.TrimSpace(key); key != "" {
			lc.Disable(key)
		}
	}
	for key, sev := range c.Lint.Severity {
		lc.SetSeverity(key, sev)
	}
	lc.MinSeverity = c.Lint.MinSeverity
	return lc
}

// Format returns the configured input format, falling back to auto.
func (c *Config) Format() document.Format {
	f, err := document.ParseFormat(c.InputFormat)
	if err != nil {
		return document.FormatAuto
	}
	return f
}

func isOneOf(s string, allowed []string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
