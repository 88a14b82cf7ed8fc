// Package commands implements the flowlint subcommands.
package commands

import (
	"log/slog"

	"github.com/leapstack-labs/flowlint/internal/cli/config"
	"github.com/leapstack-labs/flowlint/internal/cli/output"
	"github.com/leapstack-labs/flowlint/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext. A non-empty format overrides
// the configured output mode.
func NewCommandContext(cmd *cobra.Command, format string) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mode := output.Mode(cfg.OutputFormat)
	if format != "" {
		mode = output.Mode(format)
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// OpenHistory opens the run history database named by the config.
// The caller must close the store.
func (c *CommandContext) OpenHistory() (*state.SQLiteStore, error) {
	return state.OpenStore(c.Cfg.History.Path, c.Logger)
}

// getConfig returns the current configuration, or defaults when the command
// runs without the root command (as in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
