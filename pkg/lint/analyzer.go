package lint

import (
	"log/slog"

	"github.com/leapstack-labs/flowlint/pkg/workflow"
)

// Analyzer runs registered lint rules against a workflow graph.
type Analyzer struct {
	config *Config
	logger *slog.Logger
}

// NewAnalyzer creates a new analyzer with optional configuration.
func NewAnalyzer(config *Config, logger *slog.Logger) *Analyzer {
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{
		config: config,
		logger: logger,
	}
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() *Config {
	return a.config
}

// Analyze runs all enabled rules in registry order and returns their
// findings. The relative order of findings produced by the rules is kept;
// disabled categories and findings below the minimum severity are dropped.
func (a *Analyzer) Analyze(g *workflow.Graph) []Diagnostic {
	if g == nil {
		return nil
	}

	diagnostics := []Diagnostic{}
	for _, rule := range GetAll() {
		if a.config.IsDisabled(rule) {
			a.logger.Debug("rule disabled", slog.String("rule", rule.ID))
			continue
		}

		diags := rule.Check(g)
		kept := 0
		for _, d := range diags {
			if d.RuleID == "" {
				d.RuleID = rule.ID
			}
			if a.config.IsCategoryDisabled(d.Category) {
				continue
			}
			d.Severity = a.config.GetSeverity(rule, d.Category, d.Severity)
			if !a.config.Reports(d.Severity) {
				continue
			}
			diagnostics = append(diagnostics, d)
			kept++
		}

		a.logger.Debug("rule checked",
			slog.String("rule", rule.ID),
			slog.Int("findings", len(diags)),
			slog.Int("reported", kept))
	}

	return diagnostics
}
