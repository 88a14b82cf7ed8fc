package lint

import "github.com/leapstack-labs/flowlint/pkg/workflow"

// Validate runs every registered rule with default configuration.
// An empty result means the workflow passed all checks.
func Validate(g *workflow.Graph) []Diagnostic {
	return NewAnalyzer(nil, nil).Analyze(g)
}

// AllRules returns metadata for every registered rule in execution order.
func AllRules() []RuleDef {
	return GetAll()
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
