package rules

import (
	"fmt"

	"github.com/leapstack-labs/flowlint/pkg/lint"
	"github.com/leapstack-labs/flowlint/pkg/workflow"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "FL01",
		Name:        "duplicate-names",
		Group:       "identity",
		Categories:  []lint.Category{lint.CategoryDuplicateName},
		Description: "Node names must be unique",
		Severity:    lint.SeverityError,
		Check:       checkDuplicateNames,

		Rationale: `Connections address nodes by name. When two nodes share a name, every connection
that mentions it is ambiguous and the engine silently keeps only one of them.`,

		BadExample: `{"nodes": [{"name": "Fetch"}, {"name": "Fetch"}]}`,

		GoodExample: `{"nodes": [{"name": "Fetch"}, {"name": "Fetch Details"}]}`,

		Fix: "Rename one of the nodes and update the connections that refer to it.",
	})
}

func checkDuplicateNames(g *workflow.Graph) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic

	dups := findDuplicates(g.Nodes, func(n workflow.Node) string { return n.Name })
	for _, d := range dups {
		diagnostics = append(diagnostics, lint.Diagnostic{
			RuleID:   "FL01",
			Category: lint.CategoryDuplicateName,
			Severity: lint.SeverityError,
			Message:  fmt.Sprintf("node name '%s' occurs more than once", d.Key),
			Node:     d.Key,
			Pos:      d.Pos,
		})
	}

	return diagnostics
}
