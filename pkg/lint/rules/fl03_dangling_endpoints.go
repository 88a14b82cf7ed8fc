package rules

import (
	"fmt"

	"github.com/leapstack-labs/flowlint/pkg/lint"
	"github.com/leapstack-labs/flowlint/pkg/workflow"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "FL03",
		Name:        "dangling-endpoints",
		Group:       "connectivity",
		Categories:  []lint.Category{lint.CategoryDanglingSource, lint.CategoryDanglingTarget},
		Description: "Connections must start and end at existing nodes",
		Severity:    lint.SeverityError,
		Check:       checkDanglingEndpoints,

		Rationale: `A connection whose source or target names no node usually survives a rename or a
deleted node. The engine drops it, so data silently stops flowing.`,

		BadExample: `{"nodes": [{"name": "A"}],
 "connections": {"A": {"main": [[{"node": "B"}]]}}}`,

		GoodExample: `{"nodes": [{"name": "A"}, {"name": "B"}],
 "connections": {"A": {"main": [[{"node": "B"}]]}}}`,

		Fix: "Point the connection at an existing node or remove it.",
	})
}

// checkDanglingEndpoints walks edges in traversal order and checks the source
// before the target, so an edge missing both yields two findings.
func checkDanglingEndpoints(g *workflow.Graph) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic

	for _, e := range g.Edges {
		if !g.HasNode(e.Source) {
			diagnostics = append(diagnostics, lint.Diagnostic{
				RuleID:   "FL03",
				Category: lint.CategoryDanglingSource,
				Severity: lint.SeverityError,
				Message:  fmt.Sprintf("connection source '%s' does not exist as a node", e.Source),
				Node:     e.Source,
				Pos:      e.Pos,
			})
		}
		if !g.HasNode(e.Target) {
			diagnostics = append(diagnostics, lint.Diagnostic{
				RuleID:   "FL03",
				Category: lint.CategoryDanglingTarget,
				Severity: lint.SeverityError,
				Message:  fmt.Sprintf("connection target '%s' does not exist as a node", e.Target),
				Node:     e.Target,
				Pos:      e.Pos,
			})
		}
	}

	return diagnostics
}
