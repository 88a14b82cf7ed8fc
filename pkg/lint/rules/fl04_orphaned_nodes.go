package rules

import (
	"fmt"

	"github.com/leapstack-labs/flowlint/pkg/lint"
	"github.com/leapstack-labs/flowlint/pkg/workflow"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "FL04",
		Name:        "orphaned-nodes",
		Group:       "connectivity",
		Categories:  []lint.Category{lint.CategoryOrphanedNode},
		Description: "Nodes other than triggers and notes must be connected",
		Severity:    lint.SeverityWarning,
		Check:       checkOrphanedNodes,

		Rationale: `A node that is neither the source nor the target of any connection never runs.
Triggers, webhooks and sticky notes are exempt. Sub-nodes attached through ai_* connections
count as connected.`,

		BadExample: `{"nodes": [{"name": "Start", "type": "n8n-nodes-base.manualTrigger"},
           {"name": "Lost", "type": "n8n-nodes-base.set"}]}`,

		GoodExample: `{"nodes": [{"name": "Start", "type": "n8n-nodes-base.manualTrigger"},
           {"name": "Set", "type": "n8n-nodes-base.set"}],
 "connections": {"Start": {"main": [[{"node": "Set"}]]}}}`,

		Fix: "Connect the node or delete it.",
	})
}

// checkOrphanedNodes visits nodes in first-appearance order. For duplicated
// names the last record decides the type.
func checkOrphanedNodes(g *workflow.Graph) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic

	connected := g.ConnectedNames()
	for _, name := range g.NodeNames() {
		if _, ok := connected[name]; ok {
			continue
		}
		node, _ := g.Lookup(name)
		if workflow.IsEntryPointType(node.Type) {
			continue
		}
		diagnostics = append(diagnostics, lint.Diagnostic{
			RuleID:   "FL04",
			Category: lint.CategoryOrphanedNode,
			Severity: lint.SeverityWarning,
			Message:  fmt.Sprintf("node '%s' (%s) has no connections", name, node.Type),
			Node:     name,
			Pos:      node.Pos,
		})
	}

	return diagnostics
}
