// Package lint provides the rule framework used to check workflow graphs for
// structural integrity.
//
// # Rule Registration
//
// Rules are registered via init() functions when their package is imported:
//
//	import _ "github.com/leapstack-labs/flowlint/pkg/lint/rules"
//
// Rules run in the lexical order of their IDs, so the order of findings is
// stable across runs:
//
//   - FL01 duplicate-names: DUPLICATE_NAME
//   - FL02 duplicate-ids: DUPLICATE_ID
//   - FL03 dangling-endpoints: DANGLING_SOURCE, DANGLING_TARGET
//   - FL04 orphaned-nodes: ORPHANED_NODE
//
// # Usage
//
//	g, err := workflow.Load(path, document.FormatAuto)
//	if err != nil {
//		return err
//	}
//	cfg := lint.NewConfig().Disable("ORPHANED_NODE")
//	diags := lint.NewAnalyzer(cfg, logger).Analyze(g)
//
// The analyzer never fails: every wrong-but-readable condition in a graph is
// reported as a Diagnostic.
package lint
