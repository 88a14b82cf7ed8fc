// Package rules provides the structural workflow checks.
//
//   - FL01 duplicate-names: two or more nodes share a name
//   - FL02 duplicate-ids: two or more nodes share an id
//   - FL03 dangling-endpoints: a connection names a node that does not exist
//   - FL04 orphaned-nodes: a non-trigger node takes part in no connection
//
// To register the rules with the global lint registry, import this package
// with a blank identifier:
//
//	import _ "github.com/leapstack-labs/flowlint/pkg/lint/rules"
package rules
