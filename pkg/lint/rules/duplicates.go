package rules

import (
	"github.com/leapstack-labs/flowlint/pkg/document"
	"github.com/leapstack-labs/flowlint/pkg/workflow"
)

// duplicate is a key that occurs more than once in the raw node sequence.
type duplicate struct {
	Key   string
	First workflow.Node     // first node with the key
	Pos   document.Position // position of the second occurrence
}

// findDuplicates groups nodes by key and returns the keys seen more than
// once, ordered by first appearance.
func findDuplicates(nodes []workflow.Node, key func(workflow.Node) string) []duplicate {
	counts := make(map[string]int, len(nodes))
	secondPos := make(map[string]document.Position)
	first := make(map[string]workflow.Node)
	var order []string

	for _, n := range nodes {
		k := key(n)
		counts[k]++
		switch counts[k] {
		case 1:
			order = append(order, k)
			first[k] = n
		case 2:
			secondPos[k] = n.Pos
		}
	}

	var dups []duplicate
	for _, k := range order {
		if counts[k] > 1 {
			dups = append(dups, duplicate{Key: k, First: first[k], Pos: secondPos[k]})
		}
	}
	return dups
}
