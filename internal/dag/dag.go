// Package dag provides a directed adjacency view over workflow connections.
// It answers parent/child, root/leaf, reachability and loop questions used by
// the connection reports. Unlike the flat edge list it only holds edges whose
// endpoints both exist.
package dag

import (
	"fmt"

	"github.com/leapstack-labs/flowlint/pkg/workflow"
)

// Node represents a node in the graph.
type Node struct {
	// ID is the unique identifier (node name)
	ID string
	// Type is the workflow node type
	Type string
}

// Link is one outgoing or incoming connection of a node.
type Link struct {
	ID   string // the node at the other end
	Type string // connection type
}

// Graph represents a directed graph. Workflows may loop, so cycles are allowed.
type Graph struct {
	nodes    map[string]*Node
	order    []string          // insertion order
	children map[string][]Link // source -> targets
	parents  map[string][]Link // target -> sources
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		children: make(map[string][]Link),
		parents:  make(map[string][]Link),
	}
}

// FromWorkflow builds the adjacency view of a workflow graph. Nodes keep
// first-appearance order; edges with a missing endpoint are skipped and
// counted in the returned int.
func FromWorkflow(wf *workflow.Graph) (*Graph, int) {
	g := NewGraph()
	for _, name := range wf.NodeNames() {
		n, _ := wf.Lookup(name)
		g.AddNode(name, n.Type)
	}

	skipped := 0
	for _, e := range wf.Edges {
		if err := g.AddEdge(e.Source, e.Target, e.Type); err != nil {
			skipped++
		}
	}
	return g, skipped
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(id, nodeType string) {
	if n, exists := g.nodes[id]; exists {
		// Update type if node already exists
		n.Type = nodeType
		return
	}
	g.nodes[id] = &Node{ID: id, Type: nodeType}
	g.order = append(g.order, id)
}

// AddEdge adds a directed, typed edge from source to target. Repeated edges
// are kept, since a workflow may wire the same pair through several ports.
func (g *Graph) AddEdge(sourceID, targetID, connType string) error {
	if _, exists := g.nodes[sourceID]; !exists {
		return fmt.Errorf("source node %q does not exist", sourceID)
	}
	if _, exists := g.nodes[targetID]; !exists {
		return fmt.Errorf("target node %q does not exist", targetID)
	}

	g.children[sourceID] = append(g.children[sourceID], Link{ID: targetID, Type: connType})
	g.parents[targetID] = append(g.parents[targetID], Link{ID: sourceID, Type: connType})
	return nil
}

// GetNode returns a node by ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// GetAllNodes returns all nodes in insertion order.
func (g *Graph) GetAllNodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Incoming returns the incoming links of a node.
func (g *Graph) Incoming(id string) []Link {
	return g.parents[id]
}

// Outgoing returns the outgoing links of a node.
func (g *Graph) Outgoing(id string) []Link {
	return g.children[id]
}

// GetParents returns the distinct source nodes feeding into id.
func (g *Graph) GetParents(id string) []string {
	return distinctIDs(g.parents[id])
}

// GetChildren returns the distinct target nodes fed by id.
func (g *Graph) GetChildren(id string) []string {
	return distinctIDs(g.children[id])
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, links := range g.children {
		count += len(links)
	}
	return count
}

// GetRoots returns nodes with no incoming edges, in insertion order.
func (g *Graph) GetRoots() []string {
	var roots []string
	for _, id := range g.order {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// GetLeaves returns nodes with no outgoing edges, in insertion order.
func (g *Graph) GetLeaves() []string {
	var leaves []string
	for _, id := range g.order {
		if len(g.children[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// Reachable returns the set of nodes reachable from the given start nodes,
// the start nodes included.
func (g *Graph) Reachable(startIDs []string) map[string]bool {
	reached := make(map[string]bool)

	var visit func(id string)
	visit = func(id string) {
		if reached[id] {
			return
		}
		reached[id] = true
		for _, l := range g.children[id] {
			visit(l.ID)
		}
	}

	for _, id := range startIDs {
		if _, exists := g.nodes[id]; exists {
			visit(id)
		}
	}
	return reached
}

// HasCycle returns true if the graph contains a cycle, along with the cycle path.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string) // Track the path for error reporting

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true

		for _, child := range g.children[id] {
			childID := child.ID
			if !visited[childID] {
				path[childID] = id
				if dfs(childID) {
					return true
				}
			} else if recStack[childID] {
				// Found cycle, reconstruct path
				cyclePath = []string{childID}
				for curr := id; curr != childID; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{childID}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	for _, id := range g.order {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}

	return false, nil
}

func distinctIDs(links []Link) []string {
	seen := make(map[string]bool, len(links))
	var ids []string
	for _, l := range links {
		if !seen[l.ID] {
			seen[l.ID] = true
			ids = append(ids, l.ID)
		}
	}
	return ids
}
