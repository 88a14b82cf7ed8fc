// Package workflow extracts a typed node/connection graph from a decoded
// workflow document.
//
// A workflow document is a mapping with an optional "nodes" sequence and an
// optional "connections" mapping:
//
//	{
//	  "nodes": [{"name": "Start", "id": "1", "type": "n8n-nodes-base.manualTrigger"}, ...],
//	  "connections": {
//	    "Start": {"main": [[{"node": "Fetch", "type": "main", "index": 0}]]}
//	  }
//	}
//
// Connections are keyed by source node name, then by connection type, then
// hold one sequence of target references per output port. Extract flattens
// them into one Edge per reference. Endpoints are not checked here; that is
// the validator's job.
package workflow

import (
	"strings"

	"github.com/leapstack-labs/flowlint/pkg/document"
)

// MissingIDPlaceholder stands in for the id of nodes that have none.
// All id-less nodes share it and therefore collide as duplicates.
const MissingIDPlaceholder = "?"

// NullIDLabel is how an explicit null id is shown. Null ids collide with
// each other but not with MissingIDPlaceholder or any string id.
const NullIDLabel = "null"

// nullIDKey groups null ids apart from every id a document can spell.
const nullIDKey = "\x00null"

// MainConnectionType is the primary data-flow connection type.
const MainConnectionType = "main"

// AuxiliaryConnectionPrefix marks ancillary link types such as
// ai_languageModel or ai_tool.
const AuxiliaryConnectionPrefix = "ai_"

// Entry-point and annotation node types. Nodes of these types may legitimately
// have no connections at all.
const (
	TypeScheduleTrigger   = "n8n-nodes-base.scheduleTrigger"
	TypeManualTrigger     = "n8n-nodes-base.manualTrigger"
	TypeWebhook           = "n8n-nodes-base.webhook"
	TypeManualChatTrigger = "@n8n/n8n-nodes-langchain.manualChatTrigger"
	TypeStickyNote        = "n8n-nodes-base.stickyNote"
)

var entryPointTypes = map[string]struct{}{
	TypeScheduleTrigger:   {},
	TypeManualTrigger:     {},
	TypeWebhook:           {},
	TypeManualChatTrigger: {},
	TypeStickyNote:        {},
}

// IsEntryPointType reports whether nodes of the given type are exempt from
// needing connections.
func IsEntryPointType(nodeType string) bool {
	_, ok := entryPointTypes[nodeType]
	return ok
}

// EntryPointTypes returns the exempt node types in a stable order.
func EntryPointTypes() []string {
	return []string{
		TypeScheduleTrigger,
		TypeManualTrigger,
		TypeWebhook,
		TypeManualChatTrigger,
		TypeStickyNote,
	}
}

// Node is one processing unit of a workflow.
type Node struct {
	Name  string
	ID    string
	HasID bool
	// NullID is set when the id key is present with a null value.
	NullID bool
	Type   string
	Pos    document.Position
}

// IDKey returns the value node ids are compared by: the id, a private key
// for null ids, or MissingIDPlaceholder when absent.
func (n Node) IDKey() string {
	if n.NullID {
		return nullIDKey
	}
	return n.IDOrPlaceholder()
}

// IDLabel returns the id as shown in findings.
func (n Node) IDLabel() string {
	if n.NullID {
		return NullIDLabel
	}
	return n.IDOrPlaceholder()
}

// IDOrPlaceholder returns the node id, or MissingIDPlaceholder when absent.
func (n Node) IDOrPlaceholder() string {
	if !n.HasID {
		return MissingIDPlaceholder
	}
	return n.ID
}

// Edge is one directed, typed connection between two nodes, addressed by name.
type Edge struct {
	Source string
	Target string
	Type   string
	Port   int // output port index on the source
	Index  int // position of the reference within its port
	Pos    document.Position
}

// IsAuxiliary reports whether the edge uses an ancillary connection type.
func (e Edge) IsAuxiliary() bool {
	return strings.HasPrefix(e.Type, AuxiliaryConnectionPrefix)
}

// Graph is the extracted, read-only view of a workflow document.
type Graph struct {
	// Nodes is the raw node sequence, duplicates included.
	Nodes []Node
	// Edges is the flat edge list in traversal order.
	Edges []Edge

	byName map[string]Node
	order  []string
}

// NewGraph builds a graph from a node sequence and an edge list. When two
// nodes share a name the later record wins, but the name keeps the position
// of its first appearance in NodeNames.
func NewGraph(nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		Nodes:  nodes,
		Edges:  edges,
		byName: make(map[string]Node, len(nodes)),
		order:  make([]string, 0, len(nodes)),
	}
	for _, n := range nodes {
		if _, seen := g.byName[n.Name]; !seen {
			g.order = append(g.order, n.Name)
		}
		g.byName[n.Name] = n
	}
	return g
}

// Lookup returns the node registered under name.
func (g *Graph) Lookup(name string) (Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// HasNode reports whether a node with the given name exists.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.byName[name]
	return ok
}

// NodeNames returns the distinct node names in order of first appearance.
func (g *Graph) NodeNames() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// NodeCount returns the number of distinct node names.
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// ConnectedNames returns the set of names that appear as the source or target
// of any edge, regardless of connection type.
func (g *Graph) ConnectedNames() map[string]struct{} {
	connected := make(map[string]struct{}, len(g.Edges)*2)
	for _, e := range g.Edges {
		connected[e.Source] = struct{}{}
		connected[e.Target] = struct{}{}
	}
	return connected
}
