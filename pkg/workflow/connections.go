package workflow

import (
	"sort"
	"strings"
)

// Connection status values reported by ConnectionGroups.
const (
	StatusOK      = "OK"
	StatusMissing = "MISSING"
)

// ConnectionGroup holds all edges of one connection type.
type ConnectionGroup struct {
	Type  string       `json:"type"`
	Label string       `json:"label"`
	Edges []EdgeStatus `json:"edges"`
}

// EdgeStatus is an edge annotated with whether both endpoints resolve.
type EdgeStatus struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Status string `json:"status"`
}

// OK reports whether both endpoints of the edge exist.
func (s EdgeStatus) OK() bool {
	return s.Status == StatusOK
}

// TypeLabel returns the display label for a connection type: "Data flow"
// for main, and "AI: x" for ai_x.
func TypeLabel(connType string) string {
	if connType == MainConnectionType {
		return "Data flow"
	}
	return strings.ReplaceAll(connType, AuxiliaryConnectionPrefix, "AI: ")
}

// ConnectionGroups groups the graph's edges by connection type. Groups are
// sorted by type; edges keep traversal order within a group.
func (g *Graph) ConnectionGroups() []ConnectionGroup {
	index := make(map[string]int)
	var groups []ConnectionGroup

	for _, e := range g.Edges {
		i, ok := index[e.Type]
		if !ok {
			i = len(groups)
			index[e.Type] = i
			groups = append(groups, ConnectionGroup{Type: e.Type, Label: TypeLabel(e.Type)})
		}

		status := StatusOK
		if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
			status = StatusMissing
		}
		groups[i].Edges = append(groups[i].Edges, EdgeStatus{
			Source: e.Source,
			Target: e.Target,
			Status: status,
		})
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Type < groups[b].Type
	})
	return groups
}
