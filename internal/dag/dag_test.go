package dag

import (
	"reflect"
	"testing"

	"github.com/leapstack-labs/flowlint/pkg/workflow"
)

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := NewGraph()

	g.AddNode("a", "trigger")
	g.AddNode("b", "set")
	g.AddNode("c", "set")

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}

	if err := g.AddEdge("a", "b", "main"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}
	if err := g.AddEdge("b", "c", "main"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}
	// same pair through a second port
	if err := g.AddEdge("b", "c", "main"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}

	if g.EdgeCount() != 3 {
		t.Errorf("expected 3 edges, got %d", g.EdgeCount())
	}
	if got := g.GetChildren("b"); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("expected distinct children [c], got %v", got)
	}
	if got := len(g.Incoming("c")); got != 2 {
		t.Errorf("expected 2 incoming links, got %d", got)
	}
}

func TestGraph_AddEdge_InvalidNodes(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", "")

	if err := g.AddEdge("a", "nonexistent", "main"); err == nil {
		t.Error("expected error for nonexistent target node")
	}
	if err := g.AddEdge("nonexistent", "a", "main"); err == nil {
		t.Error("expected error for nonexistent source node")
	}
}

func TestGraph_AddNode_UpdatesType(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", "first")
	g.AddNode("b", "")
	g.AddNode("a", "second")

	n, ok := g.GetNode("a")
	if !ok || n.Type != "second" {
		t.Errorf("expected type to be updated, got %+v", n)
	}

	nodes := g.GetAllNodes()
	if len(nodes) != 2 || nodes[0].ID != "a" || nodes[1].ID != "b" {
		t.Errorf("expected insertion order [a b], got %v", nodes)
	}
}

func TestGraph_RootsAndLeaves(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"trigger", "fetch", "model", "agent", "note"} {
		g.AddNode(id, "")
	}
	_ = g.AddEdge("trigger", "fetch", "main")
	_ = g.AddEdge("fetch", "agent", "main")
	_ = g.AddEdge("model", "agent", "ai_languageModel")

	if got := g.GetRoots(); !reflect.DeepEqual(got, []string{"trigger", "model", "note"}) {
		t.Errorf("unexpected roots: %v", got)
	}
	if got := g.GetLeaves(); !reflect.DeepEqual(got, []string{"agent", "note"}) {
		t.Errorf("unexpected leaves: %v", got)
	}
	if got := g.GetParents("agent"); !reflect.DeepEqual(got, []string{"fetch", "model"}) {
		t.Errorf("unexpected parents: %v", got)
	}
}

func TestGraph_Reachable(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddNode(id, "")
	}
	_ = g.AddEdge("a", "b", "main")
	_ = g.AddEdge("b", "c", "main")

	reached := g.Reachable([]string{"a", "missing"})
	if !reached["a"] || !reached["b"] || !reached["c"] {
		t.Errorf("expected a, b, c reachable, got %v", reached)
	}
	if reached["d"] {
		t.Error("d should not be reachable")
	}
}

func TestGraph_HasCycle(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", "")
	g.AddNode("b", "")
	g.AddNode("c", "")
	_ = g.AddEdge("a", "b", "main")
	_ = g.AddEdge("b", "c", "main")

	if hasCycle, _ := g.HasCycle(); hasCycle {
		t.Error("expected no cycle")
	}

	// workflows may loop back
	_ = g.AddEdge("c", "a", "main")
	hasCycle, path := g.HasCycle()
	if !hasCycle {
		t.Fatal("expected cycle")
	}
	if len(path) < 2 || path[0] != path[len(path)-1] {
		t.Errorf("expected closed cycle path, got %v", path)
	}
}

func TestFromWorkflow(t *testing.T) {
	wf := workflow.NewGraph(
		[]workflow.Node{
			{Name: "Start", Type: "n8n-nodes-base.manualTrigger"},
			{Name: "Set", Type: "n8n-nodes-base.set"},
		},
		[]workflow.Edge{
			{Source: "Start", Target: "Set", Type: "main"},
			{Source: "Set", Target: "Ghost", Type: "main"},
		},
	)

	g, skipped := FromWorkflow(wf)
	if skipped != 1 {
		t.Errorf("expected 1 skipped edge, got %d", skipped)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("expected 2 nodes and 1 edge, got %d and %d", g.NodeCount(), g.EdgeCount())
	}
	n, _ := g.GetNode("Start")
	if n.Type != "n8n-nodes-base.manualTrigger" {
		t.Errorf("unexpected type %q", n.Type)
	}
	if got := g.Outgoing("Start"); len(got) != 1 || got[0] != (Link{ID: "Set", Type: "main"}) {
		t.Errorf("unexpected outgoing links: %v", got)
	}
}
