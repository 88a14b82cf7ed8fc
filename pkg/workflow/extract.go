package workflow

import (
	"fmt"

	"github.com/leapstack-labs/flowlint/pkg/document"
)

// Extract builds a Graph from a decoded document. Missing or null "nodes"
// and "connections" keys are treated as empty. Any value that has the wrong
// shape to be read as a node or connection yields a *StructuralError.
func Extract(doc *document.Value) (*Graph, error) {
	if doc == nil || doc.Kind != document.KindMapping {
		return nil, structuralf("", doc, "top level must be a mapping, got %s", doc.Describe())
	}

	nodes, err := extractNodes(doc)
	if err != nil {
		return nil, err
	}
	edges, err := extractEdges(doc)
	if err != nil {
		return nil, err
	}
	return NewGraph(nodes, edges), nil
}

func extractNodes(doc *document.Value) ([]Node, error) {
	raw, ok := doc.Get("nodes")
	if !ok || raw.IsNull() {
		return []Node{}, nil
	}
	if raw.Kind != document.KindSequence {
		return nil, structuralf("nodes", raw, "must be a sequence, got %s", raw.Describe())
	}

	nodes := make([]Node, 0, raw.Len())
	for i, entry := range raw.Items() {
		field := fmt.Sprintf("nodes[%d]", i)
		n, err := extractNode(field, entry)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func extractNode(field string, entry *document.Value) (Node, error) {
	if entry.Kind != document.KindMapping {
		return Node{}, structuralf(field, entry, "node must be a mapping, got %s", entry.Describe())
	}

	nameVal, ok := entry.Get("name")
	if !ok || nameVal.IsNull() {
		return Node{}, structuralf(field+".name", entry, "required field is missing")
	}
	name, ok := nameVal.AsString()
	if !ok {
		return Node{}, structuralf(field+".name", nameVal, "must be a string, got %s", nameVal.Describe())
	}

	n := Node{Name: name, Pos: entry.Pos}

	if idVal, ok := entry.Get("id"); ok && idVal.IsNull() {
		n.NullID = true
	} else if ok {
		id, ok := idVal.AsText()
		if !ok {
			return Node{}, structuralf(field+".id", idVal, "must be a scalar, got %s", idVal.Describe())
		}
		n.ID, n.HasID = id, true
	}

	if typeVal, ok := entry.Get("type"); ok && !typeVal.IsNull() {
		typ, ok := typeVal.AsText()
		if !ok {
			return Node{}, structuralf(field+".type", typeVal, "must be a scalar, got %s", typeVal.Describe())
		}
		n.Type = typ
	}

	return n, nil
}

func extractEdges(doc *document.Value) ([]Edge, error) {
	raw, ok := doc.Get("connections")
	if !ok || raw.IsNull() {
		return []Edge{}, nil
	}
	if raw.Kind != document.KindMapping {
		return nil, structuralf("connections", raw, "must be a mapping, got %s", raw.Describe())
	}

	edges := []Edge{}
	// a repeated key keeps its first position but its last value
	for _, srcName := range raw.Keys() {
		srcField := fmt.Sprintf("connections[%q]", srcName)
		outputs, _ := raw.Get(srcName)
		if outputs.IsNull() {
			continue
		}
		if outputs.Kind != document.KindMapping {
			return nil, structuralf(srcField, outputs, "must be a mapping of connection types, got %s", outputs.Describe())
		}

		for _, connType := range outputs.Keys() {
			typeField := fmt.Sprintf("%s[%q]", srcField, connType)
			ports, _ := outputs.Get(connType)
			if ports.Kind != document.KindSequence {
				return nil, structuralf(typeField, ports, "must be a sequence of ports, got %s", ports.Describe())
			}

			for p, port := range ports.Items() {
				portField := fmt.Sprintf("%s[%d]", typeField, p)
				if port.Kind != document.KindSequence {
					return nil, structuralf(portField, port, "port must be a sequence of targets, got %s", port.Describe())
				}

				for i, ref := range port.Items() {
					refField := fmt.Sprintf("%s[%d]", portField, i)
					target, err := extractTarget(refField, ref)
					if err != nil {
						return nil, err
					}
					edges = append(edges, Edge{
						Source: srcName,
						Target: target,
						Type:   connType,
						Port:   p,
						Index:  i,
						Pos:    ref.Pos,
					})
				}
			}
		}
	}
	return edges, nil
}

func extractTarget(field string, ref *document.Value) (string, error) {
	if ref.Kind != document.KindMapping {
		return "", structuralf(field, ref, "target reference must be a mapping, got %s", ref.Describe())
	}
	nodeVal, ok := ref.Get("node")
	if !ok || nodeVal.IsNull() {
		return "", structuralf(field+".node", ref, "required field is missing")
	}
	target, ok := nodeVal.AsString()
	if !ok {
		return "", structuralf(field+".node", nodeVal, "must be a string, got %s", nodeVal.Describe())
	}
	return target, nil
}
