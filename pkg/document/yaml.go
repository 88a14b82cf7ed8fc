package document

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxAliasDepth bounds alias expansion so self-referencing anchors cannot
// recurse forever.
const maxAliasDepth = 64

// DecodeYAML decodes a YAML document. An empty document decodes to null.
// Only the first document of a multi-document stream is used. Aliases are
// expanded and "<<" merge keys are resolved, with the mapping's own keys
// taking precedence over merged ones.
func DecodeYAML(data []byte) (*Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, yamlSyntaxError(err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return NewNull(Position{Line: 1, Column: 1}), nil
	}
	return convertYAML(root.Content[0], 0)
}

func yamlSyntaxError(err error) error {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	pos := Position{}
	var line int
	if _, scanErr := fmt.Sscanf(msg, "line %d:", &line); scanErr == nil && line > 0 {
		pos = Position{Line: line, Column: 1}
		if i := strings.Index(msg, ": "); i >= 0 {
			msg = msg[i+2:]
		}
	}
	return &SyntaxError{Format: FormatYAML, Pos: pos, Msg: msg, Err: err}
}

func convertYAML(n *yaml.Node, aliasDepth int) (*Value, error) {
	pos := Position{Line: n.Line, Column: n.Column}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewNull(pos), nil
		}
		return convertYAML(n.Content[0], aliasDepth)

	case yaml.AliasNode:
		if aliasDepth >= maxAliasDepth || n.Alias == nil {
			return nil, &SyntaxError{Format: FormatYAML, Pos: pos, Msg: fmt.Sprintf("alias %q cannot be resolved", n.Value)}
		}
		return convertYAML(n.Alias, aliasDepth+1)

	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return NewNull(pos), nil
		case "!!int", "!!float":
			return NewScalar(n.Value, ScalarNumber, pos), nil
		case "!!bool":
			return NewScalar(strings.ToLower(n.Value), ScalarBool, pos), nil
		default:
			return NewScalar(n.Value, ScalarString, pos), nil
		}

	case yaml.MappingNode:
		var merged []Field
		fields := make([]Field, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == "!!merge" {
				mf, err := mergeFields(valNode, aliasDepth)
				if err != nil {
					return nil, err
				}
				merged = append(merged, mf...)
				continue
			}
			if keyNode.Kind != yaml.ScalarNode {
				return nil, &SyntaxError{
					Format: FormatYAML,
					Pos:    Position{Line: keyNode.Line, Column: keyNode.Column},
					Msg:    "mapping keys must be scalars",
				}
			}
			val, err := convertYAML(valNode, aliasDepth)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Key: keyNode.Value, Value: val})
		}
		// merged keys go first so the mapping's own keys win on lookup
		return NewMapping(append(merged, fields...), pos), nil

	case yaml.SequenceNode:
		items := make([]*Value, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := convertYAML(c, aliasDepth)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		return NewSequence(items, pos), nil

	default:
		return nil, &SyntaxError{Format: FormatYAML, Pos: pos, Msg: fmt.Sprintf("unsupported node kind %d", n.Kind)}
	}
}

// mergeFields resolves the value of a "<<" merge key: a mapping, or a
// sequence of mappings where earlier mappings take precedence.
func mergeFields(n *yaml.Node, aliasDepth int) ([]Field, error) {
	val, err := convertYAML(n, aliasDepth)
	if err != nil {
		return nil, err
	}
	switch val.Kind {
	case KindMapping:
		return val.Fields(), nil
	case KindSequence:
		items := val.Items()
		var fields []Field
		for i := len(items) - 1; i >= 0; i-- {
			if items[i].Kind != KindMapping {
				return nil, &SyntaxError{Format: FormatYAML, Pos: items[i].Pos, Msg: "merge value must be a mapping or a sequence of mappings"}
			}
			fields = append(fields, items[i].Fields()...)
		}
		return fields, nil
	default:
		return nil, &SyntaxError{Format: FormatYAML, Pos: val.Pos, Msg: "merge value must be a mapping or a sequence of mappings"}
	}
}
