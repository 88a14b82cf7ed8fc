// Package document decodes workflow files into a generic, order-preserving
// tree of mappings, sequences and scalars.
//
// Both JSON and YAML inputs produce the same *Value shape, so extraction code
// never needs to know which serialization a workflow was written in. Every
// value remembers where it started in the source, which lets diagnostics point
// at a line and column.
package document

import "fmt"

// Kind identifies the shape of a Value.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindScalar
	KindMapping
	KindSequence
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// ScalarType distinguishes string scalars from other scalar literals.
type ScalarType int

// Scalar types.
const (
	ScalarString ScalarType = iota
	ScalarNumber
	ScalarBool
)

// Position is a 1-based line/column location in the source document.
// The zero value means the position is unknown.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// IsValid reports whether the position points into a document.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String formats the position as line:column, or "-" when unknown.
func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Field is a single key/value pair of a mapping.
type Field struct {
	Key   string
	Value *Value
}

// Value is a node of the decoded document tree.
type Value struct {
	Kind       Kind
	ScalarType ScalarType
	Pos        Position

	text   string
	fields []Field
	items  []*Value
}

// NewScalar creates a scalar value.
func NewScalar(text string, typ ScalarType, pos Position) *Value {
	return &Value{Kind: KindScalar, ScalarType: typ, Pos: pos, text: text}
}

// NewNull creates a null value.
func NewNull(pos Position) *Value {
	return &Value{Kind: KindNull, Pos: pos}
}

// NewMapping creates a mapping from fields in source order.
func NewMapping(fields []Field, pos Position) *Value {
	return &Value{Kind: KindMapping, Pos: pos, fields: fields}
}

// NewSequence creates a sequence value.
func NewSequence(items []*Value, pos Position) *Value {
	return &Value{Kind: KindSequence, Pos: pos, items: items}
}

// IsNull reports whether v is absent or an explicit null.
func (v *Value) IsNull() bool {
	return v == nil || v.Kind == KindNull
}

// Fields returns the mapping entries in source order.
// Duplicate keys are kept; use Get for last-wins lookup.
func (v *Value) Fields() []Field {
	if v == nil || v.Kind != KindMapping {
		return nil
	}
	return v.fields
}

// Keys returns the distinct mapping keys in order of first appearance.
func (v *Value) Keys() []string {
	fields := v.Fields()
	seen := make(map[string]struct{}, len(fields))
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f.Key]; ok {
			continue
		}
		seen[f.Key] = struct{}{}
		keys = append(keys, f.Key)
	}
	return keys
}

// Get looks up a mapping key. When a key occurs more than once the last
// occurrence wins, matching how JSON decoders treat duplicate keys.
func (v *Value) Get(key string) (*Value, bool) {
	fields := v.Fields()
	for i := len(fields) - 1; i >= 0; i-- {
		if fields[i].Key == key {
			return fields[i].Value, true
		}
	}
	return nil, false
}

// Items returns the elements of a sequence.
func (v *Value) Items() []*Value {
	if v == nil || v.Kind != KindSequence {
		return nil
	}
	return v.items
}

// Len returns the number of entries of a mapping or sequence.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.Kind {
	case KindMapping:
		return len(v.fields)
	case KindSequence:
		return len(v.items)
	default:
		return 0
	}
}

// AsString returns the text of a string scalar.
func (v *Value) AsString() (string, bool) {
	if v == nil || v.Kind != KindScalar || v.ScalarType != ScalarString {
		return "", false
	}
	return v.text, true
}

// AsText returns the literal text of any scalar.
func (v *Value) AsText() (string, bool) {
	if v == nil || v.Kind != KindScalar {
		return "", false
	}
	return v.text, true
}

// Describe returns a short human-readable description of the value's shape,
// used when reporting that a value has the wrong type.
func (v *Value) Describe() string {
	if v == nil {
		return "missing"
	}
	if v.Kind != KindScalar {
		return v.Kind.String()
	}
	switch v.ScalarType {
	case ScalarNumber:
		return "number"
	case ScalarBool:
		return "boolean"
	default:
		return "string"
	}
}
