package workflow

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/flowlint/pkg/document"
)

// Sentinel errors for the fatal tier. Each typed error below wraps exactly
// one of them, so callers can branch with errors.Is.
var (
	// ErrNotFound indicates the named workflow file does not exist.
	ErrNotFound = errors.New("workflow not found")

	// ErrMalformed indicates the input is not well-formed JSON or YAML.
	ErrMalformed = errors.New("malformed workflow")

	// ErrStructure indicates the document does not have the node/connection
	// shape needed to build a graph.
	ErrStructure = errors.New("invalid workflow structure")
)

// LoadError reports a failure to read a workflow file.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ParseError reports a document that could not be decoded at all.
type ParseError struct {
	Path string
	Err  error // usually a *document.SyntaxError
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", ErrMalformed, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, ErrMalformed, e.Err)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformed}
	}
	return []error{ErrMalformed, e.Err}
}

// StructuralError reports a document whose shape cannot be read as a
// workflow graph, e.g. a node without a name.
type StructuralError struct {
	Path  string            // file path, empty when extracting an in-memory document
	Field string            // offending location, e.g. nodes[2].name
	Pos   document.Position // source position of the offending value
	Msg   string
}

func (e *StructuralError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Msg
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Pos.IsValid() {
		msg = fmt.Sprintf("%s (at %s)", msg, e.Pos)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, ErrStructure, msg)
	}
	return fmt.Sprintf("%s: %s", ErrStructure, msg)
}

func (e *StructuralError) Unwrap() error { return ErrStructure }

func structuralf(field string, v *document.Value, format string, args ...any) *StructuralError {
	se := &StructuralError{Field: field, Msg: fmt.Sprintf(format, args...)}
	if v != nil {
		se.Pos = v.Pos
	}
	return se
}
