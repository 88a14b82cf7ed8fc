package workflow

import (
	"errors"
	"io/fs"
	"os"

	"github.com/leapstack-labs/flowlint/pkg/document"
)

// Load reads, decodes and extracts the workflow stored at path.
//
// A missing file yields a *LoadError wrapping ErrNotFound, undecodable input
// a *ParseError wrapping ErrMalformed, and a document of the wrong shape a
// *StructuralError with Path set.
func Load(path string, format document.Format) (*Graph, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Path: path, Err: ErrNotFound}
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	return Parse(path, data, format)
}

// Parse decodes and extracts a workflow from in-memory data. name is used to
// resolve FormatAuto and to label errors.
func Parse(name string, data []byte, format document.Format) (*Graph, error) {
	doc, err := document.Decode(name, data, format)
	if err != nil {
		return nil, &ParseError{Path: name, Err: err}
	}

	g, err := Extract(doc)
	if err != nil {
		var se *StructuralError
		if errors.As(err, &se) {
			se.Path = name
		}
		return nil, err
	}
	return g, nil
}
