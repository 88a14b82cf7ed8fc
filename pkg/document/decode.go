package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrSyntax is wrapped by every SyntaxError so callers can test with errors.Is.
var ErrSyntax = errors.New("syntax error")

// Format selects the serialization used to decode a document.
type Format string

// Supported formats.
const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a user-supplied format name. The empty string means auto.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown document format %q (want auto, json or yaml)", s)
	}
}

// FormatFor resolves FormatAuto from a file name: .yaml and .yml are YAML,
// everything else is treated as JSON.
func FormatFor(name string, format Format) Format {
	if format != FormatAuto && format != "" {
		return format
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode decodes data using the given format, resolving auto from name.
func Decode(name string, data []byte, format Format) (*Value, error) {
	switch FormatFor(name, format) {
	case FormatYAML:
		return DecodeYAML(data)
	default:
		return DecodeJSON(data)
	}
}

// SyntaxError reports input that is not well-formed in its serialization.
type SyntaxError struct {
	Format Format
	Pos    Position
	Msg    string
	Err    error // underlying decoder error, may be nil
}

func (e *SyntaxError) Error() string {
	if e == nil {
		return ""
	}
	name := strings.ToUpper(string(e.Format))
	if e.Pos.IsValid() {
		return fmt.Sprintf("invalid %s at %s: %s", name, e.Pos, e.Msg)
	}
	return fmt.Sprintf("invalid %s: %s", name, e.Msg)
}

func (e *SyntaxError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSyntax}
	}
	return []error{ErrSyntax, e.Err}
}
