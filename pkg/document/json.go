package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

// DecodeJSON decodes a JSON document, keeping object keys in source order.
// Anything after the first top-level value is rejected.
func DecodeJSON(data []byte) (*Value, error) {
	p := newJSONParser(data)

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &SyntaxError{Format: FormatJSON, Pos: Position{Line: 1, Column: 1}, Msg: "empty document"}
	}

	v, err := p.value()
	if err != nil {
		return nil, err
	}

	pos := p.nextPos()
	if _, err := p.dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &SyntaxError{Format: FormatJSON, Pos: pos, Msg: "unexpected data after top-level value", Err: err}
	}
	return v, nil
}

type jsonParser struct {
	data       []byte
	dec        *json.Decoder
	lineStarts []int
}

func newJSONParser(data []byte) *jsonParser {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	starts := []int{0}
	for i, b := range data {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &jsonParser{data: data, dec: dec, lineStarts: starts}
}

// position converts a byte offset into a 1-based line and column.
func (p *jsonParser) position(offset int) Position {
	if offset > len(p.data) {
		offset = len(p.data)
	}
	line := sort.Search(len(p.lineStarts), func(i int) bool { return p.lineStarts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line + 1, Column: offset - p.lineStarts[line] + 1}
}

// nextPos returns the position where the next token starts. The decoder only
// reports where the previous token ended, so separators are skipped here.
func (p *jsonParser) nextPos() Position {
	off := int(p.dec.InputOffset())
	for off < len(p.data) {
		switch p.data[off] {
		case ' ', '\t', '\r', '\n', ',', ':':
			off++
			continue
		}
		break
	}
	return p.position(off)
}

func (p *jsonParser) syntaxError(err error, fallback Position) error {
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return &SyntaxError{Format: FormatJSON, Pos: p.position(int(se.Offset)), Msg: se.Error(), Err: err}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &SyntaxError{Format: FormatJSON, Pos: p.position(len(p.data)), Msg: "unexpected end of input", Err: err}
	}
	return &SyntaxError{Format: FormatJSON, Pos: fallback, Msg: err.Error(), Err: err}
}

func (p *jsonParser) value() (*Value, error) {
	pos := p.nextPos()
	tok, err := p.dec.Token()
	if err != nil {
		return nil, p.syntaxError(err, pos)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return p.object(pos)
		case '[':
			return p.array(pos)
		default:
			return nil, &SyntaxError{Format: FormatJSON, Pos: pos, Msg: fmt.Sprintf("unexpected %q", rune(t))}
		}
	case string:
		return NewScalar(t, ScalarString, pos), nil
	case json.Number:
		return NewScalar(t.String(), ScalarNumber, pos), nil
	case bool:
		if t {
			return NewScalar("true", ScalarBool, pos), nil
		}
		return NewScalar("false", ScalarBool, pos), nil
	case nil:
		return NewNull(pos), nil
	default:
		return nil, &SyntaxError{Format: FormatJSON, Pos: pos, Msg: fmt.Sprintf("unexpected token %v", tok)}
	}
}

func (p *jsonParser) object(pos Position) (*Value, error) {
	var fields []Field
	for p.dec.More() {
		keyPos := p.nextPos()
		tok, err := p.dec.Token()
		if err != nil {
			return nil, p.syntaxError(err, keyPos)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, &SyntaxError{Format: FormatJSON, Pos: keyPos, Msg: "object key must be a string"}
		}
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Key: key, Value: val})
	}
	if err := p.closing('}'); err != nil {
		return nil, err
	}
	return NewMapping(fields, pos), nil
}

func (p *jsonParser) array(pos Position) (*Value, error) {
	items := []*Value{}
	for p.dec.More() {
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, val)
	}
	if err := p.closing(']'); err != nil {
		return nil, err
	}
	return NewSequence(items, pos), nil
}

func (p *jsonParser) closing(want json.Delim) error {
	pos := p.nextPos()
	tok, err := p.dec.Token()
	if err != nil {
		return p.syntaxError(err, pos)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return &SyntaxError{Format: FormatJSON, Pos: pos, Msg: fmt.Sprintf("expected %q", rune(want))}
	}
	return nil
}
