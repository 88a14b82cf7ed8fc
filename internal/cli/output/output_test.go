package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTest(mode Mode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{"", true, ModeText},
		{"", false, ModeMarkdown},
		{"bogus", false, ModeMarkdown},
		{ModeText, false, ModeText},
		{ModeMarkdown, true, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"_"+map[bool]string{true: "tty", false: "pipe"}[tt.isTTY], func(t *testing.T) {
			r, _, _ := newTest(tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestNewRenderer_BufferIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestRenderer_MessagesByMode(t *testing.T) {
	t.Run("markdown", func(t *testing.T) {
		r, out, errOut := newTest(ModeMarkdown, false)
		r.Success("done")
		r.Warning("careful")
		r.Error("broken")
		assert.Equal(t, "**OK:** done\n", out.String())
		assert.Contains(t, errOut.String(), "> **Warning:** careful")
		assert.Contains(t, errOut.String(), "> **Error:** broken")
	})

	t.Run("text without tty has no escapes", func(t *testing.T) {
		r, out, errOut := newTest(ModeText, false)
		r.Success("done")
		r.Error("broken")
		assert.Equal(t, "✓ done\n", out.String())
		assert.Equal(t, "✗ broken\n", errOut.String())
	})

	t.Run("json suppresses chatter", func(t *testing.T) {
		r, out, errOut := newTest(ModeJSON, false)
		r.Success("done")
		r.Warning("careful")
		assert.Empty(t, out.String())
		assert.Empty(t, errOut.String())
	})
}

func TestRenderer_Header(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.Header(2, "Connections")
	assert.Equal(t, "## Connections\n\n", out.String())

	r, out, _ = newTest(ModeText, false)
	r.Header(1, "Connections")
	assert.Equal(t, "Connections\n\n", out.String())
}

func TestRenderer_JSON(t *testing.T) {
	r, out, _ := newTest(ModeJSON, false)
	require.NoError(t, r.JSON(map[string]int{"nodes": 2}))
	assert.Equal(t, "{\n  \"nodes\": 2\n}\n", out.String())
}

func TestRenderer_Table(t *testing.T) {
	rows := []table.Row{{"Trigger", "Fetch", "OK"}, {"Fetch", "Ghost", "MISSING"}}

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTest(ModeMarkdown, false)
		r.Table(table.Row{"Source", "Target", "Status"}, rows)
		s := out.String()
		assert.Contains(t, s, "| Source | Target | Status |")
		assert.Contains(t, s, "| Fetch | Ghost | MISSING |")
	})

	t.Run("text", func(t *testing.T) {
		r, out, _ := newTest(ModeText, false)
		r.Table(table.Row{"Source", "Target", "Status"}, rows)
		s := out.String()
		assert.True(t, strings.HasPrefix(s, "┌"), "light style table expected, got %q", s)
		assert.Contains(t, s, "MISSING")
	})
}

func TestFormatHeader(t *testing.T) {
	assert.Equal(t, "# A", FormatHeader(1, "A"))
	assert.Equal(t, "### A", FormatHeader(3, "A"))
	assert.Equal(t, "# A", FormatHeader(0, "A"))
}
