package output

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func newTest(mode Mode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"text", ModeText, false},
		{"markdown", ModeMarkdown, false},
		{"json", ModeJSON, false},
		{"yaml", ModeYAML, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{"auto on tty", ModeAuto, true, ModeText},
		{"auto piped", ModeAuto, false, ModeMarkdown},
		{"empty is auto", "", false, ModeMarkdown},
		{"explicit json", ModeJSON, true, ModeJSON},
		{"explicit text piped", ModeText, false, ModeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
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

func TestTable(t *testing.T) {
	header := []string{"table", "column", "class"}
	rows := [][]string{{"t1", "d1", "pass-through"}, {"t1", "d2", "aggregate"}}

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTest(ModeMarkdown, false)
		r.Table(header, rows)
		assert.Equal(t, "| table | column | class |\n| --- | --- | --- |\n| t1 | d1 | pass-through |\n| t1 | d2 | aggregate |\n", out.String())
	})

	t.Run("text", func(t *testing.T) {
		r, out, _ := newTest(ModeText, false)
		r.Table(header, rows)
		s := out.String()
		assert.Contains(t, s, "┌")
		assert.Contains(t, s, "pass-through")
		assert.Contains(t, s, "TABLE")
	})
}

func TestHeader(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.Header(2, "Tables")
	assert.Equal(t, "## Tables\n\n", out.String())

	r, out, _ = newTest(ModeText, false)
	r.Header(1, "Tables")
	assert.Equal(t, "Tables\n", out.String())
	assert.False(t, ansiPattern.MatchString(out.String()))
}

func TestStatusLines_NoANSIWhenPiped(t *testing.T) {
	r, out, errOut := newTest(ModeText, false)
	r.StatusLine("orders", "success", "2 queries")
	r.StatusLine("customers", "failed", "")
	r.Success("done")
	r.Warning("careful")

	assert.Equal(t, "✓ orders  2 queries\n✗ customers\n✓ done\n", out.String())
	assert.Equal(t, "! careful\n", errOut.String())
	assert.False(t, ansiPattern.MatchString(out.String()+errOut.String()))
}

func TestJSONAndYAML(t *testing.T) {
	v := map[string]any{"table": "t1", "queries": 2}

	r, out, _ := newTest(ModeJSON, false)
	require.NoError(t, r.JSON(v))
	assert.JSONEq(t, `{"table":"t1","queries":2}`, out.String())

	r, out, _ = newTest(ModeYAML, false)
	require.NoError(t, r.YAML(v))
	assert.YAMLEq(t, "table: t1\nqueries: 2\n", out.String())
}

func TestMarkdownHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(0, "Title"))
	assert.Equal(t, "### Title", FormatHeader(3, "Title"))
	assert.Equal(t, "```sql\nSELECT 1\n```", FormatCodeBlock("sql", "SELECT 1\n"))
	assert.Equal(t, "- **Model**: shop", FormatKeyValue("Model", "shop"))
	assert.Equal(t, "| expr |\n| --- |\n| a \\| b |", FormatTable([]string{"expr"}, [][]string{{"a | b"}}))
}
