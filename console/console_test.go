package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcrobe/lumin/diagnostic"
)

func TestReporter_PrintsContextAndSummary(t *testing.T) {
	src := "<div>\n  <Buton/>\n</div>\n"
	ix := diagnostic.NewLineIndex(src)
	is := diagnostic.Errorf(diagnostic.Range{Start: 8, End: 14}, "Cannot find component 'Buton'.")
	d := ix.Resolve(is)
	d.File = "App.lumin"
	warn := diagnostic.Diagnostic{File: "Other.lumin", Severity: diagnostic.Warning, Message: "Unknown element <dvi>",
		Start: diagnostic.Location{Line: 1, Col: 1}}

	var out bytes.Buffer
	errs, warns := New(&out).Report([]diagnostic.Diagnostic{d, warn}, map[string]string{"App.lumin": src})

	assert.Equal(t, 1, errs)
	assert.Equal(t, 1, warns)
	text := out.String()
	assert.Contains(t, text, "App.lumin:2:3: error: Cannot find component 'Buton'.")
	assert.Contains(t, text, ">    2 |   <Buton/>")
	assert.Contains(t, text, "Other.lumin:1:1: warning: Unknown element <dvi>")
	assert.True(t, strings.HasSuffix(text, "1 error(s), 1 warning(s)\n"))
	assert.NotContains(t, text, "\033[", "a buffer is not a terminal")
}

func TestReporter_Color(t *testing.T) {
	var out bytes.Buffer
	New(&out).WithColor(true).Diagnostic(diagnostic.Diagnostic{Message: "boom"}, "")

	assert.Contains(t, out.String(), ansiRed+"error"+ansiReset)
}

func TestJSON(t *testing.T) {
	var out bytes.Buffer
	err := JSON(&out, []diagnostic.Diagnostic{{Severity: diagnostic.Warning, Message: "m"}})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"severity": "Warning"`)
}
