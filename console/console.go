// Package console prints diagnostics and build results for the terminal or
// for tools consuming JSON.
package console

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vcrobe/lumin/diagnostic"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiDim    = "\033[2m"
)

// Reporter writes human-readable diagnostics with source context.
type Reporter struct {
	out          io.Writer
	color        bool
	contextLines int
}

// New creates a Reporter. Color is enabled when out is a terminal and
// NO_COLOR is unset.
func New(out io.Writer) *Reporter {
	return &Reporter{out: out, color: isTerminal(out) && os.Getenv("NO_COLOR") == "", contextLines: 2}
}

// WithColor forces color on or off.
func (r *Reporter) WithColor(on bool) *Reporter {
	r.color = on
	return r
}

// Report prints every diagnostic followed by a summary line. sources maps a
// diagnostic's file to its text; files without a source print no context.
func (r *Reporter) Report(diags []diagnostic.Diagnostic, sources map[string]string) (errors, warnings int) {
	for _, d := range diags {
		r.Diagnostic(d, sources[d.File])
		if d.Severity == diagnostic.Error {
			errors++
		} else {
			warnings++
		}
	}
	if len(diags) > 0 {
		fmt.Fprintf(r.out, "%d error(s), %d warning(s)\n", errors, warnings)
	}
	return errors, warnings
}

// Diagnostic prints one diagnostic.
func (r *Reporter) Diagnostic(d diagnostic.Diagnostic, src string) {
	label, tint := "error", ansiRed
	if d.Severity == diagnostic.Warning {
		label, tint = "warning", ansiYellow
	}

	where := d.Start.String()
	if d.File != "" {
		where = d.File + ":" + where
	}
	fmt.Fprintf(r.out, "%s: %s: %s\n", r.paint(ansiBold, where), r.paint(tint, label), d.Message)

	if src != "" {
		ix := diagnostic.NewLineIndex(src)
		fmt.Fprint(r.out, r.paint(ansiDim, diagnostic.Context(src, ix, d.Start, r.contextLines)))
	}
}

func (r *Reporter) paint(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + ansiReset
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
