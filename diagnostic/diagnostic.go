// Package diagnostic maps byte offsets in component sources to line/column
// locations and defines the diagnostic record shared by the parser, the
// script classifier and the graph compiler.
package diagnostic

import (
	"encoding/json"
	"fmt"
)

// Severity classifies a diagnostic. Any Error blocks emission for the build.
type Severity int

const (
	Error Severity = iota
	Warning
)

// String returns the lowercase severity name used by reporters.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// MarshalJSON encodes the severity as "Error" or "Warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	switch s {
	case Error:
		return json.Marshal("Error")
	case Warning:
		return json.Marshal("Warning")
	}
	return nil, fmt.Errorf("diagnostic: unknown severity %d", int(s))
}

// Range is a half-open byte range [Start, End) into a source file.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int { return r.End - r.Start }

// Shift returns the range moved forward by base bytes.
func (r Range) Shift(base int) Range {
	return Range{Start: r.Start + base, End: r.End + base}
}

// Location is a 1-based line and column.
type Location struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

func (l Location) String() string { return fmt.Sprintf("%d:%d", l.Line, l.Col) }

// Issue is a finding that has not been located yet. Producers only know byte
// ranges; the owner of the file's LineIndex turns issues into diagnostics.
type Issue struct {
	Severity Severity
	Message  string
	Range    Range
}

// Errorf builds an error-severity issue.
func Errorf(r Range, format string, args ...any) Issue {
	return Issue{Severity: Error, Message: fmt.Sprintf(format, args...), Range: r}
}

// Warningf builds a warning-severity issue.
func Warningf(r Range, format string, args ...any) Issue {
	return Issue{Severity: Warning, Message: fmt.Sprintf(format, args...), Range: r}
}

// Remap moves snippet-relative issues to absolute file offsets.
func Remap(issues []Issue, base int) []Issue {
	out := make([]Issue, len(issues))
	for i, is := range issues {
		is.Range = is.Range.Shift(base)
		out[i] = is
	}
	return out
}

// Diagnostic is the stable record consumed by reporters and editor tooling.
type Diagnostic struct {
	File     string   `json:"file,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Range    Range    `json:"range"`
	Start    Location `json:"start"`
	End      Location `json:"end"`
}

func (d Diagnostic) String() string {
	if d.File == "" {
		return fmt.Sprintf("%s: %s: %s", d.Start, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%s: %s: %s", d.File, d.Start, d.Severity, d.Message)
}

// HasErrors reports whether any diagnostic has Error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}
