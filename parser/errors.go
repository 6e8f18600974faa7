package parser

import (
	"fmt"

	"github.com/vcrobe/lumin/diagnostic"
)

// ErrorKind classifies fatal parse errors.
type ErrorKind int

const (
	// KindSyntax covers malformed header, script and style delimiters.
	KindSyntax ErrorKind = iota
	// KindInvalidStructure covers disallowed import targets or forms.
	KindInvalidStructure
	// KindTemplate covers structural markup errors.
	KindTemplate
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindInvalidStructure:
		return "invalid structure"
	case KindTemplate:
		return "template"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a fatal parse error. Range is absolute in the parsed file.
type Error struct {
	Kind    ErrorKind
	Message string
	Range   diagnostic.Range
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Issue converts the error into an error-severity issue for location.
func (e *Error) Issue() diagnostic.Issue {
	return diagnostic.Issue{
		Severity: diagnostic.Error,
		Message:  e.Error(),
		Range:    e.Range,
	}
}

func syntaxErrorf(r diagnostic.Range, format string, args ...any) *Error {
	return &Error{Kind: KindSyntax, Message: fmt.Sprintf(format, args...), Range: r}
}

func structureErrorf(r diagnostic.Range, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidStructure, Message: fmt.Sprintf(format, args...), Range: r}
}

func templateErrorf(start, end int, format string, args ...any) *Error {
	return &Error{
		Kind:    KindTemplate,
		Message: fmt.Sprintf(format, args...),
		Range:   diagnostic.Range{Start: start, End: end},
	}
}
