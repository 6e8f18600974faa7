// Package script classifies the content of a component's <script> block.
//
// A structural parser (tree-sitter) turns the script into a small
// declaration tree; the Classifier partitions its top-level items into
// props, signals, head metadata, plain imports and retained code. esbuild
// validates snippets and erases type annotations.
package script

import (
	"context"
	"fmt"

	"github.com/vcrobe/lumin/diagnostic"
)

// StructuralParser parses script source into a declaration tree. A parse
// failure is returned as a *SyntaxError with a snippet-relative range.
type StructuralParser interface {
	ParseModule(ctx context.Context, src string) (*Module, error)
}

// SyntaxError is a localized structural parse failure.
type SyntaxError struct {
	Message string
	Range   diagnostic.Range
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("script syntax error at %d: %s", e.Range.Start, e.Message)
}

// Module is the declaration tree of one script. Ranges are relative to the
// parsed source.
type Module struct {
	src   string
	Items []Item
}

// Text re-serializes a sub-tree by returning its source slice.
func (m *Module) Text(r diagnostic.Range) string {
	return m.src[r.Start:r.End]
}

// ItemKind classifies a top-level statement.
type ItemKind int

const (
	ItemOther ItemKind = iota
	ItemImport
	ItemVariable
)

// Item is one top-level statement.
type Item struct {
	Kind  ItemKind
	Range diagnostic.Range

	// Source is the module specifier of an ItemImport.
	Source string

	// Keyword is const, let or var for an ItemVariable. Exported is set for
	// `export <keyword> ...`.
	Keyword     string
	Exported    bool
	Declarators []Declarator
}

// Declarator is one `name = init` binding. Name is empty for destructuring
// patterns; Init is nil without an initializer.
type Declarator struct {
	Name  string
	Range diagnostic.Range
	Init  *Expr
}

// ExprKind classifies the initializer shapes the classifier inspects.
type ExprKind int

const (
	ExprOther ExprKind = iota
	ExprCall
	ExprObject
	ExprArray
	ExprString
	ExprBool
)

// Expr is an initializer expression. `x as T`, `x satisfies T` and
// parenthesized expressions are unwrapped before classification; Range
// still spans the wrapper.
type Expr struct {
	Kind  ExprKind
	Range diagnostic.Range

	Callee string  // ExprCall
	Args   []*Expr // ExprCall

	Props []Property // ExprObject
	Elems []*Expr    // ExprArray

	// Value is the decoded literal for ExprString, "true"/"false" for ExprBool.
	Value string
}

// Property is a `key: value` pair of an object literal. Shorthand, spread,
// computed and method members are not represented.
type Property struct {
	Key   string
	Value *Expr
}
