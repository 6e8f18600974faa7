// Package ast defines the parsed form of a .lumin component file.
//
// Template nodes, attributes and control-flow blocks are closed sum types:
// each interface has an unexported marker method, so only this package can
// add variants and every consumer switches over a fixed set.
package ast

import (
	"fmt"

	"github.com/vcrobe/lumin/diagnostic"
)

// Range is an absolute byte range into the component source.
type Range = diagnostic.Range

// DefaultSlotName is the slot used when {@slot} names none.
const DefaultSlotName = "children"

// ComponentFile is the result of parsing one source file. It is built once
// by the parser and not modified afterwards.
type ComponentFile struct {
	Imports      []ComponentImport
	Script       *ScriptBlock
	Style        *StyleBlock
	Template     []Node
	DefinedSlots []string
	Head         *HeadMetadata
}

// SpecifierKind distinguishes the header import forms.
type SpecifierKind int

const (
	SpecifierDefault SpecifierKind = iota
	SpecifierNamed
	SpecifierNamedAlias
)

// ImportSpecifier is one binding introduced by a header import.
// Imported is only set for SpecifierNamedAlias.
type ImportSpecifier struct {
	Kind     SpecifierKind
	Local    string
	Imported string
}

// ComponentImport is one `import ... from "./X.lumin"` header line.
type ComponentImport struct {
	Specifiers []ImportSpecifier
	Source     string
	Range      Range
}

// LocalNames returns the names the import binds in the template.
func (imp ComponentImport) LocalNames() []string {
	names := make([]string, 0, len(imp.Specifiers))
	for _, s := range imp.Specifiers {
		names = append(names, s.Local)
	}
	return names
}

// PropKind tells a caller-visible prop apart from internal signal state.
type PropKind int

const (
	KindProp PropKind = iota
	KindSignal
)

func (k PropKind) String() string {
	if k == KindSignal {
		return "signal"
	}
	return "prop"
}

// Prop is a reactive top-level declaration extracted from the script block.
// DefaultValue is the type-erased rendering of the initializer argument;
// OriginalDefaultValue is the untouched source slice. Both are empty when
// the call has no argument.
type Prop struct {
	Name                 string
	Kind                 PropKind
	DefaultValue         string
	OriginalDefaultValue string
}

// ScriptImport is a plain (non-component) import kept verbatim.
type ScriptImport struct {
	Code   string
	Source string
	Range  Range
}

// ScriptBlock is the single <script> region. Code is the block source with
// imports and the prop, signal and head declarations cut out; everything else
// is kept verbatim, comments included. ErasedCode is Code with types erased,
// or empty when erasure failed. OriginalCode is the raw block content kept
// for downstream type analysis.
type ScriptBlock struct {
	Code         string
	ErasedCode   string
	OriginalCode string
	Imports      []ScriptImport
	Props        []Prop
	Range        Range
	// Malformed is set when the block failed to parse and was left
	// unclassified.
	Malformed bool
}

// StyleBlock is the single <style> region.
type StyleBlock struct {
	Code  string
	Range Range
}

// HeadMetadata is the page metadata declared by `export const head`.
type HeadMetadata struct {
	Title  string
	Meta   []map[string]string
	Link   []map[string]string
	Script []map[string]string
	// HasTitle distinguishes an empty title from a missing one.
	HasTitle bool
}

// JsExpr is an embedded script expression with surrounding whitespace
// trimmed; Range excludes the delimiters and the trimmed whitespace.
type JsExpr struct {
	Code  string
	Range Range
}

// Node is a template node: *Element, *Text, *Expr, *ControlFlow or *Slot.
type Node interface {
	Span() Range
	node()
}

// Element is a native element or, when the tag starts with an uppercase
// letter, a component reference.
type Element struct {
	TagName     string
	TagRange    Range
	Attributes  []Attribute
	Children    []Node
	SelfClosing bool
	Range       Range
}

// Text is a literal run of template text.
type Text struct {
	Value string
	Range Range
}

// Expr is a `{expr}` interpolation.
type Expr struct {
	JsExpr
}

// ControlFlow wraps an @{if} or @{for} block.
type ControlFlow struct {
	Block ControlFlowBlock
	Range Range
}

// Slot is a `{@slot name ?? fallback}` insertion point. An empty Name means
// the default slot.
type Slot struct {
	Name     string
	Fallback []Node
	Range    Range
}

// EffectiveName returns the slot name with the default applied.
func (s *Slot) EffectiveName() string {
	if s.Name == "" {
		return DefaultSlotName
	}
	return s.Name
}

func (e *Element) Span() Range     { return e.Range }
func (t *Text) Span() Range        { return t.Range }
func (e *Expr) Span() Range        { return e.Range }
func (c *ControlFlow) Span() Range { return c.Range }
func (s *Slot) Span() Range        { return s.Range }

func (*Element) node()     {}
func (*Text) node()        {}
func (*Expr) node()        {}
func (*ControlFlow) node() {}
func (*Slot) node()        {}

// ControlFlowBlock is *IfBlock or *ForBlock.
type ControlFlowBlock interface {
	controlFlow()
}

// ElseIf is one `else if (cond) branch` arm.
type ElseIf struct {
	Condition JsExpr
	Branch    []Node
}

// IfBlock is `@{if (cond) then (else if (cond) branch)* (else branch)?}`.
type IfBlock struct {
	Condition JsExpr
	Then      []Node
	ElseIfs   []ElseIf
	Else      []Node
	HasElse   bool
}

// ForBlock is `@{for (params; key=expr) body}`. Params is the raw binding
// and iterable text; Key is nil when no key segment was given.
type ForBlock struct {
	Params      string
	ParamsRange Range
	Key         *JsExpr
	Body        []Node
}

func (*IfBlock) controlFlow()  {}
func (*ForBlock) controlFlow() {}

// Attribute is *StaticAttr, *DynamicAttr, *EventHandlerAttr or *BindAttr.
type Attribute interface {
	AttrName() string
	attribute()
}

// StaticAttr is a quoted value, or "true" for a bare boolean attribute.
type StaticAttr struct {
	Name  string
	Value string
	Range Range
}

// DynamicAttr is `name={expr}`.
type DynamicAttr struct {
	Name  string
	Expr  JsExpr
	Range Range
}

// EventHandlerAttr is `onX={expr}`.
type EventHandlerAttr struct {
	Name  string
	Expr  JsExpr
	Range Range
}

// BindAttr is `bind:property={expr}`.
type BindAttr struct {
	Property string
	Expr     JsExpr
	Range    Range
}

func (a *StaticAttr) AttrName() string       { return a.Name }
func (a *DynamicAttr) AttrName() string      { return a.Name }
func (a *EventHandlerAttr) AttrName() string { return a.Name }
func (a *BindAttr) AttrName() string         { return "bind:" + a.Property }

func (*StaticAttr) attribute()       {}
func (*DynamicAttr) attribute()      {}
func (*EventHandlerAttr) attribute() {}
func (*BindAttr) attribute()         {}

// IsComponentTag reports whether a tag refers to a component by the
// uppercase-initial convention.
func IsComponentTag(tag string) bool {
	return tag != "" && tag[0] >= 'A' && tag[0] <= 'Z'
}

// unexpected is used by exhaustive switches on the sealed interfaces.
func unexpected(v any) string {
	return fmt.Sprintf("ast: unexpected variant %T", v)
}
