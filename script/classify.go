package script

import (
	"context"
	"errors"
	"strings"

	"github.com/vcrobe/lumin/ast"
	"github.com/vcrobe/lumin/diagnostic"
	"github.com/vcrobe/lumin/parser"
)

// ReactiveCallees maps recognized call initializers to prop kinds. The
// complete set of extracted top-level forms is:
//
//	<const|let|var> name = prop(<default>?)     Prop of kind KindProp
//	<const|let|var> name = signal(<default>?)   Prop of kind KindSignal
//	export const head = { ... }                 HeadMetadata
//
// The forms are matched with or without `export`, and in declarator lists
// (`let a = prop(1), b = 2`), where the other declarators are kept. Every
// other statement stays in the cleaned code.
var ReactiveCallees = map[string]ast.PropKind{
	"prop":   ast.KindProp,
	"signal": ast.KindSignal,
}

// HeadExport is the exported constant holding page metadata.
const HeadExport = "head"

// Eraser strips TypeScript type syntax.
type Eraser interface {
	EraseTypes(src string) (string, []diagnostic.Issue)
	EraseExpression(src string) (string, []diagnostic.Issue)
}

var _ parser.ScriptClassifier = (*Classifier)(nil)

// Classifier partitions script content into props, head metadata, plain
// imports and cleaned code.
type Classifier struct {
	ext    string
	parser StructuralParser
	eraser Eraser
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithStructuralParser replaces the tree-sitter parser.
func WithStructuralParser(p StructuralParser) ClassifierOption {
	return func(c *Classifier) { c.parser = p }
}

// WithEraser replaces the esbuild type eraser.
func WithEraser(e Eraser) ClassifierOption {
	return func(c *Classifier) { c.eraser = e }
}

// NewClassifier creates a Classifier that rejects script imports of files
// ending in ext.
func NewClassifier(ext string, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		ext:    ext,
		parser: NewTreeSitterParser(),
		eraser: NewEsbuild(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify implements parser.ScriptClassifier. code is the raw block content
// and base its offset in the file. If the structural parse fails, the raw
// block is returned with one issue and nothing is classified.
func (c *Classifier) Classify(code string, base int) (*ast.ScriptBlock, *ast.HeadMetadata, []diagnostic.Issue) {
	block := &ast.ScriptBlock{
		Code:         code,
		OriginalCode: code,
		Range:        diagnostic.Range{Start: base, End: base + len(code)},
	}

	mod, err := c.parser.ParseModule(context.Background(), code)
	if err != nil {
		block.Malformed = true
		var serr *SyntaxError
		if errors.As(err, &serr) {
			return block, nil, []diagnostic.Issue{
				diagnostic.Errorf(serr.Range.Shift(base), "script syntax error: %s", serr.Message),
			}
		}
		return block, nil, []diagnostic.Issue{diagnostic.Errorf(block.Range, "%v", err)}
	}

	var (
		issues []diagnostic.Issue
		head   *ast.HeadMetadata
		cut    splicer
	)
	for _, item := range mod.Items {
		switch item.Kind {
		case ItemImport:
			r := item.Range.Shift(base)
			cut.replace(code, item.Range, "")
			if strings.HasSuffix(item.Source, c.ext) {
				issues = append(issues, diagnostic.Errorf(r,
					"Component imports (%s) are not allowed inside <script>. Use the --- imports block instead.", c.ext))
				continue
			}
			block.Imports = append(block.Imports, ast.ScriptImport{
				Code:   mod.Text(item.Range),
				Source: item.Source,
				Range:  r,
			})

		case ItemVariable:
			kept, found, changed := c.variable(mod, item, base, block, &issues)
			if found != nil {
				head = found
			}
			if changed {
				cut.replace(code, item.Range, kept)
			}
		}
	}

	block.Code = cut.finish(code)
	if strings.TrimSpace(block.Code) == "" {
		block.Code = ""
	}
	if block.Code != "" {
		// On failure ErasedCode stays empty; block validation reports the error.
		if erased, errs := c.eraser.EraseTypes(block.Code); len(errs) == 0 {
			block.ErasedCode = erased
		}
	}
	return block, head, issues
}

// splicer rebuilds source text with some ranges replaced, copying the text
// between them unchanged.
type splicer struct {
	b      strings.Builder
	cursor int
}

// replace substitutes src[r] with repl. An empty repl that leaves its line
// blank removes the whole line.
func (s *splicer) replace(src string, r diagnostic.Range, repl string) {
	start, end := r.Start, r.End
	if repl == "" {
		start, end = lineSpan(src, start, end)
	}
	s.b.WriteString(src[s.cursor:start])
	s.b.WriteString(repl)
	s.cursor = end
}

func (s *splicer) finish(src string) string {
	s.b.WriteString(src[s.cursor:])
	return s.b.String()
}

// lineSpan widens [start, end) to its full lines, trailing newline included,
// when only blanks surround it on those lines.
func lineSpan(src string, start, end int) (int, int) {
	lineStart := strings.LastIndexByte(src[:start], '\n') + 1
	if strings.TrimSpace(src[lineStart:start]) != "" {
		return start, end
	}
	lineEnd := len(src)
	if i := strings.IndexByte(src[end:], '\n'); i >= 0 {
		lineEnd = end + i + 1
	}
	if strings.TrimSpace(src[end:lineEnd]) != "" {
		return start, end
	}
	return lineStart, lineEnd
}

// variable extracts props, signals and head from one declaration. changed
// reports whether anything was extracted, in which case kept is the source
// to put in place of the declaration.
func (c *Classifier) variable(mod *Module, item Item, base int, block *ast.ScriptBlock, issues *[]diagnostic.Issue) (kept string, head *ast.HeadMetadata, changed bool) {
	var others []Declarator
	for _, d := range item.Declarators {
		if item.Exported && item.Keyword == "const" && d.Name == HeadExport {
			head = headMetadata(d.Init)
			continue
		}
		if kind, ok := reactiveKind(d); ok {
			block.Props = append(block.Props, c.prop(mod, d, kind, base, issues))
			continue
		}
		others = append(others, d)
	}

	switch {
	case len(others) == len(item.Declarators):
		return "", head, false
	case len(others) == 0:
		return "", head, true
	}

	var b strings.Builder
	if item.Exported {
		b.WriteString("export ")
	}
	b.WriteString(item.Keyword)
	b.WriteByte(' ')
	for i, d := range others {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(mod.Text(d.Range))
	}
	b.WriteByte(';')
	return b.String(), head, true
}

func reactiveKind(d Declarator) (ast.PropKind, bool) {
	if d.Name == "" || d.Init == nil || d.Init.Kind != ExprCall {
		return 0, false
	}
	kind, ok := ReactiveCallees[d.Init.Callee]
	return kind, ok
}

func (c *Classifier) prop(mod *Module, d Declarator, kind ast.PropKind, base int, issues *[]diagnostic.Issue) ast.Prop {
	p := ast.Prop{Name: d.Name, Kind: kind}
	if len(d.Init.Args) == 0 {
		return p
	}

	arg := d.Init.Args[0]
	p.OriginalDefaultValue = mod.Text(arg.Range)
	erased, errs := c.eraser.EraseExpression(p.OriginalDefaultValue)
	p.DefaultValue = erased
	*issues = append(*issues, diagnostic.Remap(errs, base+arg.Range.Start)...)
	return p
}

// headMetadata walks `export const head = {...}`. Non-object initializers
// yield nil.
func headMetadata(init *Expr) *ast.HeadMetadata {
	if init == nil || init.Kind != ExprObject {
		return nil
	}

	head := &ast.HeadMetadata{}
	for _, prop := range init.Props {
		switch prop.Key {
		case "title":
			if prop.Value.Kind == ExprString {
				head.Title = prop.Value.Value
				head.HasTitle = true
			}
		case "meta":
			head.Meta = headEntries(prop.Value)
		case "link":
			head.Link = headEntries(prop.Value)
		case "script":
			head.Script = headEntries(prop.Value)
		}
	}
	return head
}

// headEntries collects an array of object literals into string maps.
// String values are kept, booleans stringified, anything else dropped.
func headEntries(v *Expr) []map[string]string {
	if v.Kind != ExprArray {
		return nil
	}
	var out []map[string]string
	for _, el := range v.Elems {
		if el.Kind != ExprObject {
			continue
		}
		entry := make(map[string]string, len(el.Props))
		for _, p := range el.Props {
			switch p.Value.Kind {
			case ExprString, ExprBool:
				entry[p.Key] = p.Value.Value
			}
		}
		out = append(out, entry)
	}
	return out
}
