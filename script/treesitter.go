package script

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/vcrobe/lumin/diagnostic"
)

// TreeSitterParser builds declaration trees with the tree-sitter TypeScript
// grammar. It is safe for concurrent use; each call creates its own parser.
type TreeSitterParser struct{}

// NewTreeSitterParser creates a TreeSitterParser.
func NewTreeSitterParser() *TreeSitterParser {
	return &TreeSitterParser{}
}

// ParseModule parses src. When the tree contains an error, the first ERROR
// or MISSING node in document order is reported as a *SyntaxError.
func (p *TreeSitterParser) ParseModule(ctx context.Context, src string) (*Module, error) {
	content := []byte(src)

	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("tree-sitter returned nil root node")
	}
	if root.HasError() {
		return nil, firstSyntaxError(root, content)
	}

	b := &treeBuilder{content: content}
	mod := &Module{src: src}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if item, ok := b.item(root.NamedChild(i)); ok {
			mod.Items = append(mod.Items, item)
		}
	}
	return mod, nil
}

// firstSyntaxError locates the first ERROR or MISSING node depth-first.
func firstSyntaxError(root *sitter.Node, content []byte) *SyntaxError {
	var found *sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if found != nil || n == nil {
			return
		}
		if n.IsError() || n.IsMissing() {
			found = n
			return
		}
		if !n.HasError() {
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	if found == nil {
		return &SyntaxError{Message: "invalid script", Range: nodeRange(root)}
	}

	r := nodeRange(found)
	if found.IsMissing() {
		return &SyntaxError{Message: fmt.Sprintf("missing %s", found.Type()), Range: r}
	}
	snippet := strings.TrimSpace(found.Content(content))
	if i := strings.IndexByte(snippet, '\n'); i >= 0 {
		snippet = snippet[:i]
	}
	if len(snippet) > 40 {
		snippet = snippet[:40] + "..."
	}
	if snippet == "" {
		return &SyntaxError{Message: "unexpected end of input", Range: r}
	}
	return &SyntaxError{Message: fmt.Sprintf("unexpected %q", snippet), Range: r}
}

type treeBuilder struct {
	content []byte
}

func nodeRange(n *sitter.Node) diagnostic.Range {
	return diagnostic.Range{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func (b *treeBuilder) text(n *sitter.Node) string {
	return string(b.content[n.StartByte():n.EndByte()])
}

func (b *treeBuilder) item(n *sitter.Node) (Item, bool) {
	switch n.Type() {
	case "comment":
		return Item{}, false

	case "import_statement":
		item := Item{Kind: ItemImport, Range: nodeRange(n)}
		if src := n.ChildByFieldName("source"); src != nil {
			item.Source = b.stringValue(src)
		}
		return item, true

	case "lexical_declaration", "variable_declaration":
		return b.variable(n, nodeRange(n), false), true

	case "export_statement":
		if decl := n.ChildByFieldName("declaration"); decl != nil {
			switch decl.Type() {
			case "lexical_declaration", "variable_declaration":
				return b.variable(decl, nodeRange(n), true), true
			}
		}
	}
	return Item{Kind: ItemOther, Range: nodeRange(n)}, true
}

func (b *treeBuilder) variable(n *sitter.Node, r diagnostic.Range, exported bool) Item {
	item := Item{Kind: ItemVariable, Range: r, Exported: exported}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "const", "let", "var":
			item.Keyword = child.Type()
		case "variable_declarator":
			item.Declarators = append(item.Declarators, b.declarator(child))
		}
	}
	return item
}

func (b *treeBuilder) declarator(n *sitter.Node) Declarator {
	d := Declarator{Range: nodeRange(n)}
	if name := n.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
		d.Name = b.text(name)
	}
	if value := n.ChildByFieldName("value"); value != nil {
		d.Init = b.expr(value)
	}
	return d
}

// expr converts an initializer. Range covers the node as written, including
// any unwrapped type assertion.
func (b *treeBuilder) expr(n *sitter.Node) *Expr {
	e := &Expr{Kind: ExprOther, Range: nodeRange(n)}
	n = unwrap(n)

	switch n.Type() {
	case "call_expression":
		e.Kind = ExprCall
		if fn := n.ChildByFieldName("function"); fn != nil {
			e.Callee = b.text(fn)
		}
		if args := n.ChildByFieldName("arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				arg := args.NamedChild(i)
				if arg.Type() == "comment" {
					continue
				}
				e.Args = append(e.Args, b.expr(arg))
			}
		}

	case "object":
		e.Kind = ExprObject
		for i := 0; i < int(n.NamedChildCount()); i++ {
			member := n.NamedChild(i)
			if member.Type() != "pair" {
				continue
			}
			key, value := member.ChildByFieldName("key"), member.ChildByFieldName("value")
			if key == nil || value == nil {
				continue
			}
			name, ok := b.propertyKey(key)
			if !ok {
				continue
			}
			e.Props = append(e.Props, Property{Key: name, Value: b.expr(value)})
		}

	case "array":
		e.Kind = ExprArray
		for i := 0; i < int(n.NamedChildCount()); i++ {
			el := n.NamedChild(i)
			if el.Type() == "comment" {
				continue
			}
			e.Elems = append(e.Elems, b.expr(el))
		}

	case "string":
		e.Kind = ExprString
		e.Value = b.stringValue(n)

	case "true", "false":
		e.Kind = ExprBool
		e.Value = n.Type()
	}
	return e
}

// unwrap strips type assertions and parentheses around an expression.
func unwrap(n *sitter.Node) *sitter.Node {
	for {
		switch n.Type() {
		case "as_expression", "satisfies_expression", "non_null_expression", "parenthesized_expression":
			if n.NamedChildCount() == 0 {
				return n
			}
			n = n.NamedChild(0)
		default:
			return n
		}
	}
}

func (b *treeBuilder) propertyKey(key *sitter.Node) (string, bool) {
	switch key.Type() {
	case "property_identifier", "identifier", "number":
		return b.text(key), true
	case "string":
		return b.stringValue(key), true
	}
	return "", false
}

// stringValue decodes a string literal node. Unknown escapes keep their
// source text.
func (b *treeBuilder) stringValue(n *sitter.Node) string {
	if n.Type() != "string" {
		return strings.Trim(b.text(n), "\"'`")
	}

	var sb strings.Builder
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "string_fragment":
			sb.WriteString(b.text(child))
		case "escape_sequence":
			sb.WriteString(decodeEscape(b.text(child)))
		}
	}
	return sb.String()
}

func decodeEscape(esc string) string {
	switch esc {
	case `\'`, `\"`, "\\`":
		return esc[1:]
	}
	value, _, tail, err := strconv.UnquoteChar(esc, 0)
	if err != nil || tail != "" {
		// Line continuations and \u{...} are not decoded by strconv.
		if strings.HasPrefix(esc, "\\\n") || strings.HasPrefix(esc, "\\\r") {
			return ""
		}
		return esc
	}
	return string(value)
}
