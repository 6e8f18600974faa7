package parser

import (
	"strings"
	"unicode"

	"github.com/vcrobe/lumin/ast"
	"github.com/vcrobe/lumin/diagnostic"
)

// voidElements close implicitly; a redundant matching close tag is consumed.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// markupParser is a recursive-descent parser over src[pos:end]. Offsets are
// absolute in src, so spans need no rebasing.
type markupParser struct {
	src string
	pos int
	end int
}

// terminator describes what ends a node sequence: the close tag of an open
// element, or a '}' for brace-delimited bodies.
type terminator struct {
	tag      string
	tagRange diagnostic.Range
	brace    bool
}

func parseTemplateRange(src string, start, end int) ([]ast.Node, error) {
	p := &markupParser{src: src[:end], pos: start, end: end}
	return p.parseNodes(terminator{})
}

func (p *markupParser) eof() bool { return p.pos >= p.end }

func (p *markupParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *markupParser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *markupParser) skipSpace() {
	for !p.eof() && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *markupParser) expect(s string) error {
	if !p.hasPrefix(s) {
		return templateErrorf(p.pos, min(p.pos+1, p.end), "expected '%s'", s)
	}
	p.pos += len(s)
	return nil
}

// keyword consumes kw when it appears at pos as a whole word.
func (p *markupParser) keyword(kw string) bool {
	if !p.hasPrefix(kw) {
		return false
	}
	after := p.pos + len(kw)
	if after < p.end && isIdentByte(p.src[after]) {
		return false
	}
	p.pos = after
	return true
}

// parseNodes parses nodes until EOF, the terminator's close tag or, for
// brace bodies, an unconsumed '}'.
func (p *markupParser) parseNodes(term terminator) ([]ast.Node, error) {
	var nodes []ast.Node

	for !p.eof() {
		switch {
		case term.brace && p.peek() == '}':
			return nodes, nil

		case p.hasPrefix("<!--"):
			if err := p.skipComment(); err != nil {
				return nil, err
			}

		case p.hasPrefix("</"):
			return nodes, p.parseCloseTag(term)

		case p.peek() == '<':
			el, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, el)

		case p.hasPrefix("@{"):
			cf, err := p.parseControlFlow()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, cf)

		case p.peek() == '{':
			if p.atSlot() {
				slot, err := p.parseSlot()
				if err != nil {
					return nil, err
				}
				nodes = append(nodes, slot)
				continue
			}
			expr, err := p.parseBracedExpr()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &ast.Expr{JsExpr: expr})

		default:
			if text := p.parseText(term.brace, false); text != nil {
				nodes = append(nodes, text)
			}
		}
	}

	switch {
	case term.tag != "":
		return nil, templateErrorf(term.tagRange.Start, term.tagRange.End, "unclosed tag <%s>", term.tag)
	case term.brace:
		return nil, templateErrorf(p.pos, p.pos, "expected '}' before end of template")
	}
	return nodes, nil
}

// parseCloseTag consumes `</name>` and checks it against the open element.
// It returns nil when the tag closes the current element.
func (p *markupParser) parseCloseTag(term terminator) error {
	start := p.pos
	p.pos += 2
	name, _, err := p.parseName(isTagNameByte, "expected tag name")
	if err != nil {
		return err
	}
	p.skipSpace()
	if err := p.expect(">"); err != nil {
		return err
	}

	if term.tag == "" {
		return templateErrorf(start, p.pos, "unexpected closing tag </%s>", name)
	}
	if name != term.tag {
		return templateErrorf(start, p.pos, "mismatched closing tag </%s>; expected </%s>", name, term.tag)
	}
	return nil
}

// parseText consumes a maximal text run. In branch mode the run also stops
// before a whole-word `else` and is right-trimmed. Empty runs yield nil.
func (p *markupParser) parseText(stopAtBrace, branch bool) *ast.Text {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if c == '<' || c == '{' || (c == '@' && p.hasPrefix("@{")) || (stopAtBrace && c == '}') {
			break
		}
		if branch && p.atElseKeyword() {
			break
		}
		p.pos++
	}

	end := p.pos
	if branch {
		end = start + len(strings.TrimRightFunc(p.src[start:end], unicode.IsSpace))
	}
	if end == start {
		return nil
	}
	return &ast.Text{Value: p.src[start:end], Range: diagnostic.Range{Start: start, End: end}}
}

func (p *markupParser) atElseKeyword() bool {
	if p.pos > 0 && isIdentByte(p.src[p.pos-1]) {
		return false
	}
	save := p.pos
	ok := p.keyword("else")
	p.pos = save
	return ok
}

func (p *markupParser) skipComment() error {
	start := p.pos
	rel := strings.Index(p.src[p.pos+4:], "-->")
	if rel < 0 {
		return templateErrorf(start, p.end, "unterminated <!-- comment")
	}
	p.pos += 4 + rel + 3
	return nil
}

func (p *markupParser) parseElement() (*ast.Element, error) {
	start := p.pos
	p.pos++ // '<'

	name, nameRange, err := p.parseName(isTagNameByte, "expected tag name")
	if err != nil {
		return nil, err
	}
	attrs, err := p.parseAttributes(name)
	if err != nil {
		return nil, err
	}

	el := &ast.Element{TagName: name, TagRange: nameRange, Attributes: attrs}

	if p.hasPrefix("/>") {
		p.pos += 2
		el.SelfClosing = true
		el.Range = diagnostic.Range{Start: start, End: p.pos}
		return el, nil
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}

	if !ast.IsComponentTag(name) && voidElements[strings.ToLower(name)] {
		el.SelfClosing = true
		if closeTag := "</" + name + ">"; p.hasPrefix(closeTag) {
			p.pos += len(closeTag)
		}
		el.Range = diagnostic.Range{Start: start, End: p.pos}
		return el, nil
	}

	children, err := p.parseNodes(terminator{tag: name, tagRange: diagnostic.Range{Start: start, End: nameRange.End}})
	if err != nil {
		return nil, err
	}
	el.Children = children
	el.Range = diagnostic.Range{Start: start, End: p.pos}
	return el, nil
}

func (p *markupParser) parseName(valid func(byte) bool, what string) (string, diagnostic.Range, error) {
	start := p.pos
	for !p.eof() && valid(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", diagnostic.Range{}, templateErrorf(start, min(start+1, p.end), "%s", what)
	}
	return p.src[start:p.pos], diagnostic.Range{Start: start, End: p.pos}, nil
}

func (p *markupParser) parseAttributes(tag string) ([]ast.Attribute, error) {
	var attrs []ast.Attribute

	for {
		p.skipSpace()
		if p.eof() {
			return nil, templateErrorf(p.pos, p.pos, "unexpected end of input while parsing tag <%s>", tag)
		}
		if p.peek() == '>' || p.hasPrefix("/>") {
			return attrs, nil
		}

		start := p.pos
		name, _, err := p.parseName(isAttrNameByte, "expected attribute name")
		if err != nil {
			return nil, err
		}
		p.skipSpace()

		if p.peek() != '=' {
			attrs = append(attrs, &ast.StaticAttr{
				Name:  name,
				Value: "true",
				Range: diagnostic.Range{Start: start, End: p.pos},
			})
			continue
		}
		p.pos++
		p.skipSpace()

		switch p.peek() {
		case '"', '\'':
			value, err := p.parseQuoted(p.peek())
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, &ast.StaticAttr{Name: name, Value: value, Range: diagnostic.Range{Start: start, End: p.pos}})

		case '{':
			expr, err := p.parseBracedExpr()
			if err != nil {
				return nil, err
			}
			attr, err := dynamicAttribute(name, expr, diagnostic.Range{Start: start, End: p.pos})
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, attr)

		default:
			return nil, templateErrorf(p.pos, min(p.pos+1, p.end), "invalid attribute value for '%s'", name)
		}
	}
}

// dynamicAttribute picks the attribute kind for a `name={expr}` pair.
func dynamicAttribute(name string, expr ast.JsExpr, rng diagnostic.Range) (ast.Attribute, error) {
	if prop, ok := strings.CutPrefix(name, "bind:"); ok {
		if prop == "" {
			return nil, templateErrorf(rng.Start, rng.End, "bind: attribute requires a property name")
		}
		return &ast.BindAttr{Property: prop, Expr: expr, Range: rng}, nil
	}
	if len(name) > 2 && strings.HasPrefix(name, "on") {
		return &ast.EventHandlerAttr{Name: name, Expr: expr, Range: rng}, nil
	}
	return &ast.DynamicAttr{Name: name, Expr: expr, Range: rng}, nil
}

// parseQuoted reads a quoted attribute value. Backslash escapes the next
// byte; `\\` and an escaped quote are unescaped, other escapes are kept.
func (p *markupParser) parseQuoted(quote byte) (string, error) {
	open := p.pos
	p.pos++

	var b strings.Builder
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\' && p.pos+1 < p.end:
			next := p.src[p.pos+1]
			if next != quote && next != '\\' {
				b.WriteByte(c)
			}
			b.WriteByte(next)
			p.pos += 2
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", templateErrorf(open, p.pos, "unterminated string literal")
}

// parseBracedExpr reads `{ expr }` tracking brace depth and quote state.
func (p *markupParser) parseBracedExpr() (ast.JsExpr, error) {
	open := p.pos
	p.pos++

	s := lexScanner{mode: exprMode}
	depth := 1
	for !p.eof() {
		if s.inCode() {
			switch p.src[p.pos] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					closeAt := p.pos
					p.pos++
					return trimmedExpr(p.src, open+1, closeAt, "empty {} expression in template")
				}
			}
		}
		p.pos += s.advance(p.src, p.pos)
	}
	return ast.JsExpr{}, templateErrorf(open, p.pos, "'{' expression without matching '}' in template")
}

// trimmedExpr trims src[start:end] and narrows the range to the trimmed text.
func trimmedExpr(src string, start, end int, emptyMsg string) (ast.JsExpr, error) {
	inner := src[start:end]
	code := strings.TrimSpace(inner)
	if code == "" {
		return ast.JsExpr{}, templateErrorf(start, end, "%s", emptyMsg)
	}
	lead := len(inner) - len(strings.TrimLeftFunc(inner, unicode.IsSpace))
	return ast.JsExpr{
		Code:  code,
		Range: diagnostic.Range{Start: start + lead, End: start + lead + len(code)},
	}, nil
}

func isTagNameByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-'
}

func isAttrNameByte(c byte) bool {
	return isTagNameByte(c) || c == ':'
}

func isIdentByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '$'
}
