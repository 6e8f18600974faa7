package parser

import (
	"strings"

	"github.com/vcrobe/lumin/ast"
	"github.com/vcrobe/lumin/diagnostic"
)

// parseControlFlow parses `@{if ...}` or `@{for ...}` starting at "@{".
func (p *markupParser) parseControlFlow() (*ast.ControlFlow, error) {
	start := p.pos
	p.pos += 2
	p.skipSpace()

	var block ast.ControlFlowBlock
	var err error
	switch {
	case p.keyword("if"):
		block, err = p.parseIf()
	case p.keyword("for"):
		block, err = p.parseFor()
	default:
		return nil, templateErrorf(start, min(p.pos+1, p.end), "expected 'if' or 'for' after '@{'")
	}
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.peek() != '}' {
		return nil, templateErrorf(start, p.pos, "expected '}' to close control-flow block")
	}
	p.pos++
	return &ast.ControlFlow{Block: block, Range: diagnostic.Range{Start: start, End: p.pos}}, nil
}

func (p *markupParser) parseIf() (*ast.IfBlock, error) {
	cond, err := p.parseCondition("if")
	if err != nil {
		return nil, err
	}
	then, err := p.parseBranch("if")
	if err != nil {
		return nil, err
	}
	block := &ast.IfBlock{Condition: cond, Then: then}

	for {
		p.skipSpace()
		if !p.keyword("else") {
			return block, nil
		}
		p.skipSpace()

		if p.keyword("if") {
			cond, err := p.parseCondition("else if")
			if err != nil {
				return nil, err
			}
			branch, err := p.parseBranch("else if")
			if err != nil {
				return nil, err
			}
			block.ElseIfs = append(block.ElseIfs, ast.ElseIf{Condition: cond, Branch: branch})
			continue
		}

		branch, err := p.parseBranch("else")
		if err != nil {
			return nil, err
		}
		block.Else = branch
		block.HasElse = true
		return block, nil
	}
}

func (p *markupParser) parseCondition(what string) (ast.JsExpr, error) {
	p.skipSpace()
	open, closeAt, _, err := p.parseParens(what)
	if err != nil {
		return ast.JsExpr{}, err
	}
	return trimmedExpr(p.src, open+1, closeAt, "empty condition in @{"+what+"}")
}

func (p *markupParser) parseFor() (*ast.ForBlock, error) {
	p.skipSpace()
	open, closeAt, cuts, err := p.parseParens("for")
	if err != nil {
		return nil, err
	}

	bounds := append([]int{open}, cuts...)
	bounds = append(bounds, closeAt)

	params, err := trimmedExpr(p.src, bounds[0]+1, bounds[1], "empty clause in @{for}")
	if err != nil {
		return nil, err
	}
	block := &ast.ForBlock{Params: params.Code, ParamsRange: params.Range}

	for i := 1; i+1 < len(bounds); i++ {
		segStart, segEnd := bounds[i]+1, bounds[i+1]
		if strings.TrimSpace(p.src[segStart:segEnd]) == "" {
			continue
		}
		key, err := p.parseKeySegment(segStart, segEnd)
		if err != nil {
			return nil, err
		}
		if block.Key != nil {
			return nil, templateErrorf(segStart, segEnd, "duplicate key in @{for} clause")
		}
		block.Key = &key
	}

	body, err := p.parseBranch("for")
	if err != nil {
		return nil, err
	}
	block.Body = body
	return block, nil
}

// parseKeySegment parses `key=expr` (spaces allowed around '=') within
// src[start:end].
func (p *markupParser) parseKeySegment(start, end int) (ast.JsExpr, error) {
	off := start
	for off < end && isSpace(p.src[off]) {
		off++
	}
	seg := p.src[off:end]
	rest, ok := strings.CutPrefix(seg, "key")
	if ok {
		trimmed := strings.TrimLeft(rest, " \t\r\n")
		if strings.HasPrefix(trimmed, "=") {
			exprStart := end - len(trimmed) + 1
			return trimmedExpr(p.src, exprStart, end, "empty key expression in @{for}")
		}
	}
	return ast.JsExpr{}, templateErrorf(start, end, "unexpected segment in @{for} clause; expected key=<expr>")
}

// parseParens scans a parenthesized clause starting at '(' with its own
// depth counter. It returns the offsets of the open and close parens and
// of every ';' at depth one.
func (p *markupParser) parseParens(what string) (int, int, []int, error) {
	if p.peek() != '(' {
		return 0, 0, nil, templateErrorf(p.pos, min(p.pos+1, p.end), "expected '(' after @{%s", what)
	}
	open := p.pos
	p.pos++

	s := lexScanner{mode: exprMode}
	depth := 1
	var cuts []int
	for !p.eof() {
		if s.inCode() {
			switch p.src[p.pos] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					closeAt := p.pos
					p.pos++
					return open, closeAt, cuts, nil
				}
			case ';':
				if depth == 1 {
					cuts = append(cuts, p.pos)
				}
			}
		}
		p.pos += s.advance(p.src, p.pos)
	}
	return 0, 0, nil, templateErrorf(open, p.pos, "unclosed '(' in @{%s}", what)
}

// parseBranch parses `{ nodes }` or a single element, slot, nested
// control-flow block or text run.
func (p *markupParser) parseBranch(what string) ([]ast.Node, error) {
	p.skipSpace()

	switch {
	case p.peek() == '{' && !p.atSlot():
		open := p.pos
		p.pos++
		nodes, err := p.parseNodes(terminator{brace: true})
		if err != nil {
			return nil, err
		}
		if p.peek() != '}' {
			return nil, templateErrorf(open, p.pos, "unclosed '{' in @{%s} branch", what)
		}
		p.pos++
		return nodes, nil

	case p.peek() == '{':
		slot, err := p.parseSlot()
		if err != nil {
			return nil, err
		}
		return []ast.Node{slot}, nil

	case p.hasPrefix("@{"):
		cf, err := p.parseControlFlow()
		if err != nil {
			return nil, err
		}
		return []ast.Node{cf}, nil

	case p.peek() == '<' && !p.hasPrefix("</"):
		el, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		return []ast.Node{el}, nil
	}

	if text := p.parseText(true, true); text != nil {
		return []ast.Node{text}, nil
	}
	return nil, templateErrorf(p.pos, min(p.pos+1, p.end), "expected branch body in @{%s}", what)
}

const slotKeyword = "@slot"

// atSlot reports whether the '{' at pos opens a `{@slot ...}` insertion.
func (p *markupParser) atSlot() bool {
	i := p.pos + 1
	for i < p.end && isSpace(p.src[i]) {
		i++
	}
	if !strings.HasPrefix(p.src[i:], slotKeyword) {
		return false
	}
	after := i + len(slotKeyword)
	return after >= p.end || !isTagNameByte(p.src[after])
}

func (p *markupParser) parseSlot() (*ast.Slot, error) {
	start := p.pos
	p.pos++
	p.skipSpace()
	p.pos += len(slotKeyword)
	p.skipSpace()

	slot := &ast.Slot{}
	if isTagNameByte(p.peek()) {
		name, _, err := p.parseName(isTagNameByte, "expected slot name")
		if err != nil {
			return nil, err
		}
		slot.Name = name
		p.skipSpace()
	}

	if p.hasPrefix("??") {
		p.pos += 2
		p.skipSpace()
		fallback, err := p.parseNodes(terminator{brace: true})
		if err != nil {
			return nil, err
		}
		slot.Fallback = fallback
	}

	if p.peek() != '}' {
		return nil, templateErrorf(start, min(p.pos+1, p.end), "expected '}' to close {@slot}")
	}
	p.pos++
	slot.Range = diagnostic.Range{Start: start, End: p.pos}
	return slot, nil
}
