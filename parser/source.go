// Package parser splits a component source into its header, script, style
// and template regions and parses the template markup into an ast tree.
// Every error and node carries an absolute byte range into the source.
package parser

import (
	"strings"

	"github.com/vcrobe/lumin/ast"
	"github.com/vcrobe/lumin/diagnostic"
)

// DefaultExtension is the component file extension.
const DefaultExtension = ".lumin"

// ScriptClassifier turns raw script block content into a ScriptBlock.
// base is the absolute offset of code in the file; returned issues are
// absolute. A nil head means no head metadata was declared.
type ScriptClassifier interface {
	Classify(code string, base int) (*ast.ScriptBlock, *ast.HeadMetadata, []diagnostic.Issue)
}

// Parser parses component sources. The zero value is not usable; call New.
type Parser struct {
	ext        string
	classifier ScriptClassifier
}

// Option configures a Parser.
type Option func(*Parser)

// WithExtension sets the component file extension required in header imports.
func WithExtension(ext string) Option {
	return func(p *Parser) {
		if ext != "" {
			p.ext = ext
		}
	}
}

// WithClassifier sets the script classifier. Without one, script blocks keep
// their raw code and no props or head metadata are extracted.
func WithClassifier(c ScriptClassifier) Option {
	return func(p *Parser) { p.classifier = c }
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{ext: DefaultExtension}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extension returns the configured component file extension.
func (p *Parser) Extension() string { return p.ext }

// ParseComponent parses a whole component source. A non-nil error is a fatal
// *Error; issues are non-fatal findings from script classification.
func (p *Parser) ParseComponent(src string) (*ast.ComponentFile, []diagnostic.Issue, error) {
	file := &ast.ComponentFile{}
	var issues []diagnostic.Issue

	pos := skipSpaceFrom(src, 0)

	// 1) Optional imports block, only at the very start.
	if strings.HasPrefix(src[pos:], headerDelim) {
		imports, next, err := parseHeader(src, pos, p.ext)
		if err != nil {
			return nil, nil, err
		}
		file.Imports = imports
		pos = next
	}

	// 2) Script, style and template regions in any order.
	for {
		pos = skipSpaceFrom(src, pos)
		if pos >= len(src) {
			break
		}

		if contentStart, ok, err := matchBlockOpen(src, pos, "script"); err != nil {
			return nil, nil, err
		} else if ok {
			if file.Script != nil {
				return nil, nil, syntaxErrorf(diagnostic.Range{Start: pos, End: contentStart},
					"only one <script> block is allowed")
			}
			end, err := extractBlock(src, pos, contentStart, "script", scriptMode)
			if err != nil {
				return nil, nil, err
			}
			script, head, scriptIssues := p.classify(src[contentStart:end], contentStart)
			file.Script = script
			file.Head = head
			issues = append(issues, scriptIssues...)
			pos = end + len("</script>")
			continue
		}

		if contentStart, ok, err := matchBlockOpen(src, pos, "style"); err != nil {
			return nil, nil, err
		} else if ok {
			if file.Style != nil {
				return nil, nil, syntaxErrorf(diagnostic.Range{Start: pos, End: contentStart},
					"only one <style> block is allowed")
			}
			end, err := extractBlock(src, pos, contentStart, "style", styleMode)
			if err != nil {
				return nil, nil, err
			}
			file.Style = &ast.StyleBlock{
				Code:  src[contentStart:end],
				Range: diagnostic.Range{Start: contentStart, End: end},
			}
			pos = end + len("</style>")
			continue
		}

		// Template text runs up to the next block opener or EOF.
		segEnd := nextBlockOpen(src, pos)
		trimmed := pos + len(strings.TrimRightFunc(src[pos:segEnd], isSpaceRune))
		nodes, err := parseTemplateRange(src, pos, trimmed)
		if err != nil {
			return nil, nil, err
		}
		file.Template = append(file.Template, nodes...)
		pos = segEnd
	}

	file.DefinedSlots = ast.SlotNames(file.Template)
	return file, issues, nil
}

func (p *Parser) classify(code string, base int) (*ast.ScriptBlock, *ast.HeadMetadata, []diagnostic.Issue) {
	if p.classifier == nil {
		return &ast.ScriptBlock{
			Code:         code,
			OriginalCode: code,
			Range:        diagnostic.Range{Start: base, End: base + len(code)},
		}, nil, nil
	}
	return p.classifier.Classify(code, base)
}

// ParseTemplate parses src[start:] as template markup. It is the entry point
// for callers that already isolated a template region.
func ParseTemplate(src string, start int) ([]ast.Node, error) {
	return parseTemplateRange(src, start, len(src))
}

// matchBlockOpen reports whether `<name>` or `<name attrs...>` starts at pos
// and returns the offset just past its '>'.
func matchBlockOpen(src string, pos int, name string) (int, bool, error) {
	open := "<" + name
	if !strings.HasPrefix(src[pos:], open) {
		return 0, false, nil
	}
	after := pos + len(open)
	if after < len(src) && src[after] != '>' && !isSpace(src[after]) {
		return 0, false, nil
	}
	gt := strings.IndexByte(src[after:], '>')
	if gt < 0 {
		return 0, false, syntaxErrorf(diagnostic.Range{Start: pos, End: len(src)},
			"unterminated <%s> opening tag", name)
	}
	return after + gt + 1, true, nil
}

// extractBlock finds the `</name>` that closes a block whose content starts at
// contentStart, ignoring closing-tag text inside strings and comments.
func extractBlock(src string, blockStart, contentStart int, name string, mode scanMode) (int, error) {
	end := findUnquoted(src, contentStart, "</"+name+">", mode)
	if end < 0 {
		return 0, syntaxErrorf(diagnostic.Range{Start: blockStart, End: len(src)},
			"<%s> without closing </%s>", name, name)
	}
	return end, nil
}

// nextBlockOpen returns the offset of the next top-level script or style
// opener after pos, or len(src). Openers inside {expressions} and markup
// comments do not count. `@{` blocks and `{@slot` fallbacks hold markup and
// are scanned as markup.
func nextBlockOpen(src string, pos int) int {
	var s lexScanner
	depth := 0
	for i := pos; i < len(src); {
		if depth > 0 {
			if s.inCode() {
				switch src[i] {
				case '{':
					depth++
				case '}':
					depth--
				}
			}
			i += s.advance(src, i)
			continue
		}

		switch {
		case src[i] == '{' && !strings.HasPrefix(src[i:], "{@") && (i == 0 || src[i-1] != '@'):
			depth = 1
			s = lexScanner{mode: exprMode}
		case strings.HasPrefix(src[i:], "<!--"):
			rel := strings.Index(src[i+4:], "-->")
			if rel < 0 {
				return len(src)
			}
			i += 4 + rel + 3
			continue
		case src[i] == '<':
			if _, ok, _ := matchBlockOpen(src, i, "script"); ok {
				return i
			}
			if _, ok, _ := matchBlockOpen(src, i, "style"); ok {
				return i
			}
		}
		i++
	}
	return len(src)
}

func skipSpaceFrom(src string, pos int) int {
	for pos < len(src) && isSpace(src[pos]) {
		pos++
	}
	return pos
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isSpaceRune(r rune) bool {
	return r < 0x80 && isSpace(byte(r))
}
