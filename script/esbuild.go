package script

import (
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/vcrobe/lumin/diagnostic"
)

// SnippetKind selects how a snippet is parsed for validation.
type SnippetKind int

const (
	// SnippetModule is a whole script block.
	SnippetModule SnippetKind = iota
	// SnippetExpression is a single embedded template expression.
	SnippetExpression
)

func (k SnippetKind) String() string {
	if k == SnippetExpression {
		return "expression"
	}
	return "module"
}

// Prefix and suffix used to parse a snippet as one parenthesized
// expression. The newline keeps a trailing line comment from swallowing ')'.
const (
	exprOpen  = "("
	exprClose = "\n)"

	// valueBinding wraps a prop default so esbuild prints it back as an
	// initializer.
	valueBinding = "let __lumin_v = "
)

// Esbuild validates and type-erases TypeScript snippets with esbuild's
// transform API. It holds no state and is safe for concurrent use.
type Esbuild struct {
	loader api.Loader
}

// NewEsbuild creates an Esbuild for TypeScript input.
func NewEsbuild() *Esbuild {
	return &Esbuild{loader: api.LoaderTS}
}

func (e *Esbuild) transform(code string) api.TransformResult {
	return api.Transform(code, api.TransformOptions{
		Loader:     e.loader,
		Sourcefile: "<script>",
		LogLevel:   api.LogLevelSilent,
	})
}

// Validate reports esbuild errors for src. Issue ranges are relative to src.
func (e *Esbuild) Validate(src string, kind SnippetKind) []diagnostic.Issue {
	if kind == SnippetExpression {
		wrapped := exprOpen + src + exprClose
		res := e.transform(wrapped)
		return messageIssues(res.Errors, wrapped, len(exprOpen), len(src))
	}
	res := e.transform(src)
	return messageIssues(res.Errors, src, 0, len(src))
}

// EraseTypes returns src with type annotations removed. On failure it
// returns src unchanged together with the errors.
func (e *Esbuild) EraseTypes(src string) (string, []diagnostic.Issue) {
	res := e.transform(src)
	if len(res.Errors) > 0 {
		return src, messageIssues(res.Errors, src, 0, len(src))
	}
	return string(res.Code), nil
}

// EraseExpression type-erases a single expression, such as a prop default.
func (e *Esbuild) EraseExpression(src string) (string, []diagnostic.Issue) {
	prefix := valueBinding + exprOpen
	wrapped := prefix + src + exprClose + ";"
	res := e.transform(wrapped)
	if len(res.Errors) > 0 {
		return src, messageIssues(res.Errors, wrapped, len(prefix), len(src))
	}

	out := strings.TrimSpace(string(res.Code))
	out = strings.TrimPrefix(out, valueBinding)
	out = strings.TrimSuffix(out, ";")
	return out, nil
}

// messageIssues converts esbuild messages on wrapped into issues relative to
// the snippet that starts at shift and spans limit bytes.
func messageIssues(msgs []api.Message, wrapped string, shift, limit int) []diagnostic.Issue {
	if len(msgs) == 0 {
		return nil
	}
	ix := diagnostic.NewLineIndex(wrapped)

	issues := make([]diagnostic.Issue, 0, len(msgs))
	for _, m := range msgs {
		r := diagnostic.Range{Start: 0, End: limit}
		if loc := m.Location; loc != nil {
			start := ix.Offset(diagnostic.Location{Line: loc.Line, Col: loc.Column + 1}) - shift
			start = min(max(start, 0), limit)
			r = diagnostic.Range{Start: start, End: min(start+max(loc.Length, 0), limit)}
		}
		issues = append(issues, diagnostic.Errorf(r, "%s", m.Text))
	}
	return issues
}
