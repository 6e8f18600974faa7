package compiler

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html/atom"

	"github.com/vcrobe/lumin/ast"
	"github.com/vcrobe/lumin/diagnostic"
	"github.com/vcrobe/lumin/script"
)

// collectExpressionIssues validates every embedded expression in the
// template. A failing expression does not stop the others from being checked.
func (b *build) collectExpressionIssues(nodes []ast.Node) []diagnostic.Issue {
	var issues []diagnostic.Issue
	ast.Expressions(nodes, func(e ast.JsExpr) {
		found := b.snippets.Validate(e.Code, script.SnippetExpression)
		issues = append(issues, diagnostic.Remap(found, e.Range.Start)...)
	})
	return issues
}

// validateComponentTags reports component tags that no header import binds.
// Each occurrence is reported at its tag, with a suggestion when an imported
// name is a likely typo.
func validateComponentTags(file *ast.ComponentFile) []diagnostic.Issue {
	imported := make(map[string]bool)
	var names []string
	for _, imp := range file.Imports {
		for _, name := range imp.LocalNames() {
			if !imported[name] {
				imported[name] = true
				names = append(names, name)
			}
		}
	}

	var issues []diagnostic.Issue
	ast.Inspect(file.Template, func(n ast.Node) bool {
		el, ok := n.(*ast.Element)
		if !ok || !ast.IsComponentTag(el.TagName) || imported[el.TagName] {
			return true
		}

		var msg strings.Builder
		fmt.Fprintf(&msg, "Cannot find component '%s'. Import it in the --- imports block.", el.TagName)
		if similar := findSimilarComponents(el.TagName, names); len(similar) > 0 {
			fmt.Fprintf(&msg, " Did you mean '%s'?", strings.Join(similar, "', '"))
		}
		issues = append(issues, diagnostic.Issue{
			Severity: diagnostic.Error,
			Message:  msg.String(),
			Range:    el.TagRange,
		})
		return true
	})
	return issues
}

// validateElementNames warns about lowercase tags that are neither known
// HTML elements nor custom elements. SVG and MathML subtrees are skipped.
func validateElementNames(nodes []ast.Node) []diagnostic.Issue {
	var issues []diagnostic.Issue
	ast.Inspect(nodes, func(n ast.Node) bool {
		el, ok := n.(*ast.Element)
		if !ok || ast.IsComponentTag(el.TagName) {
			return true
		}
		a := atom.Lookup([]byte(el.TagName))
		if a == atom.Svg || a == atom.Math {
			return false
		}
		if a == 0 && !strings.Contains(el.TagName, "-") {
			issues = append(issues, diagnostic.Warningf(el.TagRange, "Unknown element <%s>", el.TagName))
		}
		return true
	})
	return issues
}

// editDistance is the Levenshtein distance between a and b, counted in runes.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	row := make([]int, len(ra)+1)
	for j := range row {
		row[j] = j
	}
	for i, cb := range rb {
		diag := row[0]
		row[0] = i + 1
		for j, ca := range ra {
			above := row[j+1]
			cost := 1
			if ca == cb {
				cost = 0
			}
			row[j+1] = min(row[j]+1, above+1, diag+cost)
			diag = above
		}
	}
	return row[len(ra)]
}

// findSimilarComponents returns up to three candidates within edit distance
// 2 of typedName, closest first. Comparison is case-insensitive.
func findSimilarComponents(typedName string, candidates []string) []string {
	const threshold = 2
	const maxSuggestions = 3

	type suggestion struct {
		name     string
		distance int
	}

	var suggestions []suggestion
	for _, name := range candidates {
		dist := editDistance(strings.ToLower(typedName), strings.ToLower(name))
		if dist <= threshold {
			suggestions = append(suggestions, suggestion{name, dist})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].distance < suggestions[j].distance
	})

	var result []string
	for i := 0; i < len(suggestions) && i < maxSuggestions; i++ {
		result = append(result, suggestions[i].name)
	}
	return result
}
