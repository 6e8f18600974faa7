package compiler

import (
	"reflect"
	"testing"

	"github.com/vcrobe/lumin/ast"
	"github.com/vcrobe/lumin/parser"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"Button", "Button", 0},
		{"Buton", "Button", 1},
		{"Card", "Cart", 1},
		{"kitten", "sitting", 3},
		{"Crème", "Creme", 1},
	}

	for _, tt := range tests {
		if got := editDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, expected %d", tt.a, tt.b, got, tt.want)
		}
		if got := editDistance(tt.b, tt.a); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, expected %d (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestFindSimilarComponents(t *testing.T) {
	// Arrange
	candidates := []string{"Header", "Button", "Buttons", "Footer", "Badge"}

	// Act
	got := findSimilarComponents("button", candidates)

	// Assert: case-insensitive, closest first, far names dropped
	want := []string{"Button", "Buttons"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if got := findSimilarComponents("Sidebar", candidates); got != nil {
		t.Errorf("Expected no suggestions, got %v", got)
	}
}

func TestCollectUsedComponents_WalksWholeTree(t *testing.T) {
	src := "<div><Card/>@{for (x of xs; key=x.id) { <Row/> }}</div>" +
		"@{if (a) <Card/> else <Empty/>}{@slot ?? <Fallback/>}<span>text</span>"
	nodes, err := parser.ParseTemplate(src, 0)
	if err != nil {
		t.Fatalf("ParseTemplate failed: %v", err)
	}

	got := collectUsedComponents(nodes)

	want := []string{"Card", "Empty", "Fallback", "Row"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestResolveDependencies_OneEdgePerFile(t *testing.T) {
	file := &ast.ComponentFile{
		Imports: []ast.ComponentImport{
			{
				Source: "./kit.lumin",
				Specifiers: []ast.ImportSpecifier{
					{Kind: ast.SpecifierNamed, Local: "Card"},
					{Kind: ast.SpecifierNamedAlias, Local: "Glyph", Imported: "Icon"},
				},
			},
			{
				Source:     "./Unused.lumin",
				Specifiers: []ast.ImportSpecifier{{Kind: ast.SpecifierDefault, Local: "Unused"}},
			},
		},
	}
	bindings := importBindings("/app/src/App.lumin", file)

	deps := resolveDependencies([]string{"Card", "Glyph", "Missing"}, bindings)

	if len(deps) != 1 {
		t.Fatalf("Expected 1 dependency, got %d: %+v", len(deps), deps)
	}
	if deps[0].Tag != "Card" || deps[0].Path != "/app/src/kit.lumin" {
		t.Errorf("Unexpected dependency %+v", deps[0])
	}
	if got := prunedImports(file, []string{"Card", "Glyph"}); !reflect.DeepEqual(got, []string{"Unused"}) {
		t.Errorf("Expected [Unused] pruned, got %v", got)
	}
}

func TestComponentName(t *testing.T) {
	if got := componentName("/a/b/Counter.lumin", ".lumin"); got != "Counter" {
		t.Errorf("Expected Counter, got %q", got)
	}
	if got := componentName("/a/b/Card.ui", ".lumin"); got != "Card" {
		t.Errorf("Expected Card, got %q", got)
	}
}
