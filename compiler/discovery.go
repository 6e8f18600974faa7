package compiler

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/vcrobe/lumin/ast"
)

// collectUsedComponents walks the whole template, including control-flow
// branches and slot fallbacks, and returns the component tags it uses,
// sorted and deduplicated.
func collectUsedComponents(nodes []ast.Node) []string {
	seen := make(map[string]bool)
	ast.Inspect(nodes, func(n ast.Node) bool {
		if el, ok := n.(*ast.Element); ok && ast.IsComponentTag(el.TagName) {
			seen[el.TagName] = true
		}
		return true
	})

	used := make([]string, 0, len(seen))
	for tag := range seen {
		used = append(used, tag)
	}
	sort.Strings(used)
	return used
}

// importBindings maps every local name bound by the header to the file it
// imports, resolved against the importing file's directory.
func importBindings(path string, file *ast.ComponentFile) map[string]importBinding {
	dir := filepath.Dir(path)
	bindings := make(map[string]importBinding)
	for _, imp := range file.Imports {
		target := filepath.FromSlash(imp.Source)
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, target)
		}
		for _, name := range imp.LocalNames() {
			bindings[name] = importBinding{Path: target, Range: imp.Range}
		}
	}
	return bindings
}

// resolveDependencies keeps only the imports backing used tags. Several tags
// bound to the same file produce one dependency.
func resolveDependencies(used []string, bindings map[string]importBinding) []dependency {
	var deps []dependency
	seen := make(map[string]bool)
	for _, tag := range used {
		b, ok := bindings[tag]
		if !ok || seen[b.Path] {
			continue
		}
		seen[b.Path] = true
		deps = append(deps, dependency{Tag: tag, Path: b.Path, ImportRange: b.Range})
	}
	return deps
}

// prunedImports returns the imported names never used as a tag.
func prunedImports(file *ast.ComponentFile, used []string) []string {
	inUse := make(map[string]bool, len(used))
	for _, tag := range used {
		inUse[tag] = true
	}
	var pruned []string
	for _, imp := range file.Imports {
		for _, name := range imp.LocalNames() {
			if !inUse[name] {
				pruned = append(pruned, name)
			}
		}
	}
	return pruned
}

// componentName derives the exposed component name from the file stem.
func componentName(path, ext string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ext) {
		return strings.TrimSuffix(base, ext)
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
