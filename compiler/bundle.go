package compiler

import (
	"sort"

	"github.com/vcrobe/lumin/ast"
	"github.com/vcrobe/lumin/diagnostic"
)

// Graph is the result of a successful Build: every used file reachable from
// the entry, keyed by canonical path.
type Graph struct {
	Entry       string
	Files       map[string]*ast.ComponentFile
	Names       map[string]string // Canonical path to component name
	Sources     map[string]string
	Diagnostics []diagnostic.Diagnostic
}

func newGraph(entry string, compiled map[string]*componentInfo, diags []diagnostic.Diagnostic) *Graph {
	g := &Graph{
		Entry:       entry,
		Files:       make(map[string]*ast.ComponentFile, len(compiled)),
		Names:       make(map[string]string, len(compiled)),
		Sources:     make(map[string]string, len(compiled)),
		Diagnostics: diags,
	}
	for path, comp := range compiled {
		g.Files[path] = comp.File
		g.Names[path] = comp.Name
		g.Sources[path] = comp.Source
	}
	return g
}

// HasErrors reports whether any diagnostic blocks emission. Only errors
// block; warnings such as unknown elements are reported but let the bundle
// through.
func (g *Graph) HasErrors() bool {
	return diagnostic.HasErrors(g.Diagnostics)
}

// Paths returns the canonical paths of all files in sorted order.
func (g *Graph) Paths() []string {
	paths := make([]string, 0, len(g.Files))
	for p := range g.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Bundle is the component table handed to code generation. Components are
// ordered by canonical path so unchanged sources give identical output.
type Bundle struct {
	Entry      string        `json:"entry"`
	Components []BundleEntry `json:"components"`
}

// BundleEntry is one component in the table.
type BundleEntry struct {
	Name  string   `json:"name"`
	Path  string   `json:"path"`
	Props []string `json:"props,omitempty"`
	Slots []string `json:"slots,omitempty"`
}

// Bundle returns the emission table. Entry names the hydration target.
func (g *Graph) Bundle() Bundle {
	b := Bundle{Entry: g.Names[g.Entry]}
	for _, path := range g.Paths() {
		file := g.Files[path]
		entry := BundleEntry{
			Name:  g.Names[path],
			Path:  path,
			Slots: file.DefinedSlots,
		}
		if file.Script != nil {
			for _, p := range file.Script.Props {
				if p.Kind == ast.KindProp {
					entry.Props = append(entry.Props, p.Name)
				}
			}
		}
		b.Components = append(b.Components, entry)
	}
	return b
}
