package compiler

import (
	"github.com/vcrobe/lumin/ast"
	"github.com/vcrobe/lumin/diagnostic"
)

// componentInfo holds everything the build learned about one source file.
type componentInfo struct {
	Path   string // Canonical absolute path
	Name   string // File stem, the name the component is exposed under
	Source string
	File   *ast.ComponentFile
	Index  *diagnostic.LineIndex

	// Deps are the imported files backing tags the template actually uses,
	// in tag-name order with duplicates removed.
	Deps []dependency
}

// dependency is one import edge that the build follows.
type dependency struct {
	Tag         string           // First used tag resolved through this import
	Path        string           // Resolved, not yet canonical
	ImportRange diagnostic.Range // Header import line in the importing file
}

// importBinding maps a local name from the header to the file it imports.
type importBinding struct {
	Path  string
	Range diagnostic.Range
}

// frame is one entry of the explicit depth-first work list.
type frame struct {
	comp *componentInfo
	next int // Index of the next dependency to visit
}
