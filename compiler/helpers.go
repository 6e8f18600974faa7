package compiler

import (
	"sort"

	"github.com/vcrobe/lumin/diagnostic"
)

// sortDiagnostics orders diagnostics by file, then position. Diagnostics at
// the same position keep their collection order.
func sortDiagnostics(diags []diagnostic.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Range.Start != b.Range.Start {
			return a.Range.Start < b.Range.Start
		}
		return a.Range.End < b.Range.End
	})
}
