package diagnostic

import "sort"

// LineIndex holds the byte offset at which every line of a source starts.
// It is built once per file and is safe to share; lookups never mutate it.
type LineIndex struct {
	starts []int
	size   int
}

// NewLineIndex records offset 0 plus one past every '\n' in src.
func NewLineIndex(src string) *LineIndex {
	starts := make([]int, 1, 64)
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, size: len(src)}
}

// LineCount returns the number of lines, counting a trailing empty line.
func (ix *LineIndex) LineCount() int { return len(ix.starts) }

// LineStart returns the offset of the first byte of a 1-based line.
func (ix *LineIndex) LineStart(line int) int {
	if line < 1 {
		return 0
	}
	if line > len(ix.starts) {
		return ix.size
	}
	return ix.starts[line-1]
}

// Locate converts a byte offset to a 1-based line and column. Offsets past
// the end of the source are clamped to the end.
func (ix *LineIndex) Locate(offset int) Location {
	if offset < 0 {
		offset = 0
	}
	if offset > ix.size {
		offset = ix.size
	}
	// Greatest line start <= offset.
	i := sort.Search(len(ix.starts), func(i int) bool { return ix.starts[i] > offset }) - 1
	return Location{Line: i + 1, Col: offset - ix.starts[i] + 1}
}

// Offset is the inverse of Locate for locations inside the source.
func (ix *LineIndex) Offset(loc Location) int {
	off := ix.LineStart(loc.Line) + loc.Col - 1
	if off > ix.size {
		return ix.size
	}
	return off
}

// Span locates both ends of a range.
func (ix *LineIndex) Span(r Range) (Location, Location) {
	return ix.Locate(r.Start), ix.Locate(r.End)
}

// Resolve turns an absolute issue into a located diagnostic.
func (ix *LineIndex) Resolve(is Issue) Diagnostic {
	start, end := ix.Span(is.Range)
	return Diagnostic{
		Severity: is.Severity,
		Message:  is.Message,
		Range:    is.Range,
		Start:    start,
		End:      end,
	}
}

// ResolveAll locates every issue and attributes it to file.
func (ix *LineIndex) ResolveAll(file string, issues []Issue) []Diagnostic {
	out := make([]Diagnostic, 0, len(issues))
	for _, is := range issues {
		d := ix.Resolve(is)
		d.File = file
		out = append(out, d)
	}
	return out
}
