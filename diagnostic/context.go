package diagnostic

import (
	"fmt"
	"strings"
)

// SourceLine returns the text of a 1-based line without its newline.
func SourceLine(src string, ix *LineIndex, line int) string {
	if line < 1 || line > ix.LineCount() {
		return ""
	}
	start := ix.LineStart(line)
	end := len(src)
	if line < ix.LineCount() {
		end = ix.LineStart(line+1) - 1
	}
	return strings.TrimSuffix(src[start:end], "\r")
}

// Context returns a formatted block with contextSize lines before and after
// the target line. The target line is marked with '>' and, when col > 0, a
// caret is drawn under the column.
func Context(src string, ix *LineIndex, loc Location, contextSize int) string {
	first := max(loc.Line-contextSize, 1)
	last := min(loc.Line+contextSize, ix.LineCount())

	var b strings.Builder
	for n := first; n <= last; n++ {
		prefix := "  "
		if n == loc.Line {
			prefix = "> "
		}
		fmt.Fprintf(&b, "%s%4d | %s\n", prefix, n, SourceLine(src, ix, n))
		if n == loc.Line && loc.Col > 0 {
			fmt.Fprintf(&b, "       | %s^\n", strings.Repeat(" ", loc.Col-1))
		}
	}
	return b.String()
}
