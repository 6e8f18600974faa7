package parser

import (
	"strings"

	"github.com/vcrobe/lumin/ast"
	"github.com/vcrobe/lumin/diagnostic"
)

const headerDelim = "---"

// parseHeader parses the `---` import block whose opening delimiter starts
// at start. It returns the imports and the offset just past the closing
// delimiter.
func parseHeader(src string, start int, ext string) ([]ast.ComponentImport, int, error) {
	bodyStart := start + len(headerDelim)
	rel := strings.Index(src[bodyStart:], headerDelim)
	if rel < 0 {
		return nil, 0, syntaxErrorf(diagnostic.Range{Start: start, End: bodyStart},
			"imports block '---' without closing '---'")
	}
	bodyEnd := bodyStart + rel

	var imports []ast.ComponentImport
	lineStart := bodyStart
	for lineStart <= bodyEnd {
		lineEnd := strings.IndexByte(src[lineStart:bodyEnd], '\n')
		if lineEnd < 0 {
			lineEnd = bodyEnd
		} else {
			lineEnd += lineStart
		}

		raw := src[lineStart:lineEnd]
		line := strings.TrimSpace(raw)
		if line != "" {
			lead := strings.Index(raw, line)
			rng := diagnostic.Range{Start: lineStart + lead, End: lineStart + lead + len(line)}
			imp, err := parseImportLine(line, rng, ext)
			if err != nil {
				return nil, 0, err
			}
			imports = append(imports, imp)
		}
		lineStart = lineEnd + 1
	}

	return imports, bodyEnd + len(headerDelim), nil
}

// parseImportLine parses `import <specifier> from "<path>"` with an optional
// trailing semicolon.
func parseImportLine(line string, rng diagnostic.Range, ext string) (ast.ComponentImport, error) {
	rest, ok := strings.CutPrefix(line, "import")
	if !ok || rest == "" || !isSpace(rest[0]) {
		return ast.ComponentImport{}, syntaxErrorf(rng, "invalid import line in imports block: %s", line)
	}

	fromIdx := strings.LastIndex(rest, " from ")
	if fromIdx < 0 {
		return ast.ComponentImport{}, syntaxErrorf(rng, "import without 'from' in imports block: %s", line)
	}
	specPart := strings.TrimSpace(rest[:fromIdx])
	sourcePart := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest[fromIdx+len(" from "):]), ";"))

	source, ok := unquote(sourcePart)
	if !ok {
		return ast.ComponentImport{}, syntaxErrorf(rng, "import path must be a quoted string: %s", line)
	}
	if !strings.HasSuffix(source, ext) {
		return ast.ComponentImport{}, structureErrorf(rng,
			"only %s component imports are allowed in the --- block: %s", ext, source)
	}

	specifiers, err := parseImportSpecifiers(specPart, rng)
	if err != nil {
		return ast.ComponentImport{}, err
	}
	if len(specifiers) == 0 {
		return ast.ComponentImport{}, syntaxErrorf(rng, "import missing specifiers: %s", line)
	}

	return ast.ComponentImport{Specifiers: specifiers, Source: source, Range: rng}, nil
}

// parseImportSpecifiers accepts `Name` or `{ A, B as C }`.
func parseImportSpecifiers(spec string, rng diagnostic.Range) ([]ast.ImportSpecifier, error) {
	if spec == "" {
		return nil, nil
	}

	if !strings.HasPrefix(spec, "{") {
		if strings.Contains(spec, ",") {
			return nil, syntaxErrorf(rng, "combined default + named imports are not supported")
		}
		if !isIdentifier(spec) {
			return nil, syntaxErrorf(rng, "invalid default import name %q", spec)
		}
		return []ast.ImportSpecifier{{Kind: ast.SpecifierDefault, Local: spec}}, nil
	}

	if !strings.HasSuffix(spec, "}") {
		return nil, syntaxErrorf(rng, "named imports missing closing '}'")
	}

	var out []ast.ImportSpecifier
	for _, part := range strings.Split(spec[1:len(spec)-1], ",") {
		fields := strings.Fields(part)
		switch {
		case len(fields) == 0:
			continue
		case len(fields) == 1 && isIdentifier(fields[0]):
			out = append(out, ast.ImportSpecifier{Kind: ast.SpecifierNamed, Local: fields[0]})
		case len(fields) == 3 && fields[1] == "as" && isIdentifier(fields[0]) && isIdentifier(fields[2]):
			out = append(out, ast.ImportSpecifier{
				Kind:     ast.SpecifierNamedAlias,
				Local:    fields[2],
				Imported: fields[0],
			})
		default:
			return nil, syntaxErrorf(rng, "invalid import specifier %q", strings.TrimSpace(part))
		}
	}
	return out, nil
}

func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return "", false
	}
	return s[1 : len(s)-1], true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		alpha := c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !alpha && (i == 0 || c < '0' || c > '9') {
			return false
		}
	}
	return true
}
