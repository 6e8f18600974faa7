// Package compiler resolves the import graph of .lumin components starting
// from an entry file. Every reachable file that is actually used is parsed
// once, validated, and returned in a Graph with its aggregated diagnostics.
package compiler

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/vcrobe/lumin/diagnostic"
	"github.com/vcrobe/lumin/parser"
	"github.com/vcrobe/lumin/script"
)

// Compiler holds build settings. Each Build call owns its own caches, so a
// Compiler can be reused for successive builds.
type Compiler struct {
	ext       string
	cacheSize int
	logger    *slog.Logger
	validator script.SnippetValidator
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithExtension sets the component file extension.
func WithExtension(ext string) Option {
	return func(c *Compiler) {
		if ext != "" {
			c.ext = ext
		}
	}
}

// WithLogger sets the logger used for per-file debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCacheSize bounds the per-build snippet validation cache.
func WithCacheSize(n int) Option {
	return func(c *Compiler) { c.cacheSize = n }
}

// WithValidator replaces the esbuild snippet validator.
func WithValidator(v script.SnippetValidator) Option {
	return func(c *Compiler) {
		if v != nil {
			c.validator = v
		}
	}
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		ext:       parser.DefaultExtension,
		cacheSize: script.DefaultCacheSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.validator == nil {
		c.validator = script.NewEsbuild()
	}
	return c
}

// build is the state of one graph resolution. Entries in compiled are
// added once and never replaced.
type build struct {
	*Compiler
	parser     *parser.Parser
	snippets   *script.Validator
	compiled   map[string]*componentInfo
	inProgress map[string]bool
	diags      []diagnostic.Diagnostic
}

// Build resolves the graph reachable from entry. It fails on the first import
// cycle, missing file or fatal parse error; everything else is reported as a
// diagnostic on the returned Graph.
func (c *Compiler) Build(entry string) (*Graph, error) {
	snippets, err := script.NewValidator(c.validator, c.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create validation cache: %w", err)
	}
	b := &build{
		Compiler: c,
		parser: parser.New(
			parser.WithExtension(c.ext),
			parser.WithClassifier(script.NewClassifier(c.ext)),
		),
		snippets:   snippets,
		compiled:   make(map[string]*componentInfo),
		inProgress: make(map[string]bool),
	}

	// Step 1: Canonicalize the entry path.
	entryPath, err := canonicalPath(entry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingFileError{Path: entry}
		}
		return nil, fmt.Errorf("failed to resolve entry %s: %w", entry, err)
	}

	// Step 2: Depth-first traversal with an explicit stack.
	if err := b.run(entryPath); err != nil {
		return nil, err
	}

	// Step 3: Graph-wide checks and deterministic ordering.
	b.checkDuplicateNames()
	sortDiagnostics(b.diags)

	hits, misses := b.snippets.Stats()
	c.logger.Debug("graph resolved",
		slog.String("entry", entryPath),
		slog.Int("files", len(b.compiled)),
		slog.Int("diagnostics", len(b.diags)),
		slog.Int("cache_hits", hits),
		slog.Int("cache_misses", misses))

	return newGraph(entryPath, b.compiled, b.diags), nil
}

// run visits every used file reachable from entry. A file is pushed when it
// is first reached and recorded as compiled once all of its dependencies
// have been popped.
func (b *build) run(entry string) error {
	root, err := b.enter(entry)
	if err != nil {
		return err
	}
	stack := []*frame{{comp: root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next == len(top.comp.Deps) {
			stack = stack[:len(stack)-1]
			delete(b.inProgress, top.comp.Path)
			b.compiled[top.comp.Path] = top.comp
			continue
		}

		dep := top.comp.Deps[top.next]
		top.next++

		path, err := canonicalPath(dep.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return &MissingFileError{Path: dep.Path, ImportedFrom: top.comp.Path, Range: dep.ImportRange}
			}
			return fmt.Errorf("failed to resolve %s: %w", dep.Path, err)
		}
		if _, ok := b.compiled[path]; ok {
			continue
		}
		if b.inProgress[path] {
			return &CycleError{Path: path}
		}

		comp, err := b.enter(path)
		if err != nil {
			return err
		}
		stack = append(stack, &frame{comp: comp})
	}
	return nil
}

// enter marks path in progress, then reads, parses and validates it.
func (b *build) enter(path string) (*componentInfo, error) {
	b.inProgress[path] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read component %s: %w", path, err)
	}
	src := string(data)
	ix := diagnostic.NewLineIndex(src)

	file, issues, err := b.parser.ParseComponent(src)
	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) {
			d := ix.Resolve(perr.Issue())
			d.File = path
			return nil, &FileError{Path: path, Source: src, Diagnostic: d, Err: perr}
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	comp := &componentInfo{
		Path:   path,
		Name:   componentName(path, b.ext),
		Source: src,
		File:   file,
		Index:  ix,
	}

	issues = append(issues, b.collectExpressionIssues(file.Template)...)
	if s := file.Script; s != nil && !s.Malformed {
		issues = append(issues, diagnostic.Remap(b.snippets.Validate(s.OriginalCode, script.SnippetModule), s.Range.Start)...)
	}
	issues = append(issues, validateComponentTags(file)...)
	issues = append(issues, validateElementNames(file.Template)...)

	imports := importBindings(path, file)
	used := collectUsedComponents(file.Template)
	comp.Deps = resolveDependencies(used, imports)
	for _, name := range prunedImports(file, used) {
		b.logger.Debug("pruned unused import", slog.String("path", path), slog.String("component", name))
	}

	b.diags = append(b.diags, ix.ResolveAll(path, issues)...)
	b.logger.Debug("compiled component",
		slog.String("path", path),
		slog.String("name", comp.Name),
		slog.Int("deps", len(comp.Deps)),
		slog.Int("diagnostics", len(issues)))
	return comp, nil
}

// checkDuplicateNames reports files that would be exposed under a name
// already taken by a file earlier in path order.
func (b *build) checkDuplicateNames() {
	paths := make([]string, 0, len(b.compiled))
	for p := range b.compiled {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	owner := make(map[string]string)
	for _, p := range paths {
		name := b.compiled[p].Name
		if first, ok := owner[name]; ok {
			b.diags = append(b.diags, diagnostic.Diagnostic{
				File:     p,
				Severity: diagnostic.Error,
				Message:  fmt.Sprintf("Duplicate component name '%s' (also defined by %s)", name, first),
				Start:    diagnostic.Location{Line: 1, Col: 1},
				End:      diagnostic.Location{Line: 1, Col: 1},
			})
			continue
		}
		owner[name] = p
	}
}

// canonicalPath returns the absolute, symlink-free form of path.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
