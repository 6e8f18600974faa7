package compiler

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/vcrobe/lumin/diagnostic"
	"github.com/vcrobe/lumin/script"
)

// writeArchive extracts a txtar archive into a fresh directory and returns
// the directory's canonical path.
func writeArchive(t *testing.T, archive string) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	for _, f := range txtar.Parse([]byte(archive)).Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, f.Data, 0o644))
	}
	return dir
}

func messages(diags []diagnostic.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Message
	}
	return out
}

const appArchive = `
-- App.lumin --
---
import Counter from "./Counter.lumin"
import { Header } from "./layout/Header.lumin"
---
<Header>
  <h1>Home</h1>
</Header>
<main>
  @{if (ready) <Counter start={1} />}
</main>
-- Counter.lumin --
<script>
let start = prop(0);
let count = signal(start);
</script>
<button onclick={() => count.set(count.get() + 1)}>{count.get()}</button>
-- layout/Header.lumin --
<header>{@slot}</header>
`

func TestBuild_ResolvesUsedImports(t *testing.T) {
	dir := writeArchive(t, appArchive)

	g, err := New().Build(filepath.Join(dir, "App.lumin"))
	require.NoError(t, err)

	assert.Empty(t, g.Diagnostics)
	assert.False(t, g.HasErrors())
	assert.Equal(t, filepath.Join(dir, "App.lumin"), g.Entry)
	assert.Equal(t, []string{
		filepath.Join(dir, "App.lumin"),
		filepath.Join(dir, "Counter.lumin"),
		filepath.Join(dir, "layout", "Header.lumin"),
	}, g.Paths())

	bundle := g.Bundle()
	assert.Equal(t, "App", bundle.Entry)
	require.Len(t, bundle.Components, 3)
	assert.Equal(t, BundleEntry{Name: "App", Path: filepath.Join(dir, "App.lumin")}, bundle.Components[0])
	assert.Equal(t, "Counter", bundle.Components[1].Name)
	assert.Equal(t, []string{"start"}, bundle.Components[1].Props)
	assert.Equal(t, "Header", bundle.Components[2].Name)
	assert.Equal(t, []string{"children"}, bundle.Components[2].Slots)
}

func TestBuild_ImportCycleFails(t *testing.T) {
	dir := writeArchive(t, `
-- A.lumin --
---
import B from "./B.lumin"
---
<B/>
-- B.lumin --
---
import A from "./A.lumin"
---
<div><A/></div>
`)

	g, err := New().Build(filepath.Join(dir, "A.lumin"))
	require.Error(t, err)
	assert.Nil(t, g)
	assert.True(t, errors.Is(err, ErrImportCycle))

	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Contains(t, []string{filepath.Join(dir, "A.lumin"), filepath.Join(dir, "B.lumin")}, cycle.Path)
	assert.Contains(t, err.Error(), "import cycle detected at")
}

func TestBuild_PrunesUnusedImports(t *testing.T) {
	dir := writeArchive(t, `
-- App.lumin --
---
import Counter from "./Counter.lumin"
import Ghost from "./Ghost.lumin"
---
<p>No components here</p>
-- Counter.lumin --
<button>+</button>
`)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	g, err := New(WithLogger(logger)).Build(filepath.Join(dir, "App.lumin"))
	require.NoError(t, err, "unused imports must not be resolved, even when missing")

	bundle := g.Bundle()
	require.Len(t, bundle.Components, 1)
	assert.Equal(t, "App", bundle.Components[0].Name)
	assert.NotContains(t, g.Names, filepath.Join(dir, "Counter.lumin"))
	assert.Contains(t, logs.String(), "component=Counter")
	assert.Contains(t, logs.String(), "component=Ghost")
}

func TestBuild_MissingImportedFile(t *testing.T) {
	dir := writeArchive(t, `
-- App.lumin --
---
import Gone from "./Gone.lumin"
---
<Gone/>
`)

	_, err := New().Build(filepath.Join(dir, "App.lumin"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingFile))

	var missing *MissingFileError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, filepath.Join(dir, "Gone.lumin"), missing.Path)
	assert.Equal(t, filepath.Join(dir, "App.lumin"), missing.ImportedFrom)
	assert.Equal(t, diagnostic.Range{Start: 4, End: 35}, missing.Range)
}

func TestBuild_MissingEntry(t *testing.T) {
	dir := t.TempDir()

	_, err := New().Build(filepath.Join(dir, "Nope.lumin"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingFile))
}

func TestBuild_ParseErrorIsLocated(t *testing.T) {
	dir := writeArchive(t, `
-- App.lumin --
---
import Card from "./Card.lumin"
---
<Card/>
-- Card.lumin --
<div><span>Hi</div>
`)

	_, err := New().Build(filepath.Join(dir, "App.lumin"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))

	var ferr *FileError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, filepath.Join(dir, "Card.lumin"), ferr.Path)
	assert.Equal(t, filepath.Join(dir, "Card.lumin"), ferr.Diagnostic.File)
	assert.Equal(t, diagnostic.Error, ferr.Diagnostic.Severity)
	assert.Contains(t, ferr.Diagnostic.Message, "mismatched closing tag </div>")
	assert.Equal(t, diagnostic.Location{Line: 1, Col: 14}, ferr.Diagnostic.Start)
	assert.Contains(t, ferr.Source, "<span>Hi")
}

func TestBuild_DiamondParsesSharedFileOnce(t *testing.T) {
	dir := writeArchive(t, `
-- App.lumin --
---
import Left from "./Left.lumin"
import Right from "./Right.lumin"
---
<Left/><Right/>
-- Left.lumin --
---
import Shared from "./Shared.lumin"
---
<Shared/>
-- Right.lumin --
---
import Shared from "./Shared.lumin"
---
<section><Shared/></section>
-- Shared.lumin --
<p>shared</p>
`)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	g, err := New(WithLogger(logger)).Build(filepath.Join(dir, "App.lumin"))
	require.NoError(t, err)

	assert.Len(t, g.Files, 4)
	assert.Equal(t, 4, strings.Count(logs.String(), `msg="compiled component"`))
}

func TestBuild_DeterministicOrder(t *testing.T) {
	dir := writeArchive(t, `
-- App.lumin --
---
import Zeta from "./z/Zeta.lumin"
import Alpha from "./Alpha.lumin"
import Mid from "./m/Mid.lumin"
---
<Zeta/><Mid/><Alpha/>
-- z/Zeta.lumin --
<p>z</p>
-- Alpha.lumin --
<p>a</p>
-- m/Mid.lumin --
<p>m</p>
`)
	entry := filepath.Join(dir, "App.lumin")

	first, err := New().Build(entry)
	require.NoError(t, err)
	second, err := New().Build(entry)
	require.NoError(t, err)

	assert.Equal(t, first.Bundle(), second.Bundle())

	var names []string
	for _, c := range first.Bundle().Components {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Alpha", "App", "Mid", "Zeta"}, names)
}

func TestBuild_CannotFindComponent(t *testing.T) {
	src := "---\nimport Button from \"./Button.lumin\"\n---\n<Button/>\n<Buton/>\n<Other/>\n"
	dir := writeArchive(t, "-- App.lumin --\n"+src+"-- Button.lumin --\n<button>ok</button>\n")

	g, err := New().Build(filepath.Join(dir, "App.lumin"))
	require.NoError(t, err)
	require.True(t, g.HasErrors())

	assert.Equal(t, []string{
		"Cannot find component 'Buton'. Import it in the --- imports block. Did you mean 'Button'?",
		"Cannot find component 'Other'. Import it in the --- imports block.",
	}, messages(g.Diagnostics))

	d := g.Diagnostics[0]
	assert.Equal(t, filepath.Join(dir, "App.lumin"), d.File)
	assert.Equal(t, strings.Index(src, "<Buton"), d.Range.Start)
	assert.Equal(t, diagnostic.Location{Line: 5, Col: 1}, d.Start)
}

func TestBuild_ExpressionDiagnostics(t *testing.T) {
	src := "<p>{count; other}</p>\n<button onclick={() => save()} disabled={!ready}>Save</button>\n"
	dir := writeArchive(t, "-- App.lumin --\n"+src)

	g, err := New().Build(filepath.Join(dir, "App.lumin"))
	require.NoError(t, err)

	require.NotEmpty(t, g.Diagnostics)
	d := g.Diagnostics[0]
	assert.Equal(t, diagnostic.Error, d.Severity)
	assert.Equal(t, strings.Index(src, ";"), d.Range.Start)
	assert.Equal(t, 1, d.Start.Line)
	for _, d := range g.Diagnostics {
		assert.Less(t, d.Range.Start, strings.Index(src, "\n"), "only the first line is invalid: %s", d.Message)
	}
}

func TestBuild_ScriptSyntaxErrorReportedOnce(t *testing.T) {
	src := "<script>\nlet count = prop(0);\nlet broken = ;\n</script>\n<p>{count}</p>\n"
	dir := writeArchive(t, "-- App.lumin --\n"+src)

	g, err := New().Build(filepath.Join(dir, "App.lumin"))
	require.NoError(t, err)

	require.Len(t, g.Diagnostics, 1)
	assert.True(t, strings.HasPrefix(g.Diagnostics[0].Message, "script syntax error"))
	assert.Equal(t, 3, g.Diagnostics[0].Start.Line)
}

func TestBuild_ForbiddenScriptImportKeepsModuleErrors(t *testing.T) {
	src := "<script>\nimport X from \"./X.lumin\";\nlet a = 1; let a = 2;\n</script>\n<p>{a}</p>\n"
	dir := writeArchive(t, "-- App.lumin --\n"+src)

	g, err := New().Build(filepath.Join(dir, "App.lumin"))
	require.NoError(t, err)

	msgs := messages(g.Diagnostics)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "Component imports (.lumin) are not allowed inside <script>")
	assert.Contains(t, msgs[1], `The symbol "a" has already been declared`)
	assert.Equal(t, 3, g.Diagnostics[1].Start.Line)
}

func TestBuild_UnknownElementWarning(t *testing.T) {
	src := "<dvi>x</dvi>\n<svg><circle r=\"1\"/><fancyPath/></svg>\n<my-widget></my-widget>\n<div>ok</div>\n"
	dir := writeArchive(t, "-- App.lumin --\n"+src)

	g, err := New().Build(filepath.Join(dir, "App.lumin"))
	require.NoError(t, err)

	require.Len(t, g.Diagnostics, 1)
	assert.Equal(t, diagnostic.Warning, g.Diagnostics[0].Severity)
	assert.Equal(t, "Unknown element <dvi>", g.Diagnostics[0].Message)
	assert.False(t, g.HasErrors())
}

func TestBuild_DuplicateComponentNames(t *testing.T) {
	dir := writeArchive(t, `
-- App.lumin --
---
import A from "./a/Card.lumin"
import B from "./b/Card.lumin"
---
<A/><B/>
-- a/Card.lumin --
<p>a</p>
-- b/Card.lumin --
<p>b</p>
`)

	g, err := New().Build(filepath.Join(dir, "App.lumin"))
	require.NoError(t, err)

	require.Len(t, g.Diagnostics, 1)
	d := g.Diagnostics[0]
	assert.Equal(t, filepath.Join(dir, "b", "Card.lumin"), d.File)
	assert.Contains(t, d.Message, "Duplicate component name 'Card'")
	assert.True(t, g.HasErrors())
}

// stubValidator rejects snippets containing "!!".
type stubValidator struct {
	calls int
}

func (s *stubValidator) Validate(src string, _ script.SnippetKind) []diagnostic.Issue {
	s.calls++
	if i := strings.Index(src, "!!"); i >= 0 {
		return []diagnostic.Issue{diagnostic.Errorf(diagnostic.Range{Start: i, End: i + 2}, "double bang")}
	}
	return nil
}

func TestBuild_ValidatesEachDistinctSnippetOnce(t *testing.T) {
	src := "<p>{a!!}</p><p>{a!!}</p><p>{b}</p>\n"
	dir := writeArchive(t, "-- App.lumin --\n"+src)
	stub := &stubValidator{}

	g, err := New(WithValidator(stub)).Build(filepath.Join(dir, "App.lumin"))
	require.NoError(t, err)

	assert.Equal(t, 2, stub.calls)
	require.Len(t, g.Diagnostics, 2)
	assert.Equal(t, strings.Index(src, "!!"), g.Diagnostics[0].Range.Start)
	assert.Equal(t, strings.LastIndex(src, "!!"), g.Diagnostics[1].Range.Start)
}
