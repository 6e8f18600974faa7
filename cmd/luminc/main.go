package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/vcrobe/lumin/compiler"
	"github.com/vcrobe/lumin/config"
	"github.com/vcrobe/lumin/console"
	"github.com/vcrobe/lumin/diagnostic"
)

// report is the -format json document.
type report struct {
	OK          bool                    `json:"ok"`
	Bundle      *compiler.Bundle        `json:"bundle,omitempty"`
	Error       string                  `json:"error,omitempty"`
	Diagnostics []diagnostic.Diagnostic `json:"diagnostics"`
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if cfg.Verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	c := compiler.New(
		compiler.WithExtension(cfg.Extension),
		compiler.WithCacheSize(cfg.CacheSize),
		compiler.WithLogger(logger),
	)

	if cfg.Format == config.FormatJSON {
		os.Exit(runJSON(c, cfg.Entry))
	}
	os.Exit(runPretty(c, cfg.Entry))
}

func runPretty(c *compiler.Compiler, entry string) int {
	fmt.Printf("Starting compilation...\nEntry component: %s\n", entry)

	g, err := c.Build(entry)
	if err != nil {
		var ferr *compiler.FileError
		if errors.As(err, &ferr) {
			console.New(os.Stderr).Report([]diagnostic.Diagnostic{ferr.Diagnostic}, map[string]string{ferr.Path: ferr.Source})
		}
		fmt.Fprintf(os.Stderr, "Compilation failed: %v\n", err)
		return 1
	}

	console.New(os.Stderr).Report(g.Diagnostics, g.Sources)
	if g.HasErrors() {
		fmt.Fprintf(os.Stderr, "Compilation failed: %d component(s) checked, no output produced\n", len(g.Files))
		return 1
	}

	bundle := g.Bundle()
	for _, comp := range bundle.Components {
		fmt.Printf("  %s (%s)\n", comp.Name, comp.Path)
	}
	fmt.Printf("🎉 Compilation completed successfully! %d component(s), hydrating <%s>\n", len(bundle.Components), bundle.Entry)
	return 0
}

func runJSON(c *compiler.Compiler, entry string) int {
	out := report{Diagnostics: []diagnostic.Diagnostic{}}

	g, err := c.Build(entry)
	switch {
	case err != nil:
		out.Error = err.Error()
		var ferr *compiler.FileError
		if errors.As(err, &ferr) {
			out.Diagnostics = append(out.Diagnostics, ferr.Diagnostic)
		}
	default:
		out.Diagnostics = append(out.Diagnostics, g.Diagnostics...)
		out.OK = !g.HasErrors()
		if out.OK {
			bundle := g.Bundle()
			out.Bundle = &bundle
		}
	}

	if err := console.JSON(os.Stdout, out); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	if !out.OK {
		return 1
	}
	return 0
}
