package compiler

import (
	"errors"
	"fmt"

	"github.com/vcrobe/lumin/diagnostic"
)

// Sentinels matched by the graph errors through errors.Is.
var (
	ErrImportCycle = errors.New("import cycle")
	ErrMissingFile = errors.New("missing component file")
	ErrParse       = errors.New("parse failed")
)

// CycleError reports a file reached again while it is still being compiled.
type CycleError struct {
	Path string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("import cycle detected at %s", e.Path)
}

func (e *CycleError) Is(target error) bool { return target == ErrImportCycle }

// MissingFileError reports an import whose target does not exist.
// ImportedFrom is empty for the entry file.
type MissingFileError struct {
	Path         string
	ImportedFrom string
	Range        diagnostic.Range
}

func (e *MissingFileError) Error() string {
	if e.ImportedFrom == "" {
		return fmt.Sprintf("component file %s not found", e.Path)
	}
	return fmt.Sprintf("component file %s not found (imported from %s)", e.Path, e.ImportedFrom)
}

func (e *MissingFileError) Is(target error) bool { return target == ErrMissingFile }

// FileError is a fatal parse error located in its file. Source is kept so
// reporters can print context without reading the file again.
type FileError struct {
	Path       string
	Source     string
	Diagnostic diagnostic.Diagnostic
	Err        error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s:%s: %v", e.Path, e.Diagnostic.Start, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

func (e *FileError) Is(target error) bool { return target == ErrParse }
