// SPDX-License-Identifier: MPL-2.0

package texture

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"texpub-cli/pkg/types"
)

const (
	// SeverityWarning indicates a recoverable scan warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a scan error that should abort the publish.
	SeverityError Severity = "error"

	// CodeFilenameMismatch marks a file whose name does not conform to the
	// export pattern.
	CodeFilenameMismatch DiagnosticCode = "filename_mismatch"
	// CodeEntryUnreadable marks a directory entry that could not be read.
	CodeEntryUnreadable DiagnosticCode = "entry_unreadable"
)

type (
	// Severity represents scan diagnostic severity.
	Severity string

	// DiagnosticCode is a machine-readable scan diagnostic identifier.
	DiagnosticCode string

	// Diagnostic is a structured scan finding returned to callers (rather
	// than written to stderr) so the publish layer decides whether to abort
	// or warn. Non-conforming filenames are always reported, never silently
	// skipped.
	Diagnostic struct {
		Severity Severity
		Code     DiagnosticCode
		Message  string
		// Path is the file associated with this diagnostic.
		Path types.FilesystemPath
		// Cause is the underlying error, for programmatic inspection.
		Cause error
	}

	// ScanResult bundles the conforming files found in an export area with
	// the diagnostics produced while scanning.
	ScanResult struct {
		Files       []ExportedFile
		Diagnostics []Diagnostic
	}
)

// HasErrors reports whether any diagnostic carries SeverityError.
func (r *ScanResult) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ScanExportArea walks the export work area and parses every regular file
// found. Exporters may write per-stack subdirectories, so the walk is
// recursive. Files whose names do not conform produce SeverityError
// diagnostics with CodeFilenameMismatch; the publish orchestrator aborts on
// any of those before a single byte is copied.
//
// A missing export area is not an error here: it yields an empty result,
// which the orchestrator treats as "export produced no files".
func ScanExportArea(dir types.FilesystemPath) (ScanResult, error) {
	var result ScanResult

	err := filepath.WalkDir(dir.String(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == dir.String() {
				return filepath.SkipAll
			}
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Severity: SeverityError,
				Code:     CodeEntryUnreadable,
				Message:  "export area entry could not be read",
				Path:     types.FilesystemPath(path),
				Cause:    err,
			})
			return nil
		}
		if d.IsDir() {
			return nil
		}
		f, perr := ParsePath(types.FilesystemPath(path))
		if perr != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Severity: SeverityError,
				Code:     CodeFilenameMismatch,
				Message:  perr.Error(),
				Path:     types.FilesystemPath(path),
				Cause:    perr,
			})
			return nil
		}
		result.Files = append(result.Files, f)
		return nil
	})
	if err != nil {
		return ScanResult{}, err
	}

	// WalkDir order is already lexical per directory; sort across the whole
	// result so grouping is stable regardless of directory nesting.
	sort.SliceStable(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})

	return result, nil
}
