// SPDX-License-Identifier: MPL-2.0

// Package export asks the authoring application to write texture files into
// the export work area. The pipeline never generates texture content itself;
// it delegates to a configured export hook and then scans whatever landed on
// disk.
package export

import (
	"context"
	"errors"
	"fmt"

	"texpub-cli/pkg/types"
)

// ErrExport is the sentinel error wrapped by export trigger failures.
var ErrExport = errors.New("export trigger failed")

type (
	// Trigger requests an export with a named preset into a destination
	// directory. Implementations must not touch anything outside destDir.
	Trigger interface {
		Export(ctx context.Context, preset string, destDir types.FilesystemPath) error
	}

	// ExportError reports a failed export attempt.
	ExportError struct {
		Preset string
		Cause  error
	}
)

func (e *ExportError) Error() string {
	return fmt.Sprintf("export with preset %q: %v", e.Preset, e.Cause)
}

// Unwrap returns the underlying cause chained with ErrExport.
func (e *ExportError) Unwrap() []error { return []error{ErrExport, e.Cause} }

// NopTrigger performs no export. It is used when the export area is already
// populated (out-of-band exports) and for tests that seed the area directly.
type NopTrigger struct{}

var _ Trigger = NopTrigger{}

// Export returns nil without touching the filesystem.
func (NopTrigger) Export(ctx context.Context, preset string, destDir types.FilesystemPath) error {
	return ctx.Err()
}
