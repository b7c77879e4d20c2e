// SPDX-License-Identifier: MPL-2.0

package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"texpub-cli/pkg/types"
)

// Environment variables exposed to the export hook script.
const (
	// EnvPreset carries the export preset name.
	EnvPreset = "TEXPUB_EXPORT_PRESET"
	// EnvExportPath carries the destination directory.
	EnvExportPath = "TEXPUB_EXPORT_PATH"
)

// HookTrigger runs a configured shell script through an embedded POSIX
// interpreter, so hooks behave identically on every platform without
// depending on a system shell. The script receives the preset and
// destination through TEXPUB_EXPORT_PRESET and TEXPUB_EXPORT_PATH and runs
// with the destination as its working directory.
type HookTrigger struct {
	script string
	// Stdout and Stderr receive the hook's output; nil discards it.
	Stdout, Stderr io.Writer
}

var _ Trigger = (*HookTrigger)(nil)

// NewHookTrigger creates a trigger running script for each export request.
// The script's syntax is validated eagerly so a broken hook fails at
// configuration time rather than mid-publish.
func NewHookTrigger(script string) (*HookTrigger, error) {
	if strings.TrimSpace(script) == "" {
		return nil, &ExportError{Cause: errors.New("export hook script is empty")}
	}
	if _, err := syntax.NewParser().Parse(strings.NewReader(script), "export-hook"); err != nil {
		return nil, &ExportError{Cause: fmt.Errorf("hook syntax error: %w", err)}
	}
	return &HookTrigger{script: script}, nil
}

// Export creates destDir if needed and runs the hook script.
func (h *HookTrigger) Export(ctx context.Context, preset string, destDir types.FilesystemPath) error {
	if err := os.MkdirAll(destDir.String(), 0o755); err != nil {
		return &ExportError{Preset: preset, Cause: err}
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(h.script), "export-hook")
	if err != nil {
		return &ExportError{Preset: preset, Cause: fmt.Errorf("hook syntax error: %w", err)}
	}

	env := append(os.Environ(),
		EnvPreset+"="+preset,
		EnvExportPath+"="+destDir.String(),
	)

	runner, err := interp.New(
		interp.Dir(destDir.String()),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, h.Stdout, h.Stderr),
	)
	if err != nil {
		return &ExportError{Preset: preset, Cause: err}
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			err = fmt.Errorf("hook exited with status %d", int(exitStatus))
		}
		return &ExportError{Preset: preset, Cause: err}
	}
	return nil
}
