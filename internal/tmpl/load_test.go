// SPDX-License-Identifier: MPL-2.0

package tmpl

import (
	"errors"
	"testing"

	"texpub-cli/pkg/fspath"
)

const validDefinitions = `
keys:
  Asset: {type: alphanum}
  task_name: {type: str}
  texture_set: {type: alphanum}
  texture_map: {type: alphanum}
  colorspace: {type: alphanum}
  extension: {type: alphanum}
  version: {type: int, format: "03"}
  UDIM: {type: int, format: "04", alias: udim}

templates:
  texture_publish: "@asset_root/publish/textures/v{version}/{texture_set}_{texture_map}_{colorspace}.{extension}"
  asset_root: "assets/{Asset}/{task_name}"
  textures_export_work_area: "@asset_root/work/export"
`

func TestLoad_ValidDefinitions(t *testing.T) {
	t.Parallel()

	r, err := Load([]byte(validDefinitions))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Includes are usable regardless of definition order in the document.
	got, err := r.Resolve("textures_export_work_area", map[string]any{
		"Asset": "ship", "task_name": "surfacing",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := fspath.FromSlash("assets/ship/surfacing/work/export")
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}

	names := r.TemplateNames()
	if len(names) != 3 {
		t.Errorf("TemplateNames() = %v, want 3 entries", names)
	}
}

func TestLoad_IncludeCycle(t *testing.T) {
	t.Parallel()

	doc := `
keys:
  Asset: {type: alphanum}
templates:
  a: "@b/x"
  b: "@a/y"
`
	_, err := Load([]byte(doc))
	var cycleErr *CyclicTemplateError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("Load() error = %T, want *CyclicTemplateError", err)
	}
	if len(cycleErr.Cycle) == 0 {
		t.Error("CyclicTemplateError.Cycle is empty, want cycle members")
	}
}

func TestLoad_UnknownInclude(t *testing.T) {
	t.Parallel()

	doc := `
templates:
  child: "@nowhere/work"
`
	_, err := Load([]byte(doc))
	if !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("Load() error = %v, want ErrUnknownTemplate", err)
	}
}

func TestLoad_UnknownKeyInTemplate(t *testing.T) {
	t.Parallel()

	doc := `
keys:
  Asset: {type: alphanum}
templates:
  bad: "assets/{Asset}/{step}"
`
	_, err := Load([]byte(doc))
	if !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Load() error = %v, want ErrUnknownKey", err)
	}
}

func TestLoad_BadKeyType(t *testing.T) {
	t.Parallel()

	doc := `
keys:
  Asset: {type: float}
`
	_, err := Load([]byte(doc))
	if !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Load() error = %v, want ErrInvalidKey", err)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := Load([]byte("keys: [not: a map"))
	if err == nil {
		t.Error("Load() succeeded on malformed YAML, want error")
	}
}
