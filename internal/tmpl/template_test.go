// SPDX-License-Identifier: MPL-2.0

package tmpl

import (
	"errors"
	"reflect"
	"testing"

	"texpub-cli/pkg/fspath"
	"texpub-cli/pkg/types"
)

// testRegistry builds a registry mirroring the default pipeline definitions.
func testRegistry(t *testing.T) *Registry {
	t.Helper()

	r := NewRegistry()
	keys := []Key{
		{Name: "Asset", Type: KeyAlphanum},
		{Name: "task_name", Type: KeyStr},
		{Name: "name", Type: KeyAlphanum},
		{Name: "texture_set", Type: KeyAlphanum},
		{Name: "texture_map", Type: KeyAlphanum},
		{Name: "colorspace", Type: KeyAlphanum},
		{Name: "extension", Type: KeyAlphanum},
		{Name: "version", Type: KeyInt, Format: "03"},
		{Name: "UDIM", Type: KeyInt, Format: "04", Alias: "udim"},
	}
	for _, k := range keys {
		if err := r.RegisterKey(k); err != nil {
			t.Fatalf("RegisterKey(%q) error = %v", k.Name, err)
		}
	}

	templates := []struct{ name, pattern string }{
		{"asset_root", "assets/{Asset}/{task_name}"},
		{"textures_export_work_area", "@asset_root/work/export"},
		{"texture_publish", "@asset_root/publish/textures/v{version}/{texture_set}_{texture_map}_{colorspace}.{extension}"},
		{"texture_publish_udim", "@asset_root/publish/textures/v{version}/{texture_set}_{texture_map}_{colorspace}.{UDIM}.{extension}"},
		{"texture_set_publish_area", "@asset_root/publish/textures/v{version}"},
		{"project_work", "@asset_root/work/{name}.v{version}.spp"},
		{"project_publish", "@asset_root/publish/{name}.v{version}.spp"},
	}
	for _, td := range templates {
		if err := r.RegisterTemplate(td.name, td.pattern); err != nil {
			t.Fatalf("RegisterTemplate(%q) error = %v", td.name, err)
		}
	}
	return r
}

func TestRegisterKey_DuplicateIdenticalIsNoop(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	k := Key{Name: "version", Type: KeyInt, Format: "03"}
	if err := r.RegisterKey(k); err != nil {
		t.Fatalf("RegisterKey() error = %v", err)
	}
	if err := r.RegisterKey(k); err != nil {
		t.Errorf("identical re-registration error = %v, want nil", err)
	}
}

func TestRegisterKey_DuplicateConflicting(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.RegisterKey(Key{Name: "version", Type: KeyInt}); err != nil {
		t.Fatalf("RegisterKey() error = %v", err)
	}
	err := r.RegisterKey(Key{Name: "version", Type: KeyStr})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("conflicting re-registration error = %v, want ErrDuplicateKey", err)
	}
}

func TestRegisterKey_InvalidDefinitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  Key
	}{
		{"empty name", Key{Name: "", Type: KeyStr}},
		{"unknown type", Key{Name: "x", Type: "float"}},
		{"format on str key", Key{Name: "x", Type: KeyStr, Format: "03"}},
		{"non-numeric format", Key{Name: "x", Type: KeyInt, Format: "wide"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := NewRegistry()
			if err := r.RegisterKey(tt.key); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("RegisterKey() error = %v, want ErrInvalidKey", err)
			}
		})
	}
}

func TestRegisterTemplate_UnknownKey(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	err := r.RegisterTemplate("bad", "assets/{Asset}")
	var unknownErr *UnknownKeyError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("RegisterTemplate() error = %T, want *UnknownKeyError", err)
	}
	if unknownErr.Key != "Asset" {
		t.Errorf("UnknownKeyError.Key = %q, want %q", unknownErr.Key, "Asset")
	}
}

func TestRegisterTemplate_UnknownInclude(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	err := r.RegisterTemplate("child", "@missing/work")
	if !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("RegisterTemplate() error = %v, want ErrUnknownTemplate", err)
	}
}

func TestRegisterTemplate_SelfInclude(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	err := r.RegisterTemplate("loop", "@loop/work")
	if !errors.Is(err, ErrCyclicTemplate) {
		t.Errorf("RegisterTemplate() error = %v, want ErrCyclicTemplate", err)
	}
}

func TestResolve_Basic(t *testing.T) {
	t.Parallel()

	r := testRegistry(t)
	got, err := r.Resolve("texture_publish", map[string]any{
		"Asset":       "ship",
		"task_name":   "surfacing",
		"version":     7,
		"texture_set": "hull",
		"texture_map": "BaseColor",
		"colorspace":  "sRGB",
		"extension":   "png",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := fspath.FromSlash("assets/ship/surfacing/publish/textures/v007/hull_BaseColor_sRGB.png")
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolve_UDIMAlias(t *testing.T) {
	t.Parallel()

	r := testRegistry(t)
	// The exporter's parsed fields carry "udim"; the UDIM key accepts it
	// through its alias.
	got, err := r.Resolve("texture_publish_udim", map[string]any{
		"Asset":       "ship",
		"task_name":   "surfacing",
		"version":     1,
		"texture_set": "hull",
		"texture_map": "Normal",
		"colorspace":  "raw",
		"extension":   "png",
		"udim":        1002,
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := fspath.FromSlash("assets/ship/surfacing/publish/textures/v001/hull_Normal_raw.1002.png")
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolve_MissingField(t *testing.T) {
	t.Parallel()

	r := testRegistry(t)
	_, err := r.Resolve("asset_root", map[string]any{"Asset": "ship"})
	var missingErr *MissingFieldError
	if !errors.As(err, &missingErr) {
		t.Fatalf("Resolve() error = %T, want *MissingFieldError", err)
	}
	if missingErr.Field != "task_name" {
		t.Errorf("MissingFieldError.Field = %q, want %q", missingErr.Field, "task_name")
	}
}

func TestResolve_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"path separator in str", map[string]any{"Asset": "ship", "task_name": "a/b"}},
		{"whitespace in str", map[string]any{"Asset": "ship", "task_name": "a b"}},
		{"non-alphanumeric", map[string]any{"Asset": "ship_01", "task_name": "surfacing"}},
		{"empty string", map[string]any{"Asset": "", "task_name": "surfacing"}},
	}

	r := testRegistry(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := r.Resolve("asset_root", tt.fields)
			if err == nil {
				t.Fatal("Resolve() succeeded, want error")
			}
			if !errors.Is(err, ErrInvalidFieldValue) && !errors.Is(err, ErrMissingField) {
				t.Errorf("Resolve() error = %v, want field error", err)
			}
		})
	}
}

func TestResolve_NegativeVersion(t *testing.T) {
	t.Parallel()

	r := testRegistry(t)
	_, err := r.Resolve("texture_set_publish_area", map[string]any{
		"Asset": "ship", "task_name": "surfacing", "version": -1,
	})
	if !errors.Is(err, ErrInvalidFieldValue) {
		t.Errorf("Resolve() error = %v, want ErrInvalidFieldValue", err)
	}
}

func TestResolve_WrongTypeForIntKey(t *testing.T) {
	t.Parallel()

	r := testRegistry(t)
	_, err := r.Resolve("texture_set_publish_area", map[string]any{
		"Asset": "ship", "task_name": "surfacing", "version": "seven",
	})
	if !errors.Is(err, ErrInvalidFieldValue) {
		t.Errorf("Resolve() error = %v, want ErrInvalidFieldValue", err)
	}
}

func TestExtract_Inverse(t *testing.T) {
	t.Parallel()

	r := testRegistry(t)
	tests := []struct {
		template string
		fields   map[string]any
	}{
		{
			"texture_publish",
			map[string]any{
				"Asset": "ship", "task_name": "surfacing", "version": 12,
				"texture_set": "hull", "texture_map": "Roughness",
				"colorspace": "raw", "extension": "exr",
			},
		},
		{
			"texture_publish_udim",
			map[string]any{
				"Asset": "ship", "task_name": "surfacing", "version": 3,
				"texture_set": "hull", "texture_map": "Normal",
				"colorspace": "raw", "extension": "png", "UDIM": 1001,
			},
		},
		{
			"project_publish",
			map[string]any{
				"Asset": "ship", "task_name": "surfacing",
				"name": "shipSurfacing", "version": 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			t.Parallel()
			path, err := r.Resolve(tt.template, tt.fields)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			got, err := r.Extract(tt.template, path)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.fields) {
				t.Errorf("Extract(Resolve(M)) = %v, want %v", got, tt.fields)
			}
		})
	}
}

func TestExtract_NoMatch(t *testing.T) {
	t.Parallel()

	r := testRegistry(t)
	tests := []struct {
		name string
		path types.FilesystemPath
	}{
		{"unrelated path", "somewhere/else/entirely.png"},
		{"wrong extension structure", fspath.FromSlash("assets/ship/surfacing/publish/textures/v001/hull.png")},
		{"version not numeric", fspath.FromSlash("assets/ship/surfacing/publish/textures/vABC/hull_BaseColor_sRGB.png")},
		{"trailing garbage", fspath.FromSlash("assets/ship/surfacing/publish/textures/v001/hull_BaseColor_sRGB.png.bak")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := r.Extract("texture_publish", tt.path)
			if !errors.Is(err, ErrNoMatch) {
				t.Errorf("Extract(%q) error = %v, want ErrNoMatch", tt.path, err)
			}
		})
	}
}

func TestExtract_RepeatedKeyMustAgree(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.RegisterKey(Key{Name: "name", Type: KeyAlphanum}); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterTemplate("mirrored", "{name}/export/{name}.spp"); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Extract("mirrored", fspath.FromSlash("hull/export/hull.spp")); err != nil {
		t.Errorf("Extract() with agreeing repeats error = %v", err)
	}
	if _, err := r.Extract("mirrored", fspath.FromSlash("hull/export/deck.spp")); !errors.Is(err, ErrNoMatch) {
		t.Errorf("Extract() with disagreeing repeats error = %v, want ErrNoMatch", err)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	t.Parallel()

	r := testRegistry(t)
	fields := map[string]any{"Asset": "ship", "task_name": "surfacing"}
	first, err := r.Resolve("asset_root", fields)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := r.Resolve("asset_root", fields)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if again != first {
			t.Fatalf("Resolve() not deterministic: %q vs %q", again, first)
		}
	}
}

func TestTemplate_Keys(t *testing.T) {
	t.Parallel()

	r := testRegistry(t)
	tpl, err := r.Template("project_publish")
	if err != nil {
		t.Fatalf("Template() error = %v", err)
	}
	want := []string{"Asset", "task_name", "name", "version"}
	if !reflect.DeepEqual(tpl.Keys(), want) {
		t.Errorf("Keys() = %v, want %v", tpl.Keys(), want)
	}
}
