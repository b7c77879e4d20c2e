// SPDX-License-Identifier: MPL-2.0

package version

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"texpub-cli/internal/tmpl"
	"texpub-cli/pkg/types"
)

const resolverDefs = `
keys:
  Asset: {type: alphanum}
  task_name: {type: str}
  name: {type: alphanum}
  texture_set: {type: alphanum}
  texture_map: {type: alphanum}
  colorspace: {type: alphanum}
  extension: {type: alphanum}
  version: {type: int, format: "03"}
  UDIM: {type: int, format: "04", alias: udim}

templates:
  asset_root: "assets/{Asset}/{task_name}"
  texture_publish: "@asset_root/publish/textures/v{version}/{texture_set}_{texture_map}_{colorspace}.{extension}"
  texture_publish_udim: "@asset_root/publish/textures/v{version}/{texture_set}_{texture_map}_{colorspace}.{UDIM}.{extension}"
  texture_set_publish_area: "@asset_root/publish/textures/v{version}"
  project_publish: "@asset_root/publish/{name}.v{version}.spp"
`

var resolverFamilies = map[Family][]string{
	FamilyProject:    {"project_publish"},
	FamilyTexture:    {"texture_publish", "texture_publish_udim"},
	FamilyTextureSet: {"texture_set_publish_area"},
}

func newTestResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	reg, err := tmpl.Load([]byte(resolverDefs))
	if err != nil {
		t.Fatalf("tmpl.Load() error = %v", err)
	}
	root := t.TempDir()
	return NewResolver(reg, types.FilesystemPath(root), resolverFamilies), root
}

func seed(t *testing.T, root string, relPaths ...string) {
	t.Helper()
	for _, rel := range relPaths {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestNextVersion_EmptyArea(t *testing.T) {
	t.Parallel()

	r, _ := newTestResolver(t)
	id := Identity{Asset: "ship", Task: "surfacing", Name: "hull", Family: FamilyTexture}
	got, err := r.NextVersion(context.Background(), id)
	if err != nil {
		t.Fatalf("NextVersion() error = %v", err)
	}
	if got != 1 {
		t.Errorf("NextVersion() = %d, want 1", got)
	}
}

func TestNextVersion_MissingRoot(t *testing.T) {
	t.Parallel()

	reg, err := tmpl.Load([]byte(resolverDefs))
	if err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(t.TempDir(), "not-created-yet")
	r := NewResolver(reg, types.FilesystemPath(missing), resolverFamilies)

	got, err := r.NextVersion(context.Background(), Identity{Asset: "ship", Task: "surfacing", Name: "hull", Family: FamilyTexture})
	if err != nil {
		t.Fatalf("NextVersion() error = %v", err)
	}
	if got != 1 {
		t.Errorf("NextVersion() = %d, want 1", got)
	}
}

func TestNextVersion_MaxPlusOne(t *testing.T) {
	t.Parallel()

	r, root := newTestResolver(t)
	seed(t, root,
		"assets/ship/surfacing/publish/textures/v001/hull_BaseColor_sRGB.png",
		"assets/ship/surfacing/publish/textures/v003/hull_BaseColor_sRGB.png",
		"assets/ship/surfacing/publish/textures/v003/hull_Normal_raw.1001.png",
	)

	id := Identity{Asset: "ship", Task: "surfacing", Name: "hull", Family: FamilyTexture}
	got, err := r.NextVersion(context.Background(), id)
	if err != nil {
		t.Fatalf("NextVersion() error = %v", err)
	}
	if got != 4 {
		t.Errorf("NextVersion() = %d, want 4", got)
	}
}

func TestNextVersion_IgnoresOtherIdentities(t *testing.T) {
	t.Parallel()

	r, root := newTestResolver(t)
	seed(t, root,
		// Same prefix, different set: must not bump hull's version.
		"assets/ship/surfacing/publish/textures/v007/hulldeck_BaseColor_sRGB.png",
		// Different asset entirely.
		"assets/buggy/surfacing/publish/textures/v009/hull_BaseColor_sRGB.png",
		// Not a template-conforming path at all.
		"assets/ship/surfacing/publish/textures/notes.txt",
	)

	id := Identity{Asset: "ship", Task: "surfacing", Name: "hull", Family: FamilyTexture}
	got, err := r.NextVersion(context.Background(), id)
	if err != nil {
		t.Fatalf("NextVersion() error = %v", err)
	}
	if got != 1 {
		t.Errorf("NextVersion() = %d, want 1 (unrelated files must not match)", got)
	}
}

func TestNextVersion_StableWithoutPublish(t *testing.T) {
	t.Parallel()

	r, root := newTestResolver(t)
	seed(t, root, "assets/ship/surfacing/publish/textures/v002/hull_BaseColor_sRGB.png")

	id := Identity{Asset: "ship", Task: "surfacing", Name: "hull", Family: FamilyTexture}
	first, err := r.NextVersion(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.NextVersion(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("NextVersion() unstable: %d then %d", first, second)
	}

	// After another version lands on disk, the next call sees it.
	seed(t, root, "assets/ship/surfacing/publish/textures/v003/hull_BaseColor_sRGB.png")
	third, err := r.NextVersion(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if third != second+1 {
		t.Errorf("NextVersion() after publish = %d, want %d", third, second+1)
	}
}

func TestNextVersion_ProjectFamily(t *testing.T) {
	t.Parallel()

	r, root := newTestResolver(t)
	seed(t, root,
		"assets/ship/surfacing/publish/shipSurfacing.v004.spp",
		"assets/ship/surfacing/publish/other.v009.spp",
	)

	id := Identity{Asset: "ship", Task: "surfacing", Name: "shipSurfacing", Family: FamilyProject}
	got, err := r.NextVersion(context.Background(), id)
	if err != nil {
		t.Fatalf("NextVersion() error = %v", err)
	}
	if got != 5 {
		t.Errorf("NextVersion() = %d, want 5", got)
	}
}

func TestNextVersion_CancelledContext(t *testing.T) {
	t.Parallel()

	r, root := newTestResolver(t)
	seed(t, root, "assets/ship/surfacing/publish/textures/v001/hull_BaseColor_sRGB.png")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	id := Identity{Asset: "ship", Task: "surfacing", Name: "hull", Family: FamilyTexture}
	_, err := r.NextVersion(ctx, id)
	if !errors.Is(err, ErrVersionQuery) {
		t.Errorf("NextVersion() error = %v, want ErrVersionQuery", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("NextVersion() error = %v, want wrapped context.Canceled", err)
	}
}

func TestNextVersion_UnconfiguredFamily(t *testing.T) {
	t.Parallel()

	reg, err := tmpl.Load([]byte(resolverDefs))
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver(reg, types.FilesystemPath(t.TempDir()), map[Family][]string{})

	_, err = r.NextVersion(context.Background(), Identity{Asset: "a", Task: "b", Name: "c", Family: FamilyTexture})
	if !errors.Is(err, ErrVersionQuery) {
		t.Errorf("NextVersion() error = %v, want ErrVersionQuery", err)
	}
}
