// SPDX-License-Identifier: MPL-2.0

package texture

import (
	"errors"
	"testing"
)

func TestParseFilename_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		want     ExportedFile
	}{
		{
			"hull_BaseColor_sRGB.png",
			ExportedFile{TextureSet: "hull", MapName: "BaseColor", ColorSpace: "sRGB", Extension: "png"},
		},
		{
			"hull_Normal_raw.1001.png",
			ExportedFile{TextureSet: "hull", MapName: "Normal", ColorSpace: "raw", UDIM: 1001, Tiled: true, Extension: "png"},
		},
		{
			// textureSet itself may contain underscores; the last two
			// underscore segments anchor mapName and colorSpace.
			"landing_gear_Metallic_ACEScg.exr",
			ExportedFile{TextureSet: "landing_gear", MapName: "Metallic", ColorSpace: "ACEScg", Extension: "exr"},
		},
		{
			"DefaultMaterial_BaseColor_ACEScg.1002.exr",
			ExportedFile{TextureSet: "DefaultMaterial", MapName: "BaseColor", ColorSpace: "ACEScg", UDIM: 1002, Tiled: true, Extension: "exr"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFilename(tt.filename)
			if err != nil {
				t.Fatalf("ParseFilename(%q) error = %v", tt.filename, err)
			}
			if got != tt.want {
				t.Errorf("ParseFilename(%q) = %+v, want %+v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestParseFilename_CasePreserved(t *testing.T) {
	t.Parallel()

	got, err := ParseFilename("Hull_basecolor_SRgb.PNG")
	if err != nil {
		t.Fatalf("ParseFilename() error = %v", err)
	}
	if got.MapName != "basecolor" || got.ColorSpace != "SRgb" || got.Extension != "PNG" {
		t.Errorf("token case was not preserved: %+v", got)
	}
}

func TestParseFilename_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
	}{
		{"missing colorspace segment", "hull_BaseColor.png"},
		{"no segments at all", "texture.png"},
		{"no extension", "hull_BaseColor_sRGB"},
		{"udim not four digits", "hull_Normal_raw.101.png"},
		{"udim five digits", "hull_Normal_raw.10001.png"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFilename(tt.filename)
			if !errors.Is(err, ErrPatternMismatch) {
				t.Fatalf("ParseFilename(%q) error = %v, want ErrPatternMismatch", tt.filename, err)
			}
			if got != (ExportedFile{}) {
				t.Errorf("ParseFilename(%q) returned partial result %+v alongside error", tt.filename, got)
			}
			var mismatchErr *PatternMismatchError
			if !errors.As(err, &mismatchErr) {
				t.Fatalf("error type = %T, want *PatternMismatchError", err)
			}
			if mismatchErr.Filename != tt.filename {
				t.Errorf("PatternMismatchError.Filename = %q, want %q", mismatchErr.Filename, tt.filename)
			}
		})
	}
}

func TestParsePath_RecordsPath(t *testing.T) {
	t.Parallel()

	f, err := ParsePath("work/export/hull_BaseColor_sRGB.png")
	if err != nil {
		t.Fatalf("ParsePath() error = %v", err)
	}
	if f.Path != "work/export/hull_BaseColor_sRGB.png" {
		t.Errorf("Path = %q, want the input path", f.Path)
	}
	if f.TextureSet != "hull" {
		t.Errorf("TextureSet = %q, want %q", f.TextureSet, "hull")
	}
}

func TestParseFilename_MapNameWithUnderscore(t *testing.T) {
	t.Parallel()

	// An underscore inside what the exporter intended as the map name shifts
	// the anchoring: "Base_Color" parses as set "hull_Base", map "Color".
	// The constraint that map names carry no underscores is what keeps the
	// pattern unambiguous, so this parse must succeed with shifted fields
	// rather than guess intent.
	got, err := ParseFilename("hull_Base_Color_sRGB.png")
	if err != nil {
		t.Fatalf("ParseFilename() error = %v", err)
	}
	if got.TextureSet != "hull_Base" || got.MapName != "Color" {
		t.Errorf("anchoring mismatch: %+v", got)
	}
}
