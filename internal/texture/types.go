// SPDX-License-Identifier: MPL-2.0

// Package texture parses exporter-produced texture filenames, scans export
// work areas and aggregates per-map files into logical texture sets.
//
// The exporter's naming scheme is not under our control; every filename is
// required to follow
//
//	<textureSet>_<mapName>_<colorSpace>[.<udim>].<extension>
//
// where mapName and colorSpace contain no underscores or dots and udim is a
// four digit tile number. Anchoring on the last two underscore-delimited
// segments keeps the parse unambiguous precisely because mapName is
// constrained this way; textureSet itself may contain underscores.
package texture

import (
	"strings"

	"texpub-cli/pkg/types"
)

type (
	// ExportedFile is one file produced by the exporter in the work area,
	// parsed into its semantic fields. The file is owned by the work area:
	// publishing copies it and never mutates or removes the original.
	ExportedFile struct {
		// Path is the file's location in the export work area.
		Path types.FilesystemPath
		// TextureSet is the set token exactly as exported (may contain underscores).
		TextureSet string
		// MapName is the texture map token (BaseColor, Normal, ...), case preserved.
		MapName string
		// ColorSpace is the color space token (sRGB, raw, ACEScg, ...), case preserved.
		ColorSpace string
		// UDIM is the tile number when Tiled, 0 otherwise.
		UDIM int
		// Tiled reports whether the filename carried a udim tile suffix.
		Tiled bool
		// Extension is the file extension without the leading dot.
		Extension string
	}

	// TextureMap is one logical map inside a texture set: a single file, or a
	// UDIM tile sequence of files that differ only by tile number. The same
	// map name exported under two color spaces forms two distinct TextureMaps.
	TextureMap struct {
		Name       string
		ColorSpace string
		Tiled      bool
		// Files holds the member files, tile-ordered when Tiled.
		Files []ExportedFile
	}

	// TextureSet is the logical publish artifact: all maps that share one
	// exported textureSet token, published together under one version.
	TextureSet struct {
		// Name is the raw set token as exported.
		Name string
		// Tiled reports whether any member map is a UDIM sequence.
		Tiled bool
		// Maps are the member maps in order of first appearance.
		Maps []TextureMap
	}
)

// PublishName returns the set name used for publish fields: the raw exported
// token with underscores stripped, since the set token feeds an alphanumeric
// template key.
func (s *TextureSet) PublishName() string {
	return strings.ReplaceAll(s.Name, "_", "")
}

// FileCount returns the total number of member files across all maps.
func (s *TextureSet) FileCount() int {
	n := 0
	for _, m := range s.Maps {
		n += len(m.Files)
	}
	return n
}
