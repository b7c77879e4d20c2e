// SPDX-License-Identifier: MPL-2.0

package texture

import (
	"regexp"
	"strconv"

	"texpub-cli/pkg/fspath"
	"texpub-cli/pkg/types"
)

// filenameRe matches the required exporter filename shape. The set token is
// "anything without dots", which lets the final two underscore-delimited
// segments anchor mapName and colorSpace; the optional udim tile is exactly
// four digits between the colorSpace and the extension.
var filenameRe = regexp.MustCompile(
	`^(?P<set>[^.]+)_(?P<map>[^_.]+)_(?P<colorspace>[^_.]+)(?:\.(?P<udim>\d{4}))?\.(?P<ext>\w+)$`,
)

// ParseFilename parses a bare exported filename into its semantic fields.
// Token case is preserved as-is; no normalization is applied. A filename that
// does not conform returns PatternMismatchError and no partial result.
func ParseFilename(filename string) (ExportedFile, error) {
	m := filenameRe.FindStringSubmatch(filename)
	if m == nil {
		return ExportedFile{}, &PatternMismatchError{Filename: filename}
	}

	f := ExportedFile{
		TextureSet: m[filenameRe.SubexpIndex("set")],
		MapName:    m[filenameRe.SubexpIndex("map")],
		ColorSpace: m[filenameRe.SubexpIndex("colorspace")],
		Extension:  m[filenameRe.SubexpIndex("ext")],
	}
	if tile := m[filenameRe.SubexpIndex("udim")]; tile != "" {
		n, err := strconv.Atoi(tile)
		if err != nil {
			return ExportedFile{}, &PatternMismatchError{Filename: filename}
		}
		f.UDIM = n
		f.Tiled = true
	}
	return f, nil
}

// ParsePath parses the base name of an exported file path and records the
// path on the result.
func ParsePath(path types.FilesystemPath) (ExportedFile, error) {
	f, err := ParseFilename(fspath.Base(path))
	if err != nil {
		return ExportedFile{}, err
	}
	f.Path = path
	return f, nil
}
