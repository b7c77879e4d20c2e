// SPDX-License-Identifier: MPL-2.0

package texture

import (
	"errors"
	"fmt"
)

var (
	// ErrPatternMismatch is the sentinel error wrapped by PatternMismatchError.
	ErrPatternMismatch = errors.New("filename does not match export pattern")
	// ErrInconsistentTextureSet is the sentinel error wrapped by InconsistentTextureSetError.
	ErrInconsistentTextureSet = errors.New("inconsistent texture set")
)

type (
	// PatternMismatchError is returned when an exported filename does not
	// conform to <textureSet>_<mapName>_<colorSpace>[.<udim>].<extension>.
	// The parse never returns a partial result alongside this error.
	PatternMismatchError struct {
		Filename string
	}

	// InconsistentTextureSetError is returned when aggregation finds
	// conflicting files inside one texture set group, e.g. the same
	// (map, colorSpace, tile) combination appearing twice.
	InconsistentTextureSetError struct {
		TextureSet string
		MapName    string
		Reason     string
	}
)

func (e *PatternMismatchError) Error() string {
	return fmt.Sprintf("filename %q does not match the required pattern "+
		"<textureSet>_<mapName>_<colorSpace>[.<udim>].<extension>", e.Filename)
}

// Unwrap returns ErrPatternMismatch for errors.Is() compatibility.
func (e *PatternMismatchError) Unwrap() error { return ErrPatternMismatch }

func (e *InconsistentTextureSetError) Error() string {
	return fmt.Sprintf("texture set %q, map %q: %s", e.TextureSet, e.MapName, e.Reason)
}

// Unwrap returns ErrInconsistentTextureSet for errors.Is() compatibility.
func (e *InconsistentTextureSetError) Unwrap() error { return ErrInconsistentTextureSet }
