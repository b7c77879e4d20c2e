// SPDX-License-Identifier: MPL-2.0

// Package registry records published artifacts so downstream tooling can
// discover them. Publishing treats registration as the last, non-rollback
// step: files already committed to the publish area stay on disk even when
// record creation fails.
package registry

import (
	"context"
	"errors"
	"fmt"

	"texpub-cli/internal/version"
	"texpub-cli/pkg/types"
)

const (
	// TypeTexture is the record type of a single published texture map.
	TypeTexture RecordType = "Texture"
	// TypeTextureSet is the record type of the parent record grouping the
	// map records of one texture set publish.
	TypeTextureSet RecordType = "Texture Set"
	// TypeProject is the record type of a published work file.
	TypeProject RecordType = "Project"
)

// ErrRecordCreate is the sentinel error wrapped by record creation failures.
var ErrRecordCreate = errors.New("record creation failed")

type (
	// RecordType classifies a published artifact.
	RecordType string

	// RecordID identifies a created record within its registry.
	RecordID int64

	// Record describes one published artifact. Path points at the committed
	// publish location: a file for Texture and Project records, the
	// versioned directory for Texture Set records. For tiled maps Path is
	// the abstract path with the UDIM token left in place.
	Record struct {
		Type        RecordType           `toml:"type"`
		Name        string               `toml:"name"`
		Version     int                  `toml:"version"`
		Asset       string               `toml:"asset"`
		Task        string               `toml:"task"`
		Path        types.FilesystemPath `toml:"path"`
		ColorSpace  string               `toml:"colorspace,omitempty"`
		Tiled       bool                 `toml:"tiled,omitempty"`
		Description string               `toml:"description,omitempty"`
		// Children links a Texture Set record to its map records.
		Children []RecordID `toml:"children,omitempty"`
	}

	// Client creates and queries publish records. Implementations must be
	// safe for concurrent use.
	Client interface {
		// CreateRecord persists the record and returns its assigned id.
		CreateRecord(ctx context.Context, rec Record) (RecordID, error)
		// QueryMaxVersion returns the highest registered version for the
		// identity and whether any record exists for it. The filesystem
		// remains the source of truth for version allocation; this is a
		// reporting view of what has been registered.
		QueryMaxVersion(ctx context.Context, id version.Identity) (int, bool, error)
	}

	// RecordCreateError reports a failed CreateRecord call.
	RecordCreateError struct {
		Record Record
		Cause  error
	}
)

// TypeForFamily maps a version family to the record type registered for it.
func TypeForFamily(f version.Family) (RecordType, error) {
	switch f {
	case version.FamilyProject:
		return TypeProject, nil
	case version.FamilyTexture:
		return TypeTexture, nil
	case version.FamilyTextureSet:
		return TypeTextureSet, nil
	}
	return "", fmt.Errorf("no record type for family %q", f)
}

// Matches reports whether the record belongs to the identity. Texture map
// records carry the set name as a publish-name prefix, set and project
// records carry it exactly.
func (r Record) Matches(id version.Identity) bool {
	t, err := TypeForFamily(id.Family)
	if err != nil || r.Type != t {
		return false
	}
	if r.Asset != id.Asset || r.Task != id.Task {
		return false
	}
	switch id.Family {
	case version.FamilyProject:
		return r.Name == id.Name
	case version.FamilyTextureSet:
		return r.Name == fmt.Sprintf("%s_%s_%s", id.Asset, id.Task, id.Name)
	case version.FamilyTexture:
		prefix := fmt.Sprintf("%s_%s_%s_", id.Asset, id.Task, id.Name)
		return len(r.Name) > len(prefix) && r.Name[:len(prefix)] == prefix
	}
	return false
}

// Validate reports whether the record carries the fields every type
// requires.
func (r Record) Validate() error {
	switch r.Type {
	case TypeTexture, TypeTextureSet, TypeProject:
	default:
		return fmt.Errorf("unknown record type %q", r.Type)
	}
	if r.Name == "" {
		return errors.New("record name is empty")
	}
	if r.Version < 1 {
		return fmt.Errorf("record version %d is not positive", r.Version)
	}
	if r.Path == "" {
		return errors.New("record path is empty")
	}
	if r.Type != TypeTextureSet && len(r.Children) > 0 {
		return fmt.Errorf("%s record must not link children", r.Type)
	}
	return nil
}

func (e *RecordCreateError) Error() string {
	return fmt.Sprintf("creating %s record %q v%d: %v", e.Record.Type, e.Record.Name, e.Record.Version, e.Cause)
}

// Unwrap returns the underlying cause chained with ErrRecordCreate.
func (e *RecordCreateError) Unwrap() []error { return []error{ErrRecordCreate, e.Cause} }
