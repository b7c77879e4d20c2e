// SPDX-License-Identifier: MPL-2.0

// Package version computes the next publish version for an identity by
// scanning the publish area through template extraction. The filesystem is
// the source of truth for "what versions exist": there is no index file that
// could drift out of sync with the directory tree, at the cost of a scan per
// query.
package version

import (
	"errors"
	"fmt"
)

const (
	// FamilyProject scopes versions of published work files.
	FamilyProject Family = "project"
	// FamilyTexture scopes versions of individual published texture maps.
	FamilyTexture Family = "texture"
	// FamilyTextureSet scopes versions of texture-set parent artifacts.
	FamilyTextureSet Family = "texture_set"
)

// ErrVersionQuery is the sentinel error wrapped by VersionQueryError.
var ErrVersionQuery = errors.New("version query failed")

type (
	// Family is the template family an identity versions against. Version
	// numbers are independent per family.
	Family string

	// Identity is the (asset, task, base name, template family) tuple that
	// scopes version numbering. For texture families, Name is the
	// underscore-stripped texture set name; for the project family it is the
	// work file base name.
	Identity struct {
		Asset  string
		Task   string
		Name   string
		Family Family
	}

	// VersionQueryError is returned when the existing-version scan cannot
	// complete. It is fatal to the publish attempt: the resolver never falls
	// back to a guessed version.
	VersionQueryError struct {
		Identity Identity
		Cause    error
	}
)

// IsValid returns whether the Family is one of the recognized values.
func (f Family) IsValid() bool {
	switch f {
	case FamilyProject, FamilyTexture, FamilyTextureSet:
		return true
	}
	return false
}

// String renders the identity for logs and error messages.
func (id Identity) String() string {
	return fmt.Sprintf("%s/%s/%s@%s", id.Asset, id.Task, id.Name, id.Family)
}

func (e *VersionQueryError) Error() string {
	return fmt.Sprintf("version query for %s failed: %v", e.Identity, e.Cause)
}

// Unwrap returns the underlying cause chained with ErrVersionQuery.
func (e *VersionQueryError) Unwrap() []error { return []error{ErrVersionQuery, e.Cause} }
