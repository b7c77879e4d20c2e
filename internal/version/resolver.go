// SPDX-License-Identifier: MPL-2.0

package version

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"texpub-cli/internal/tmpl"
	"texpub-cli/pkg/types"
)

// Resolver computes next version numbers by scanning an area root and
// extracting existing paths against the templates of a family. Matching uses
// full template extraction, never substring matching, so unrelated files
// sharing a name prefix cannot disturb the result.
//
// Resolver is read-only and safe for concurrent use; serialization of
// allocate-then-commit belongs to the publish orchestrator's identity lock.
type Resolver struct {
	reg  *tmpl.Registry
	root types.FilesystemPath
	// familyTemplates maps each family to the template names whose resolved
	// paths carry that family's version (the texture family has one plain
	// and one UDIM-tiled template).
	familyTemplates map[Family][]string
}

// NewResolver creates a Resolver scanning under root.
func NewResolver(reg *tmpl.Registry, root types.FilesystemPath, familyTemplates map[Family][]string) *Resolver {
	return &Resolver{reg: reg, root: root, familyTemplates: familyTemplates}
}

// NextVersion returns the next monotonically increasing version for the
// identity: one greater than the maximum existing version found in the area,
// or 1 when the area does not exist or holds nothing for this identity.
// Without an intervening publish the result is stable across calls. Scan
// failures other than a missing area return VersionQueryError; the resolver
// never guesses.
func (r *Resolver) NextVersion(ctx context.Context, id Identity) (int, error) {
	max, err := r.maxExisting(ctx, id)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// maxExisting scans for the highest published version of the identity,
// returning 0 when none exists.
func (r *Resolver) maxExisting(ctx context.Context, id Identity) (int, error) {
	templates := r.familyTemplates[id.Family]
	if len(templates) == 0 {
		return 0, &VersionQueryError{Identity: id, Cause: errors.New("no templates configured for family")}
	}

	max := 0
	walkErr := filepath.WalkDir(r.root.String(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == r.root.String() {
				return filepath.SkipAll
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, err := filepath.Rel(r.root.String(), path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		// Directories are candidates too: the texture-set parent family's
		// template resolves to a versioned directory, not a file.
		for _, name := range templates {
			fields, err := r.reg.Extract(name, types.FilesystemPath(rel))
			if err != nil {
				continue
			}
			if !fieldsMatch(fields, id) {
				continue
			}
			if v, ok := fields["version"].(int); ok && v > max {
				max = v
			}
		}
		return nil
	})
	if walkErr != nil {
		return 0, &VersionQueryError{Identity: id, Cause: walkErr}
	}
	return max, nil
}

// fieldsMatch reports whether extracted template fields belong to the
// identity. The base name is carried by the "name" key for project paths and
// by the "texture_set" key for texture paths.
func fieldsMatch(fields map[string]any, id Identity) bool {
	if asset, _ := fields["Asset"].(string); asset != id.Asset {
		return false
	}
	if task, _ := fields["task_name"].(string); task != id.Task {
		return false
	}
	if name, ok := fields["name"].(string); ok {
		return name == id.Name
	}
	if set, ok := fields["texture_set"].(string); ok {
		return set == id.Name
	}
	// Templates without a base-name key (e.g. the set parent area) version
	// per (asset, task) only.
	return true
}
