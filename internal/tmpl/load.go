// SPDX-License-Identifier: MPL-2.0

package tmpl

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"texpub-cli/internal/dag"
	"texpub-cli/pkg/types"

	"gopkg.in/yaml.v3"
)

type (
	// keyDef is the YAML shape of a key definition.
	keyDef struct {
		Type   string `yaml:"type"`
		Format string `yaml:"format"`
		Alias  string `yaml:"alias"`
	}

	// definitionsFile is the YAML shape of a templates.yml file: a keys
	// section of named typed placeholders and a templates section of named
	// patterns. Patterns may reference each other with @name includes in any
	// definition order; the include graph is resolved topologically and must
	// be acyclic.
	definitionsFile struct {
		Keys      map[string]keyDef `yaml:"keys"`
		Templates map[string]string `yaml:"templates"`
	}
)

// Load parses a templates.yml document into an immutable Registry.
func Load(data []byte) (*Registry, error) {
	var defs definitionsFile
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parsing template definitions: %w", err)
	}

	r := NewRegistry()

	// Keys first, in sorted order for deterministic error reporting.
	keyNames := make([]string, 0, len(defs.Keys))
	for name := range defs.Keys {
		keyNames = append(keyNames, name)
	}
	sort.Strings(keyNames)
	for _, name := range keyNames {
		def := defs.Keys[name]
		if err := r.RegisterKey(Key{
			Name:   name,
			Type:   KeyType(def.Type),
			Format: def.Format,
			Alias:  def.Alias,
		}); err != nil {
			return nil, err
		}
	}

	// Order template registration by the include graph so every @name is
	// registered before its dependents. Cycles are rejected here, eagerly.
	tmplNames := make([]string, 0, len(defs.Templates))
	for name := range defs.Templates {
		tmplNames = append(tmplNames, name)
	}
	sort.Strings(tmplNames)

	g := dag.New()
	for _, name := range tmplNames {
		g.AddNode(name)
		for _, m := range includeRe.FindAllStringSubmatch(defs.Templates[name], -1) {
			ref := m[1]
			if _, ok := defs.Templates[ref]; !ok {
				return nil, &UnknownTemplateError{Name: ref}
			}
			g.AddEdge(ref, name)
		}
	}

	order, err := g.TopologicalSort()
	if err != nil {
		var cycleErr *dag.CycleError
		if errors.As(err, &cycleErr) {
			return nil, &CyclicTemplateError{Cycle: cycleErr.Cycle}
		}
		return nil, err
	}

	for _, name := range order {
		if err := r.RegisterTemplate(name, defs.Templates[name]); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// LoadFile reads and parses a templates.yml file into an immutable Registry.
func LoadFile(path types.FilesystemPath) (*Registry, error) {
	data, err := os.ReadFile(path.String())
	if err != nil {
		return nil, fmt.Errorf("reading template definitions: %w", err)
	}
	return Load(data)
}
