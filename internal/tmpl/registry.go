// SPDX-License-Identifier: MPL-2.0

package tmpl

import (
	"regexp"
	"sort"

	"texpub-cli/pkg/types"
)

// includeRe matches an @template include token inside a pattern.
var includeRe = regexp.MustCompile(`@([A-Za-z_][A-Za-z0-9_]*)`)

// Registry holds the process-wide key and template definitions. It is
// populated once (RegisterKey/RegisterTemplate, typically via LoadFile) and
// treated as immutable afterwards; the pipeline passes it by construction to
// every component that needs path resolution.
type Registry struct {
	keys      map[string]*Key
	templates map[string]*Template
	names     []string // template names in registration order
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		keys:      make(map[string]*Key),
		templates: make(map[string]*Template),
	}
}

// RegisterKey adds a key definition. Registering the same name twice with an
// identical definition is a no-op; a conflicting definition returns
// DuplicateKeyError.
func (r *Registry) RegisterKey(k Key) error {
	if err := k.validate(); err != nil {
		return err
	}
	if existing, ok := r.keys[k.Name]; ok {
		if existing.equal(&k) {
			return nil
		}
		return &DuplicateKeyError{Name: k.Name}
	}
	r.keys[k.Name] = &k
	return nil
}

// RegisterTemplate parses and adds a template pattern. The pattern may
// reference previously registered templates with @name include tokens, which
// are flattened by string substitution at registration time. Returns
// UnknownKeyError for unregistered keys, UnknownTemplateError for unknown
// includes and CyclicTemplateError for self-referential includes. (Indirect
// cycles cannot form through this method because includes must already be
// registered; LoadFile detects them across a whole definition file.)
func (r *Registry) RegisterTemplate(name, pattern string) error {
	flattened, err := r.flatten(name, pattern)
	if err != nil {
		return err
	}
	t, err := newTemplate(name, flattened, r.keys)
	if err != nil {
		return err
	}
	if _, ok := r.templates[name]; !ok {
		r.names = append(r.names, name)
	}
	r.templates[name] = t
	return nil
}

// flatten substitutes @include tokens with the flattened patterns of the
// referenced templates.
func (r *Registry) flatten(name, pattern string) (string, error) {
	var flattenErr error
	flattened := includeRe.ReplaceAllStringFunc(pattern, func(token string) string {
		ref := token[1:]
		if ref == name {
			flattenErr = &CyclicTemplateError{Cycle: []string{name, name}}
			return token
		}
		base, ok := r.templates[ref]
		if !ok {
			flattenErr = &UnknownTemplateError{Name: ref}
			return token
		}
		return base.Pattern()
	})
	if flattenErr != nil {
		return "", flattenErr
	}
	return flattened, nil
}

// Template returns the named template, or UnknownTemplateError.
func (r *Registry) Template(name string) (*Template, error) {
	t, ok := r.templates[name]
	if !ok {
		return nil, &UnknownTemplateError{Name: name}
	}
	return t, nil
}

// Key returns the named key definition and whether it exists.
func (r *Registry) Key(name string) (Key, bool) {
	k, ok := r.keys[name]
	if !ok {
		return Key{}, false
	}
	return *k, true
}

// TemplateNames returns all registered template names, sorted.
func (r *Registry) TemplateNames() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	sort.Strings(names)
	return names
}

// Resolve is a convenience wrapper: look up the named template and resolve it
// with the given fields.
func (r *Registry) Resolve(name string, fields map[string]any) (types.FilesystemPath, error) {
	t, err := r.Template(name)
	if err != nil {
		return "", err
	}
	return t.Resolve(fields)
}

// Extract is a convenience wrapper: look up the named template and extract
// field values from the given path.
func (r *Registry) Extract(name string, path types.FilesystemPath) (map[string]any, error) {
	t, err := r.Template(name)
	if err != nil {
		return nil, err
	}
	return t.Extract(path)
}
