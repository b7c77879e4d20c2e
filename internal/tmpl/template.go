// SPDX-License-Identifier: MPL-2.0

package tmpl

import (
	"fmt"
	"regexp"
	"strings"

	"texpub-cli/pkg/fspath"
	"texpub-cli/pkg/types"
)

// placeholderRe matches a {key} placeholder token inside a pattern.
var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

type (
	// segment is one element of a parsed pattern: either a literal path
	// fragment or a key placeholder.
	segment struct {
		literal string // set when key is nil
		key     *Key
	}

	// Template is an ordered sequence of literal segments and key references,
	// flattened (all @includes substituted) at registration time. Templates
	// are immutable after registration.
	Template struct {
		name     string
		pattern  string // flattened pattern, slash-separated
		segments []segment
		keys     []*Key         // referenced keys, in order of first appearance
		keySet   map[string]*Key
		re       *regexp.Regexp // compiled extraction pattern
	}
)

// newTemplate parses a flattened pattern against the given key set.
func newTemplate(name, pattern string, keys map[string]*Key) (*Template, error) {
	t := &Template{
		name:    name,
		pattern: pattern,
		keySet:  make(map[string]*Key),
	}

	var re strings.Builder
	re.WriteString(`^`)

	rest := pattern
	groupIdx := 0
	for len(rest) > 0 {
		loc := placeholderRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			t.segments = append(t.segments, segment{literal: rest})
			re.WriteString(regexp.QuoteMeta(rest))
			break
		}
		if loc[0] > 0 {
			lit := rest[:loc[0]]
			t.segments = append(t.segments, segment{literal: lit})
			re.WriteString(regexp.QuoteMeta(lit))
		}
		keyName := rest[loc[2]:loc[3]]
		key, ok := keys[keyName]
		if !ok {
			return nil, &UnknownKeyError{Template: name, Key: keyName}
		}
		if _, seen := t.keySet[keyName]; !seen {
			t.keySet[keyName] = key
			t.keys = append(t.keys, key)
		}
		t.segments = append(t.segments, segment{key: key})
		// Go regexps reject duplicate group names, so groups are numbered
		// and mapped back to keys through the segment list.
		fmt.Fprintf(&re, `(?P<g%d>%s)`, groupIdx, key.subpattern())
		groupIdx++

		rest = rest[loc[1]:]
	}
	re.WriteString(`$`)

	compiled, err := regexp.Compile(re.String())
	if err != nil {
		return nil, fmt.Errorf("template %q: compiling extraction pattern: %w", name, err)
	}
	t.re = compiled

	return t, nil
}

// Name returns the template's registered name.
func (t *Template) Name() string { return t.name }

// Pattern returns the flattened, slash-separated pattern.
func (t *Template) Pattern() string { return t.pattern }

// Keys returns the names of all keys referenced by the template, in order of
// first appearance.
func (t *Template) Keys() []string {
	names := make([]string, len(t.keys))
	for i, k := range t.keys {
		names[i] = k.Name
	}
	return names
}

// Resolve produces a concrete path from the template and a field mapping.
// Every referenced key must have a value (under its name or alias) and every
// value must pass its key's type/format contract. Resolution is pure and
// deterministic: the same inputs always yield the same path.
func (t *Template) Resolve(fields map[string]any) (types.FilesystemPath, error) {
	var b strings.Builder
	for _, seg := range t.segments {
		if seg.key == nil {
			b.WriteString(seg.literal)
			continue
		}
		value, ok := fields[seg.key.Name]
		if !ok && seg.key.Alias != "" {
			value, ok = fields[seg.key.Alias]
		}
		if !ok {
			return "", &MissingFieldError{Template: t.name, Field: seg.key.Name}
		}
		rendered, err := seg.key.render(value)
		if err != nil {
			return "", &InvalidFieldValueError{
				Template: t.name,
				Field:    seg.key.Name,
				Value:    value,
				Reason:   err.Error(),
			}
		}
		b.WriteString(rendered)
	}
	return fspath.FromSlash(types.FilesystemPath(b.String())), nil
}

// Extract recovers the field values from a concrete path, the inverse of
// Resolve. The path must conform to the template's literal/placeholder
// structure; a key appearing more than once must carry the same value at
// every occurrence. Values are returned under key names (never aliases),
// typed per the key (int keys yield int values).
func (t *Template) Extract(path types.FilesystemPath) (map[string]any, error) {
	candidate := string(fspath.ToSlash(path))
	m := t.re.FindStringSubmatch(candidate)
	if m == nil {
		return nil, &NoMatchError{Template: t.name, Path: path}
	}

	fields := make(map[string]any, len(t.keys))
	raw := make(map[string]string, len(t.keys))
	groupIdx := 0
	for _, seg := range t.segments {
		if seg.key == nil {
			continue
		}
		fragment := m[groupIdx+1]
		groupIdx++
		if prev, seen := raw[seg.key.Name]; seen {
			if prev != fragment {
				return nil, &NoMatchError{Template: t.name, Path: path}
			}
			continue
		}
		raw[seg.key.Name] = fragment
		value, err := seg.key.parse(fragment)
		if err != nil {
			return nil, &NoMatchError{Template: t.name, Path: path}
		}
		fields[seg.key.Name] = value
	}
	return fields, nil
}
