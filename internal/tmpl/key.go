// SPDX-License-Identifier: MPL-2.0

// Package tmpl implements the template-driven path resolution engine: a key
// registry of named, typed placeholders and a template registry of declarative
// path patterns built from literal fragments, {key} placeholders and
// @template includes.
//
// Registries are loaded once at startup (from a templates.yml file) and are
// read-only afterwards. They are plain values passed to every component at
// construction, never ambient global state, so tests can instantiate
// independent registries in parallel.
package tmpl

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// KeyStr accepts any non-empty value without path separators or whitespace.
	KeyStr KeyType = "str"
	// KeyInt accepts non-negative integers, optionally zero-padded on output.
	KeyInt KeyType = "int"
	// KeyAlphanum accepts values consisting solely of ASCII letters and digits.
	KeyAlphanum KeyType = "alphanum"
)

type (
	// KeyType is the semantic type of a placeholder key.
	KeyType string

	// Key is a named, typed placeholder definition usable inside templates.
	// Keys are immutable once registered.
	Key struct {
		// Name is the placeholder name as it appears in patterns: {Name}.
		Name string
		// Type determines validation and the extraction subpattern.
		Type KeyType
		// Format is the zero-pad width for int keys (e.g. "03" renders 7 as
		// "007"). Ignored for non-int keys.
		Format string
		// Alias is an alternate field name accepted by Resolve. Extraction
		// always emits values under Name. Used to bridge external naming
		// (e.g. the exporter's "udim" group feeding the "UDIM" key).
		Alias string
	}
)

// IsValid returns whether the KeyType is one of the recognized values.
func (t KeyType) IsValid() bool {
	switch t {
	case KeyStr, KeyInt, KeyAlphanum:
		return true
	}
	return false
}

// validate checks the key definition itself (not a value).
func (k *Key) validate() error {
	if strings.TrimSpace(k.Name) == "" {
		return &InvalidKeyError{Name: k.Name, Reason: "name must be non-empty"}
	}
	if !k.Type.IsValid() {
		return &InvalidKeyError{Name: k.Name, Reason: fmt.Sprintf("unrecognized type %q", k.Type)}
	}
	if k.Format != "" {
		if k.Type != KeyInt {
			return &InvalidKeyError{Name: k.Name, Reason: "format is only supported for int keys"}
		}
		if _, err := strconv.Atoi(k.Format); err != nil {
			return &InvalidKeyError{Name: k.Name, Reason: fmt.Sprintf("format %q is not a pad width", k.Format)}
		}
	}
	return nil
}

// equal reports whether two definitions are identical. Re-registering an
// identical key is a no-op; a differing definition is a conflict.
func (k *Key) equal(other *Key) bool {
	return k.Name == other.Name && k.Type == other.Type &&
		k.Format == other.Format && k.Alias == other.Alias
}

// render validates a field value against the key's contract and returns its
// string form for path substitution.
func (k *Key) render(value any) (string, error) {
	switch k.Type {
	case KeyInt:
		n, ok := toInt(value)
		if !ok {
			return "", fmt.Errorf("expected an integer")
		}
		if n < 0 {
			return "", fmt.Errorf("expected a non-negative integer")
		}
		if k.Format != "" {
			width, _ := strconv.Atoi(k.Format)
			return fmt.Sprintf("%0*d", width, n), nil
		}
		return strconv.Itoa(n), nil
	case KeyAlphanum:
		s, ok := value.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("expected a non-empty string")
		}
		for _, r := range s {
			if !isAlphanum(r) {
				return "", fmt.Errorf("character %q is not alphanumeric", r)
			}
		}
		return s, nil
	default: // KeyStr
		s, ok := value.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("expected a non-empty string")
		}
		if strings.ContainsAny(s, "/\\") {
			return "", fmt.Errorf("path separators are not allowed")
		}
		if strings.ContainsAny(s, " \t\n") {
			return "", fmt.Errorf("whitespace is not allowed")
		}
		return s, nil
	}
}

// parse converts an extracted path fragment back into the key's typed value.
func (k *Key) parse(raw string) (any, error) {
	if k.Type == KeyInt {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("fragment %q is not an integer", raw)
		}
		return n, nil
	}
	return raw, nil
}

// subpattern returns the regexp fragment used to extract this key's value
// from a concrete path.
func (k *Key) subpattern() string {
	switch k.Type {
	case KeyInt:
		return `\d+`
	case KeyAlphanum:
		return `[A-Za-z0-9]+`
	default:
		return `[^/\s]+?`
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	}
	return 0, false
}

func isAlphanum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
