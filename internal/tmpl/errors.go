// SPDX-License-Identifier: MPL-2.0

package tmpl

import (
	"errors"
	"fmt"
	"strings"

	"texpub-cli/pkg/types"
)

var (
	// ErrDuplicateKey is the sentinel error wrapped by DuplicateKeyError.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidKey is the sentinel error wrapped by InvalidKeyError.
	ErrInvalidKey = errors.New("invalid key definition")
	// ErrUnknownKey is the sentinel error wrapped by UnknownKeyError.
	ErrUnknownKey = errors.New("unknown key")
	// ErrUnknownTemplate is the sentinel error wrapped by UnknownTemplateError.
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrCyclicTemplate is the sentinel error wrapped by CyclicTemplateError.
	ErrCyclicTemplate = errors.New("cyclic template include")
	// ErrMissingField is the sentinel error wrapped by MissingFieldError.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidFieldValue is the sentinel error wrapped by InvalidFieldValueError.
	ErrInvalidFieldValue = errors.New("invalid field value")
	// ErrNoMatch is the sentinel error wrapped by NoMatchError.
	ErrNoMatch = errors.New("path does not match template")
)

type (
	// DuplicateKeyError is returned when a key name is registered a second
	// time with a conflicting definition. Re-registering an identical
	// definition is a no-op and does not produce this error.
	DuplicateKeyError struct {
		Name string
	}

	// InvalidKeyError is returned when a key definition itself is malformed
	// (empty name, unrecognized type, bad format spec).
	InvalidKeyError struct {
		Name   string
		Reason string
	}

	// UnknownKeyError is returned when a template pattern references a key
	// that is not present in the registry.
	UnknownKeyError struct {
		Template string
		Key      string
	}

	// UnknownTemplateError is returned when an @include or lookup names a
	// template that is not present in the registry.
	UnknownTemplateError struct {
		Name string
	}

	// CyclicTemplateError is returned when template @include references form
	// a cycle. Cycles are rejected eagerly at registration/load time, never
	// deferred to resolution time.
	CyclicTemplateError struct {
		Cycle []string
	}

	// MissingFieldError is returned by Resolve when a placeholder has no
	// value in the provided field mapping (neither under the key name nor
	// its alias).
	MissingFieldError struct {
		Template string
		Field    string
	}

	// InvalidFieldValueError is returned by Resolve when a provided value
	// fails its key's type/format contract.
	InvalidFieldValueError struct {
		Template string
		Field    string
		Value    any
		Reason   string
	}

	// NoMatchError is returned by Extract when a concrete path does not
	// conform to the template's literal/placeholder structure.
	NoMatchError struct {
		Template string
		Path     types.FilesystemPath
	}
)

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q: already registered with a conflicting definition", e.Name)
}

// Unwrap returns ErrDuplicateKey for errors.Is() compatibility.
func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key definition %q: %s", e.Name, e.Reason)
}

// Unwrap returns ErrInvalidKey for errors.Is() compatibility.
func (e *InvalidKeyError) Unwrap() error { return ErrInvalidKey }

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("template %q references unknown key %q", e.Template, e.Key)
}

// Unwrap returns ErrUnknownKey for errors.Is() compatibility.
func (e *UnknownKeyError) Unwrap() error { return ErrUnknownKey }

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("unknown template %q", e.Name)
}

// Unwrap returns ErrUnknownTemplate for errors.Is() compatibility.
func (e *UnknownTemplateError) Unwrap() error { return ErrUnknownTemplate }

func (e *CyclicTemplateError) Error() string {
	return fmt.Sprintf("cyclic template include: %s", strings.Join(e.Cycle, " -> "))
}

// Unwrap returns ErrCyclicTemplate for errors.Is() compatibility.
func (e *CyclicTemplateError) Unwrap() error { return ErrCyclicTemplate }

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("template %q: no value provided for field %q", e.Template, e.Field)
}

// Unwrap returns ErrMissingField for errors.Is() compatibility.
func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

func (e *InvalidFieldValueError) Error() string {
	return fmt.Sprintf("template %q: field %q value %v is invalid: %s", e.Template, e.Field, e.Value, e.Reason)
}

// Unwrap returns ErrInvalidFieldValue for errors.Is() compatibility.
func (e *InvalidFieldValueError) Unwrap() error { return ErrInvalidFieldValue }

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("path %q does not match template %q", e.Path, e.Template)
}

// Unwrap returns ErrNoMatch for errors.Is() compatibility.
func (e *NoMatchError) Unwrap() error { return ErrNoMatch }
