// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"errors"
	"fmt"
	"strings"

	"texpub-cli/internal/texture"
	"texpub-cli/pkg/types"
)

var (
	// ErrValidation is the sentinel error wrapped by pre-copy validation
	// failures. Nothing has been written when it is returned.
	ErrValidation = errors.New("publish validation failed")
	// ErrCommit is the sentinel error wrapped by commit failures. All
	// destinations written by the failed attempt have been rolled back.
	ErrCommit = errors.New("publish commit failed")
	// ErrRegistration is the sentinel error wrapped by registration
	// failures. The committed files are left in place.
	ErrRegistration = errors.New("publish registration failed")
)

type (
	// ValidationError reports why a publish was rejected before any file
	// was copied.
	ValidationError struct {
		Reason string
		// Diagnostics carries scan findings when the rejection came from
		// non-conforming export files.
		Diagnostics []texture.Diagnostic
		Cause       error
	}

	// CommitError reports a failed or cancelled copy phase. Destinations
	// written by this attempt were removed before returning.
	CommitError struct {
		Path  types.FilesystemPath
		Cause error
	}

	// RegistrationError reports a record creation failure after the files
	// were already committed. Copied lists every committed path so the
	// caller can retry registration or clean up without guessing.
	RegistrationError struct {
		Copied []types.FilesystemPath
		Cause  error
	}
)

func (e *ValidationError) Error() string {
	if len(e.Diagnostics) == 0 {
		return fmt.Sprintf("publish rejected: %s", e.Reason)
	}
	names := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		names = append(names, d.Path.String())
	}
	return fmt.Sprintf("publish rejected: %s: %s", e.Reason, strings.Join(names, ", "))
}

// Unwrap returns the underlying cause chained with ErrValidation.
func (e *ValidationError) Unwrap() []error { return []error{ErrValidation, e.Cause} }

func (e *CommitError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("committing %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("commit failed: %v", e.Cause)
}

// Unwrap returns the underlying cause chained with ErrCommit.
func (e *CommitError) Unwrap() []error { return []error{ErrCommit, e.Cause} }

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration failed after %d file(s) were committed: %v", len(e.Copied), e.Cause)
}

// Unwrap returns the underlying cause chained with ErrRegistration.
func (e *RegistrationError) Unwrap() []error { return []error{ErrRegistration, e.Cause} }
