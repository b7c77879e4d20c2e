// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package centralizes platform-specific concerns such as the
// runtime.GOOS name constants used when locating per-OS configuration
// directories.
package platform
