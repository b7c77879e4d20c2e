// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/texpub/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/texpub/config.cue on macOS, %APPDATA%\texpub\config.cue
// on Windows). The package provides type-safe configuration access covering the work,
// publish and registry roots, the accepted export preset prefix, the export hook and
// UI settings.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
