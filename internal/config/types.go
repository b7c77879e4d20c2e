// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"texpub-cli/pkg/types"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultPresetPrefix is the preset name prefix accepted for publishing.
	DefaultPresetPrefix = "shotgrid"

	// DefaultTimeoutSeconds bounds a whole publish attempt.
	DefaultTimeoutSeconds = 300
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidPresetPrefix is returned when a PresetPrefix value is empty or contains whitespace.
	ErrInvalidPresetPrefix = errors.New("invalid preset prefix")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// PresetPrefix is the prefix an export preset name must carry to be
	// accepted for publishing. A valid prefix is non-empty and contains no
	// whitespace.
	PresetPrefix string

	// InvalidPresetPrefixError is returned when a PresetPrefix value is
	// empty or contains whitespace. It wraps ErrInvalidPresetPrefix.
	InvalidPresetPrefixError struct {
		Value PresetPrefix
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// TemplatesFile points at the YAML path template definitions.
		// Empty means templates.yml next to the config file.
		TemplatesFile types.FilesystemPath `json:"templates_file" mapstructure:"templates_file"`
		// WorkRoot is the root of the work area tree.
		WorkRoot types.FilesystemPath `json:"work_root" mapstructure:"work_root"`
		// PublishRoot is the root of the publish area tree.
		PublishRoot types.FilesystemPath `json:"publish_root" mapstructure:"publish_root"`
		// RegistryRoot is where the file-backed registry stores its records.
		RegistryRoot types.FilesystemPath `json:"registry_root" mapstructure:"registry_root"`
		// PresetPrefix restricts which export presets may be published.
		PresetPrefix PresetPrefix `json:"preset_prefix" mapstructure:"preset_prefix"`
		// ExportHook is a shell script run to request an export. Empty means
		// the export area is populated out-of-band.
		ExportHook string `json:"export_hook" mapstructure:"export_hook"`
		// TimeoutSeconds bounds a whole publish attempt.
		TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// IsValid returns whether the ColorScheme is one of the recognized values.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	}
	return false, []error{&InvalidColorSchemeError{Value: c}}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether the PresetPrefix is non-empty and whitespace-free.
func (p PresetPrefix) IsValid() (bool, []error) {
	if p == "" || strings.ContainsAny(string(p), " \t\n") {
		return false, []error{&InvalidPresetPrefixError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPresetPrefixError.
func (e *InvalidPresetPrefixError) Error() string {
	return fmt.Sprintf("invalid preset prefix %q: must be non-empty without whitespace", e.Value)
}

// Unwrap returns ErrInvalidPresetPrefix for errors.Is() compatibility.
func (e *InvalidPresetPrefixError) Unwrap() error { return ErrInvalidPresetPrefix }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields. It aggregates
// field-level errors from every sub-component; path fields are validated
// only when non-empty because each has a sensible default.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	for _, p := range []types.FilesystemPath{c.TemplatesFile, c.WorkRoot, c.PublishRoot, c.RegistryRoot} {
		if p == "" {
			continue
		}
		if valid, fieldErrs := p.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.PresetPrefix.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.TimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds))
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		PresetPrefix:   DefaultPresetPrefix,
		TimeoutSeconds: DefaultTimeoutSeconds,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
