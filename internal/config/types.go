// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces the dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces the light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultTargetDir is the build output folder used when nothing else is configured.
	DefaultTargetDir = "target"
	// DefaultDependencyDir is the folder below the target that dependencies land in.
	DefaultDependencyDir = "dependency"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError wraps ErrInvalidColorScheme.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError wraps ErrInvalidConfig and collects the field errors of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// DefaultProfile names the defaults profile used when a project names none.
		DefaultProfile string `json:"default_profile" mapstructure:"default_profile"`
		// ProfilePaths are searched for user profiles, in order, before the stock ones.
		ProfilePaths []string `json:"profile_paths" mapstructure:"profile_paths"`
		// TargetDir is the build output folder, relative to the project.
		TargetDir string `json:"target_dir" mapstructure:"target_dir"`
		// DependencyDir is the folder below TargetDir that dependencies are unpacked into.
		DependencyDir string `json:"dependency_dir" mapstructure:"dependency_dir"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose turns on debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// IsValid checks the fields CUE cannot: paths must not be whitespace-only.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for i, p := range c.ProfilePaths {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("profile_paths[%d]: empty path", i))
		}
	}
	for name, p := range map[string]string{"target_dir": c.TargetDir, "dependency_dir": c.DependencyDir} {
		if p != "" && strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("%s: whitespace-only path", name))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

func (cs ColorScheme) String() string { return string(cs) }

// IsValid reports whether cs is one of the defined schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// GlamourStyle maps the scheme onto a glamour standard style name.
func (cs ColorScheme) GlamourStyle() string {
	switch cs {
	case ColorSchemeDark:
		return "dark"
	case ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultProfile: "",
		ProfilePaths:   []string{},
		TargetDir:      DefaultTargetDir,
		DependencyDir:  DefaultDependencyDir,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
