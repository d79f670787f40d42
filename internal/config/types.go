// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
)

const (
	// ContainerEngineDocker uses Docker as the container engine.
	ContainerEngineDocker ContainerEngine = "docker"
	// ContainerEnginePodman uses Podman as the container engine.
	ContainerEnginePodman ContainerEngine = "podman"
	// ContainerEngineAuto picks whichever engine is available, Docker first.
	ContainerEngineAuto ContainerEngine = "auto"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidContainerEngine is returned when a ContainerEngine value is not recognized.
	ErrInvalidContainerEngine = errors.New("invalid container engine")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidPullConfig is returned when a PullConfig has invalid fields.
	ErrInvalidPullConfig = errors.New("invalid pull config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ContainerEngine specifies which container engine to build with.
	ContainerEngine string

	// InvalidContainerEngineError is returned when a ContainerEngine value is
	// not recognized. It wraps ErrInvalidContainerEngine for errors.Is().
	InvalidContainerEngineError struct {
		Value ContainerEngine
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not
	// recognized. It wraps ErrInvalidColorScheme for errors.Is().
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidPullConfigError is returned when a PullConfig has invalid fields.
	// It wraps ErrInvalidPullConfig for errors.Is() compatibility.
	InvalidPullConfigError struct {
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
		// ContainerEngine selects "docker", "podman", or "auto"
		ContainerEngine ContainerEngine `json:"container_engine" mapstructure:"container_engine"`
		// StrictIdentities makes a USER step naming an unknown principal a
		// build error instead of deferring the failure to the first command
		// that runs under it.
		StrictIdentities bool `json:"strict_identities" mapstructure:"strict_identities"`
		// KeepFailedContainers preserves the container of a failed step for
		// post-mortem inspection.
		KeepFailedContainers bool `json:"keep_failed_containers" mapstructure:"keep_failed_containers"`
		// Pull configures base image pull behavior
		Pull PullConfig `json:"pull" mapstructure:"pull"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// PullConfig configures base image resolution.
	PullConfig struct {
		// Retries is the number of pull attempts for transient failures
		Retries int `json:"retries" mapstructure:"retries"`
		// Always pulls the base image even when present locally
		Always bool `json:"always" mapstructure:"always"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		ContainerEngine: ContainerEngineAuto,
		Pull:            PullConfig{Retries: 3},
		UI:              UIConfig{ColorScheme: ColorSchemeAuto},
	}
}

// IsValid returns whether the ContainerEngine is a recognized value.
func (e ContainerEngine) IsValid() (bool, []error) {
	switch e {
	case ContainerEngineDocker, ContainerEnginePodman, ContainerEngineAuto:
		return true, nil
	default:
		return false, []error{&InvalidContainerEngineError{Value: e}}
	}
}

// Error implements the error interface for InvalidContainerEngineError.
func (e *InvalidContainerEngineError) Error() string {
	return fmt.Sprintf("invalid container engine %q (must be %q, %q, or %q)",
		e.Value, ContainerEngineDocker, ContainerEnginePodman, ContainerEngineAuto)
}

// Unwrap returns ErrInvalidContainerEngine for errors.Is() compatibility.
func (e *InvalidContainerEngineError) Unwrap() error { return ErrInvalidContainerEngine }

// IsValid returns whether the ColorScheme is a recognized value.
func (s ColorScheme) IsValid() (bool, []error) {
	switch s {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: s}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (must be %q, %q, or %q)",
		e.Value, ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether the PullConfig has valid fields.
func (c PullConfig) IsValid() (bool, []error) {
	if c.Retries < 1 {
		return false, []error{&InvalidPullConfigError{
			FieldErrors: []error{fmt.Errorf("retries must be at least 1, got %d", c.Retries)},
		}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPullConfigError.
func (e *InvalidPullConfigError) Error() string {
	return fmt.Sprintf("invalid pull config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidPullConfig for errors.Is() compatibility.
func (e *InvalidPullConfigError) Unwrap() error { return ErrInvalidPullConfig }

// IsValid returns whether the Config has valid fields. Field errors from all
// sub-components are collected rather than short-circuiting on the first.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ContainerEngine.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Pull.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
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
