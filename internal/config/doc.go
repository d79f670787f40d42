// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/stratum/config.cue (or XDG equivalent
// on Linux, ~/Library/Application Support/stratum/config.cue on macOS,
// %APPDATA%\stratum\config.cue on Windows). It covers container engine
// selection, identity checking strictness, pull behavior, and UI settings.
//
// Files are validated against a CUE schema (config_schema.cue) so invalid
// configurations fail with a field-level error instead of a misbehaving build.
package config
