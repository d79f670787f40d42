// SPDX-License-Identifier: MPL-2.0

// Package types provides small validated value types shared across stratum
// packages: process exit codes, image references, and principal names.
//
// Each type follows the same pattern: a defined string/int type, a Validate
// method returning a typed *Error that wraps a package-level sentinel, and a
// String method. Callers detect specific failures with errors.Is against the
// sentinel or errors.As against the typed error.
package types
