// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error context for stratum.
//
// ActionableError carries what operation failed, what resource was involved,
// and suggestions for fixing it; ErrorContext is its fluent builder. The
// Issue catalog maps well-known failure classes (descriptor not found, base
// image unresolvable, step failure, ...) to markdown help text rendered with
// glamour.
package issue
