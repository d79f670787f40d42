// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE validation utilities.
//
// CUE errors carry their location as a flat path slice; FormatError renders
// them in JSON-path notation so a user reading
// "config.cue: pull.retries: expected int, got string" can find the field
// without knowing CUE internals.
package cueutil
