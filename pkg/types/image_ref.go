// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidImageRef is the sentinel error wrapped by InvalidImageRefError.
var ErrInvalidImageRef = errors.New("invalid image reference")

type (
	// ImageRef identifies an immutable image snapshot by reference string,
	// typically "repository:tag" with an optional registry host prefix.
	// The referenced image is opaque to stratum; resolution happens in the
	// container engine when the reference is first pulled or inspected.
	ImageRef string

	// InvalidImageRefError is returned when an ImageRef is syntactically unusable.
	InvalidImageRefError struct {
		Value  ImageRef
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidImageRefError) Error() string {
	return fmt.Sprintf("invalid image reference %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidImageRef so callers can use errors.Is for programmatic detection.
func (e *InvalidImageRefError) Unwrap() error { return ErrInvalidImageRef }

// Validate returns an error if the ImageRef is empty, contains whitespace,
// or has an empty repository or tag component. Deep registry-side validation
// is intentionally left to the engine.
func (r ImageRef) Validate() error {
	s := string(r)
	if strings.TrimSpace(s) == "" {
		return &InvalidImageRefError{Value: r, Reason: "must be non-empty"}
	}
	if strings.ContainsAny(s, " \t\n") {
		return &InvalidImageRefError{Value: r, Reason: "must not contain whitespace"}
	}
	// Only the final colon can separate a tag; earlier colons belong to a
	// registry host:port prefix.
	if idx := strings.LastIndex(s, ":"); idx != -1 && !strings.Contains(s[idx:], "/") {
		if idx == 0 {
			return &InvalidImageRefError{Value: r, Reason: "repository must be non-empty"}
		}
		if idx == len(s)-1 {
			return &InvalidImageRefError{Value: r, Reason: "tag must be non-empty"}
		}
	}
	return nil
}

// Repository returns the repository component of the reference (everything
// before the tag separator).
func (r ImageRef) Repository() string {
	s := string(r)
	if idx := strings.LastIndex(s, ":"); idx != -1 && !strings.Contains(s[idx:], "/") {
		return s[:idx]
	}
	return s
}

// Tag returns the tag component of the reference, or "" when no tag is declared.
func (r ImageRef) Tag() string {
	s := string(r)
	if idx := strings.LastIndex(s, ":"); idx != -1 && !strings.Contains(s[idx:], "/") {
		return s[idx+1:]
	}
	return ""
}

// String returns the string representation of the ImageRef.
func (r ImageRef) String() string { return string(r) }
