// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPrincipal is the sentinel error wrapped by InvalidPrincipalError.
var ErrInvalidPrincipal = errors.New("invalid principal")

type (
	// Principal is a named user context under which provisioning commands
	// execute, e.g. "root" or "asterisk". Whether the principal actually
	// exists inside an image is resolved lazily when a command runs under
	// it, not when the name is declared.
	Principal string

	// InvalidPrincipalError is returned when a Principal is syntactically unusable.
	InvalidPrincipalError struct {
		Value  Principal
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidPrincipalError) Error() string {
	return fmt.Sprintf("invalid principal %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidPrincipal so callers can use errors.Is for programmatic detection.
func (e *InvalidPrincipalError) Unwrap() error { return ErrInvalidPrincipal }

// Validate returns an error if the Principal is empty or contains whitespace.
// Numeric UIDs and "user:group" forms are accepted; existence inside an image
// is deliberately not checked here.
func (p Principal) Validate() error {
	s := string(p)
	if strings.TrimSpace(s) == "" {
		return &InvalidPrincipalError{Value: p, Reason: "must be non-empty"}
	}
	if strings.ContainsAny(s, " \t\n") {
		return &InvalidPrincipalError{Value: p, Reason: "must not contain whitespace"}
	}
	return nil
}

// Name returns the user component of the principal, stripping an optional
// ":group" suffix.
func (p Principal) Name() string {
	s := string(p)
	if idx := strings.Index(s, ":"); idx != -1 {
		return s[:idx]
	}
	return s
}

// String returns the string representation of the Principal.
func (p Principal) String() string { return string(p) }
