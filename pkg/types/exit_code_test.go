// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     ExitCode
		wantValid bool
	}{
		{name: "zero is valid", value: 0, wantValid: true},
		{name: "one is valid", value: 1, wantValid: true},
		{name: "125 is valid", value: 125, wantValid: true},
		{name: "255 is valid", value: 255, wantValid: true},
		{name: "negative is invalid", value: -1, wantValid: false},
		{name: "256 is invalid", value: 256, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if (err == nil) != tt.wantValid {
				t.Errorf("ExitCode(%d).Validate() error = %v, wantValid %v", tt.value, err, tt.wantValid)
			}
			if !tt.wantValid && !errors.Is(err, ErrInvalidExitCode) {
				t.Errorf("error does not wrap ErrInvalidExitCode: %v", err)
			}
		})
	}
}

func TestExitCodeIsEngineError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code ExitCode
		want bool
	}{
		{0, false},
		{1, false},
		{125, true},
		{126, true},
		{127, false},
	}

	for _, tt := range tests {
		if got := tt.code.IsEngineError(); got != tt.want {
			t.Errorf("ExitCode(%d).IsEngineError() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestExitCodeFromError(t *testing.T) {
	t.Parallel()

	if got := ExitCodeFromError(nil); got != 0 {
		t.Errorf("ExitCodeFromError(nil) = %v, want 0", got)
	}
	if got := ExitCodeFromError(fmt.Errorf("binary not found")); got != 1 {
		t.Errorf("ExitCodeFromError(plain error) = %v, want 1", got)
	}
}
