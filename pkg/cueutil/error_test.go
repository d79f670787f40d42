// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

func TestFormatErrorNil(t *testing.T) {
	t.Parallel()
	if got := FormatError(nil, "config.cue"); got != nil {
		t.Errorf("FormatError(nil) = %v, want nil", got)
	}
}

func TestFormatErrorNonCUE(t *testing.T) {
	t.Parallel()
	err := FormatError(errors.New("boom"), "config.cue")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "config.cue") {
		t.Errorf("FormatError() = %q, want file path included", err)
	}
}

func TestFormatErrorIncludesFieldPath(t *testing.T) {
	t.Parallel()

	ctx := cuecontext.New()
	schema := ctx.CompileString(`#C: { pull: { retries: int } }`)
	value := ctx.CompileString(`pull: retries: "three"`)
	unified := schema.LookupPath(cue.ParsePath("#C")).Unify(value)

	verr := unified.Validate(cue.Concrete(false))
	if verr == nil {
		t.Fatal("expected validation error")
	}
	err := FormatError(verr, "config.cue")
	if !strings.Contains(err.Error(), "config.cue") {
		t.Errorf("FormatError() = %q, want file path included", err)
	}
	if !strings.Contains(err.Error(), "retries") {
		t.Errorf("FormatError() = %q, want field path included", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path []string
		want string
	}{
		{name: "empty", path: nil, want: ""},
		{name: "nested fields", path: []string{"pull", "retries"}, want: "pull.retries"},
		{name: "array index", path: []string{"steps", "0", "user"}, want: "steps[0].user"},
		{name: "leading index stays literal", path: []string{"0", "user"}, want: "0.user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatPath(tt.path); got != tt.want {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 10), 10, "f.cue"); err != nil {
		t.Errorf("CheckFileSize() at limit = %v, want nil", err)
	}
	if err := CheckFileSize(make([]byte, 11), 10, "f.cue"); err == nil {
		t.Error("CheckFileSize() over limit = nil, want error")
	}
}

func TestValidationErrorString(t *testing.T) {
	t.Parallel()

	withPath := &ValidationError{FilePath: "config.cue", CUEPath: "ui.verbose", Message: "expected bool"}
	if got, want := withPath.Error(), "config.cue: ui.verbose: expected bool"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	withoutPath := &ValidationError{FilePath: "config.cue", Message: "syntax error"}
	if got, want := withoutPath.Error(), "config.cue: syntax error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
