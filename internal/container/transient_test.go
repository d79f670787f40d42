// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsTransientError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "wrapped context canceled", err: fmt.Errorf("pull: %w", context.Canceled), want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: false},
		{name: "dns failure", err: errors.New("Could not resolve host: registry-1.docker.io"), want: true},
		{name: "temporary resolve failure", err: errors.New("Temporary failure resolving 'deb.debian.org'"), want: true},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), want: true},
		{name: "io timeout", err: errors.New("net/http: i/o timeout"), want: true},
		{name: "rootless podman race", err: errors.New("cannot set ping_group_range"), want: true},
		{name: "oci runtime error", err: errors.New("OCI runtime error: unable to start"), want: true},
		{name: "overlay mount race", err: errors.New("error creating overlay mount to /var/lib/containers"), want: true},
		{name: "permanent auth failure", err: errors.New("manifest unknown: access denied"), want: false},
		{name: "plain command failure", err: errors.New("exit status 1"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsTransientError(tt.err); got != tt.want {
				t.Errorf("IsTransientError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
