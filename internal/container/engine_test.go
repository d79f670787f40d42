// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"testing"
)

func mockDockerEngine(t *testing.T, rec *MockCommandRecorder) *DockerEngine {
	t.Helper()
	return &DockerEngine{
		BaseCLIEngine: NewBaseCLIEngine("docker",
			WithName(string(EngineTypeDocker)),
			WithExecCommand(rec.CommandFunc(t)),
		),
	}
}

func mockPodmanEngine(t *testing.T, rec *MockCommandRecorder) *PodmanEngine {
	t.Helper()
	return &PodmanEngine{
		BaseCLIEngine: NewBaseCLIEngine("podman",
			WithName(string(EngineTypePodman)),
			WithExecCommand(rec.CommandFunc(t)),
		),
	}
}

func TestDockerVersion(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	rec.Stdout = "27.3.1\n"
	e := mockDockerEngine(t, rec)

	got, err := e.Version(context.Background())
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if got != "27.3.1" {
		t.Errorf("Version() = %q, want %q", got, "27.3.1")
	}
	rec.AssertArgsContain(t, "{{.Server.Version}}")
}

func TestDockerImageExists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		exitCode int
		want     bool
	}{
		{name: "present", exitCode: 0, want: true},
		{name: "missing", exitCode: 1, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := NewMockCommandRecorder()
			rec.ExitCode = tt.exitCode
			e := mockDockerEngine(t, rec)

			got, err := e.ImageExists(context.Background(), "andrius/asterisk:latest")
			if err != nil {
				t.Fatalf("ImageExists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ImageExists() = %v, want %v", got, tt.want)
			}
			rec.AssertArgsContain(t, "image inspect andrius/asterisk:latest")
		})
	}
}

func TestPodmanImageExists(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	e := mockPodmanEngine(t, rec)

	got, err := e.ImageExists(context.Background(), "andrius/asterisk:latest")
	if err != nil {
		t.Fatalf("ImageExists() error = %v", err)
	}
	if !got {
		t.Error("ImageExists() = false, want true")
	}
	rec.AssertArgsContain(t, "image exists andrius/asterisk:latest")
}

func TestPodmanVersion(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	rec.Stdout = "5.2.3\n"
	e := mockPodmanEngine(t, rec)

	got, err := e.Version(context.Background())
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if got != "5.2.3" {
		t.Errorf("Version() = %q, want %q", got, "5.2.3")
	}
	rec.AssertArgsContain(t, "{{.Version}}")
}

func TestNewEngineUnknownType(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine("containerd"); err == nil {
		t.Fatal("NewEngine() expected error for unknown engine type")
	}
}

func TestErrEngineNotAvailable(t *testing.T) {
	t.Parallel()

	err := &ErrEngineNotAvailable{Engine: "docker", Reason: "not installed"}
	want := "container engine 'docker' is not available: not installed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
