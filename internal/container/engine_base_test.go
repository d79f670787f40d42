// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"slices"
	"testing"

	"stratum-cli/pkg/types"
)

func newTestEngine(t *testing.T, rec *MockCommandRecorder) *BaseCLIEngine {
	t.Helper()
	return NewBaseCLIEngine("docker",
		WithName("docker"),
		WithExecCommand(rec.CommandFunc(t)),
	)
}

func TestRunArgs(t *testing.T) {
	t.Parallel()

	e := NewBaseCLIEngine("docker")

	tests := []struct {
		name string
		opts RunOptions
		want []string
	}{
		{
			name: "minimal",
			opts: RunOptions{
				Image:   "alpine:3.20",
				Command: []string{"true"},
			},
			want: []string{"run", "alpine:3.20", "true"},
		},
		{
			name: "named container with user",
			opts: RunOptions{
				Image:   "andrius/asterisk:latest",
				Name:    "stratum-abc-0",
				User:    "root",
				Command: []string{"/bin/sh", "-c", "apt-get update"},
			},
			want: []string{
				"run", "--name", "stratum-abc-0", "--user", "root",
				"andrius/asterisk:latest", "/bin/sh", "-c", "apt-get update",
			},
		},
		{
			name: "remove workdir and sorted env",
			opts: RunOptions{
				Image:   "alpine:3.20",
				Remove:  true,
				WorkDir: "/srv",
				Env:     map[string]string{"B": "2", "A": "1"},
				Command: []string{"env"},
			},
			want: []string{
				"run", "--rm", "-w", "/srv", "-e", "A=1", "-e", "B=2",
				"alpine:3.20", "env",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := e.RunArgs(tt.opts)
			if !slices.Equal(got, tt.want) {
				t.Errorf("RunArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommitArgs(t *testing.T) {
	t.Parallel()

	e := NewBaseCLIEngine("docker")

	tests := []struct {
		name string
		opts CommitOptions
		want []string
	}{
		{
			name: "plain layer commit",
			opts: CommitOptions{Container: "c1", Tag: "stratum-build:abc-1"},
			want: []string{"commit", "--pause=false", "c1", "stratum-build:abc-1"},
		},
		{
			name: "metadata change",
			opts: CommitOptions{
				Container: "c2",
				Tag:       "stratum-build:abc-2",
				Changes:   []string{"USER asterisk"},
			},
			want: []string{
				"commit", "--pause=false", "--change", "USER asterisk",
				"c2", "stratum-build:abc-2",
			},
		},
		{
			name: "paused commit drops the flag",
			opts: CommitOptions{Container: "c3", Tag: "t:1", Pause: true},
			want: []string{"commit", "c3", "t:1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := e.CommitArgs(tt.opts)
			if !slices.Equal(got, tt.want) {
				t.Errorf("CommitArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimpleArgBuilders(t *testing.T) {
	t.Parallel()

	e := NewBaseCLIEngine("docker")

	if got, want := e.PullArgs("alpine:3.20"), []string{"pull", "alpine:3.20"}; !slices.Equal(got, want) {
		t.Errorf("PullArgs() = %v, want %v", got, want)
	}
	if got, want := e.RemoveArgs("c1", true), []string{"rm", "-f", "c1"}; !slices.Equal(got, want) {
		t.Errorf("RemoveArgs() = %v, want %v", got, want)
	}
	if got, want := e.RemoveImageArgs("t:1", false), []string{"rmi", "t:1"}; !slices.Equal(got, want) {
		t.Errorf("RemoveImageArgs() = %v, want %v", got, want)
	}
	if got, want := e.TagArgs("t:1", "final:latest"), []string{"tag", "t:1", "final:latest"}; !slices.Equal(got, want) {
		t.Errorf("TagArgs() = %v, want %v", got, want)
	}
}

func TestRunCapturesExitCode(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	rec.ExitCode = 100
	e := newTestEngine(t, rec)

	res, err := e.Run(context.Background(), RunOptions{
		Image:   "andrius/asterisk:latest",
		Name:    "c1",
		User:    "root",
		Command: []string{"/bin/sh", "-c", "apt-get update"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ExitCode != 100 {
		t.Errorf("Run() exit code = %d, want 100", res.ExitCode)
	}
	// A plain command failure is not an infrastructure error.
	if res.Error != nil {
		t.Errorf("Run() infrastructure error = %v, want nil", res.Error)
	}
	if !rec.HasArgPair("--user", "root") {
		t.Errorf("run args missing --user root: %v", rec.LastArgs())
	}
}

func TestRunWritesOutput(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	rec.Stdout = "Reading package lists...\n"
	e := newTestEngine(t, rec)

	var out bytes.Buffer
	res, err := e.Run(context.Background(), RunOptions{
		Image:   "alpine:3.20",
		Name:    "c1",
		Command: []string{"/bin/sh", "-c", "apt-get update"},
		Stdout:  &out,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.ExitCode.IsSuccess() {
		t.Errorf("Run() exit code = %d, want 0", res.ExitCode)
	}
	if out.String() != "Reading package lists...\n" {
		t.Errorf("Run() stdout = %q", out.String())
	}
}

func TestRunOptionsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    RunOptions
		wantErr bool
	}{
		{
			name:    "valid",
			opts:    RunOptions{Image: "alpine:3.20", Command: []string{"true"}},
			wantErr: false,
		},
		{
			name:    "empty image",
			opts:    RunOptions{Command: []string{"true"}},
			wantErr: true,
		},
		{
			name:    "empty command",
			opts:    RunOptions{Image: "alpine:3.20"},
			wantErr: true,
		},
		{
			name:    "whitespace user",
			opts:    RunOptions{Image: "alpine:3.20", User: "a b", Command: []string{"true"}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPullInvokesEngine(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	e := newTestEngine(t, rec)

	if err := e.Pull(context.Background(), "andrius/asterisk:latest"); err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	rec.AssertInvocationCount(t, 1)
	rec.AssertArgsContain(t, "pull andrius/asterisk:latest")
}

func TestPullRejectsInvalidReference(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	e := newTestEngine(t, rec)

	if err := e.Pull(context.Background(), "no spaces allowed"); err == nil {
		t.Fatal("Pull() expected error for invalid reference")
	}
	// Validation failures never reach the engine binary.
	rec.AssertInvocationCount(t, 0)
}

func TestCommitFailureIsActionable(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	rec.ExitCode = 1
	e := newTestEngine(t, rec)

	err := e.Commit(context.Background(), CommitOptions{Container: "c1", Tag: "t:1"})
	if err == nil {
		t.Fatal("Commit() expected error")
	}
}

func TestImageUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stdout string
		want   types.Principal
	}{
		{name: "declared user", stdout: "asterisk\n", want: "asterisk"},
		{name: "unset user", stdout: "\n", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := NewMockCommandRecorder()
			rec.Stdout = tt.stdout
			e := newTestEngine(t, rec)

			got, err := e.ImageUser(context.Background(), "andrius/asterisk:latest")
			if err != nil {
				t.Fatalf("ImageUser() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ImageUser() = %q, want %q", got, tt.want)
			}
			rec.AssertArgsContain(t, "{{.Config.User}}")
		})
	}
}
