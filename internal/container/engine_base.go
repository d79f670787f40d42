// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"stratum-cli/internal/issue"
	"stratum-cli/pkg/types"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine provides the common implementation for CLI-based
	// container engines. Docker and Podman engines embed this struct;
	// methods identical across both (Pull, Run, Commit, Remove, RemoveImage,
	// TagImage, ImageUser and the argument builders) live here, while
	// engine-specific methods (Available, Version, ImageExists) remain on
	// the concrete types.
	BaseCLIEngine struct {
		name        string // engine name for error messages (docker, podman)
		binaryPath  string // resolved at construction via exec.LookPath
		execCommand ExecCommandFunc
	}
)

// --- Option Functions ---

// WithName sets the engine name used in error messages.
func WithName(name string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.name = name
	}
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.execCommand = fn
	}
}

// --- Constructor ---

// NewBaseCLIEngine creates a new base engine with the given binary path.
func NewBaseCLIEngine(binaryPath string, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:  binaryPath,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// --- Accessors ---

// Name returns the engine name used in error messages.
func (e *BaseCLIEngine) Name() string {
	return e.name
}

// BinaryPath returns the path to the container engine binary.
func (e *BaseCLIEngine) BinaryPath() string {
	return e.binaryPath
}

// --- Argument Builders ---

// PullArgs constructs arguments for an image pull command.
func (e *BaseCLIEngine) PullArgs(image types.ImageRef) []string {
	return []string{"pull", string(image)}
}

// RunArgs constructs arguments for a container run command.
//
// Generated command: <binary> run [options] <image> [command...]
func (e *BaseCLIEngine) RunArgs(opts RunOptions) []string {
	args := []string{"run"}

	if opts.Remove {
		args = append(args, "--rm")
	}

	if opts.Name != "" {
		args = append(args, "--name", string(opts.Name))
	}

	if opts.User != "" {
		args = append(args, "--user", string(opts.User))
	}

	if opts.WorkDir != "" {
		args = append(args, "-w", opts.WorkDir)
	}

	// Sorted for deterministic argument order; map iteration is random.
	keys := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, opts.Env[k]))
	}

	args = append(args, string(opts.Image))
	args = append(args, opts.Command...)

	return args
}

// CommitArgs constructs arguments for a container commit command.
//
// Generated command: <binary> commit [options] <container> <image>
func (e *BaseCLIEngine) CommitArgs(opts CommitOptions) []string {
	args := []string{"commit"}

	if !opts.Pause {
		args = append(args, "--pause=false")
	}

	for _, change := range opts.Changes {
		args = append(args, "--change", change)
	}

	args = append(args, string(opts.Container), string(opts.Tag))

	return args
}

// RemoveArgs constructs arguments for a container remove command.
func (e *BaseCLIEngine) RemoveArgs(containerID ContainerID, force bool) []string {
	args := []string{"rm"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, string(containerID))
	return args
}

// RemoveImageArgs constructs arguments for an image remove command.
func (e *BaseCLIEngine) RemoveImageArgs(image types.ImageRef, force bool) []string {
	args := []string{"rmi"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, string(image))
	return args
}

// TagArgs constructs arguments for an image tag command.
func (e *BaseCLIEngine) TagArgs(src, dst types.ImageRef) []string {
	return []string{"tag", string(src), string(dst)}
}

// --- Command Execution ---

// RunCommandStatus executes a command and returns only the error status.
func (e *BaseCLIEngine) RunCommandStatus(ctx context.Context, args ...string) error {
	cmd := e.CreateCommand(ctx, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return nil
}

// RunCommandWithOutput executes a command with stdout captured to a buffer.
func (e *BaseCLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}

	return out.String(), nil
}

// CreateCommand creates an exec.Cmd for the given arguments.
// This is useful when the caller needs to customize stdin/stdout/stderr.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	return e.execCommand(ctx, e.binaryPath, args...)
}

// --- Promoted Engine Methods (shared by Docker and Podman) ---

// Pull fetches an image.
func (e *BaseCLIEngine) Pull(ctx context.Context, image types.ImageRef) error {
	if err := image.Validate(); err != nil {
		return err
	}
	if err := e.RunCommandStatus(ctx, e.PullArgs(image)...); err != nil {
		return pullImageError(e.name, image, err)
	}
	return nil
}

// ImageUser returns the image's declared default user, "" when the image
// config leaves it unset (engines then default to root).
func (e *BaseCLIEngine) ImageUser(ctx context.Context, image types.ImageRef) (types.Principal, error) {
	out, err := e.RunCommandWithOutput(ctx, "image", "inspect", "--format", "{{.Config.User}}", string(image))
	if err != nil {
		return "", fmt.Errorf("failed to inspect image user: %w", err)
	}
	return types.Principal(strings.TrimSpace(out)), nil
}

// Run runs a command to completion in a new container.
// A non-zero exit code is captured in RunResult.ExitCode (not returned as
// error); only infrastructure failures set RunResult.Error.
func (e *BaseCLIEngine) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	cmd := e.CreateCommand(ctx, e.RunArgs(opts)...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	err := cmd.Run()

	result := &RunResult{ContainerID: opts.Name}
	if err != nil {
		result.ExitCode = types.ExitCodeFromError(err)
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			result.Error = err
		}
	}

	return result, nil
}

// Commit captures a stopped container as a new image.
func (e *BaseCLIEngine) Commit(ctx context.Context, opts CommitOptions) error {
	if err := opts.Tag.Validate(); err != nil {
		return err
	}
	if err := e.RunCommandStatus(ctx, e.CommitArgs(opts)...); err != nil {
		return commitContainerError(e.name, opts, err)
	}
	return nil
}

// Remove removes a container.
func (e *BaseCLIEngine) Remove(ctx context.Context, containerID ContainerID, force bool) error {
	return e.RunCommandStatus(ctx, e.RemoveArgs(containerID, force)...)
}

// RemoveImage removes an image.
func (e *BaseCLIEngine) RemoveImage(ctx context.Context, image types.ImageRef, force bool) error {
	return e.RunCommandStatus(ctx, e.RemoveImageArgs(image, force)...)
}

// TagImage adds a new reference to an existing image.
func (e *BaseCLIEngine) TagImage(ctx context.Context, src, dst types.ImageRef) error {
	if err := dst.Validate(); err != nil {
		return err
	}
	return e.RunCommandStatus(ctx, e.TagArgs(src, dst)...)
}

// Validate returns an error if required RunOptions fields are missing or
// malformed. Catching these before exec gives clearer errors than the
// engine's own usage output.
func (o RunOptions) Validate() error {
	if err := o.Image.Validate(); err != nil {
		return err
	}
	if o.User != "" {
		if err := o.User.Validate(); err != nil {
			return err
		}
	}
	if len(o.Command) == 0 {
		return fmt.Errorf("run options: command must be non-empty")
	}
	return nil
}

// --- Actionable Error Helpers ---

// pullImageError creates an actionable error for image pull failures.
func pullImageError(engine string, image types.ImageRef, cause error) error {
	return issue.NewErrorContext().
		WithOperation("pull base image").
		WithResource(string(image)).
		WithSuggestion("Check the image reference for typos").
		WithSuggestion("Verify network access to the registry").
		WithSuggestion("Try pulling manually: " + engine + " pull " + string(image)).
		Wrap(cause).
		BuildError()
}

// commitContainerError creates an actionable error for layer commit failures.
func commitContainerError(engine string, opts CommitOptions, cause error) error {
	return issue.NewErrorContext().
		WithOperation("commit provisioning layer").
		WithResource(string(opts.Tag)).
		WithSuggestion("Check available disk space for image storage").
		WithSuggestion("Verify the container still exists: " + engine + " ps -a").
		Wrap(cause).
		BuildError()
}
