// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"io"

	"stratum-cli/pkg/types"
)

// Engine defines the container operations the provisioning pipeline needs.
type Engine interface {
	// Name returns the engine name (docker or podman).
	Name() string
	// Available checks if the engine is available on the system.
	Available() bool
	// Version returns the engine version.
	Version(ctx context.Context) (string, error)

	// Pull fetches an image so that a reference is locally resolvable.
	Pull(ctx context.Context, image types.ImageRef) error
	// ImageExists checks if an image is present locally.
	ImageExists(ctx context.Context, image types.ImageRef) (bool, error)
	// ImageUser returns the image's declared default user ("" when unset).
	ImageUser(ctx context.Context, image types.ImageRef) (types.Principal, error)
	// Run runs a command to completion in a new container.
	Run(ctx context.Context, opts RunOptions) (*RunResult, error)
	// Commit captures a stopped container as a new image.
	Commit(ctx context.Context, opts CommitOptions) error
	// Remove removes a container.
	Remove(ctx context.Context, containerID ContainerID, force bool) error
	// RemoveImage removes an image.
	RemoveImage(ctx context.Context, image types.ImageRef, force bool) error
	// TagImage adds a new reference to an existing image.
	TagImage(ctx context.Context, src, dst types.ImageRef) error
}

type (
	// ContainerID identifies a container by name or engine-assigned ID.
	ContainerID string

	// RunOptions contains options for running a container to completion.
	RunOptions struct {
		// Image is the image to run.
		Image types.ImageRef
		// Name is the container name; required so the container can be
		// committed or removed afterwards.
		Name ContainerID
		// User is the principal the command executes as. Empty means the
		// image's default user.
		User types.Principal
		// Command is the argv executed in the container.
		Command []string
		// Env contains environment variables.
		Env map[string]string
		// WorkDir is the working directory inside the container.
		WorkDir string
		// Remove automatically removes the container after exit.
		Remove bool
		// Stdout is where container stdout is written.
		Stdout io.Writer
		// Stderr is where container stderr is written.
		Stderr io.Writer
	}

	// RunResult contains the result of running a container.
	RunResult struct {
		// ContainerID is the container's name or ID.
		ContainerID ContainerID
		// ExitCode is the command's exit status.
		ExitCode types.ExitCode
		// Error is set for infrastructure failures (engine binary missing,
		// daemon unreachable); a plain non-zero command exit is not an Error.
		Error error
	}

	// CommitOptions contains options for committing a container as an image.
	CommitOptions struct {
		// Container is the stopped container to capture.
		Container ContainerID
		// Tag is the reference for the resulting image.
		Tag types.ImageRef
		// Changes are image-config mutations applied during commit,
		// e.g. "USER asterisk".
		Changes []string
		// Pause pauses the container during commit. Meaningless for the
		// pipeline's already-exited containers; kept for completeness.
		Pause bool
	}

	// EngineType identifies the container engine type.
	EngineType string
)

const (
	EngineTypeDocker EngineType = "docker"
	EngineTypePodman EngineType = "podman"
	// EngineTypeAuto lets NewEngine pick whichever engine is available.
	EngineTypeAuto EngineType = "auto"
)

// ErrEngineNotAvailable is returned when a container engine is not available.
type ErrEngineNotAvailable struct {
	Engine string
	Reason string
}

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// NewEngine creates a container engine honoring the preferred type, falling
// back to the other CLI engine when the preferred one is missing.
func NewEngine(preferred EngineType) (Engine, error) {
	switch preferred {
	case EngineTypeDocker:
		if engine := NewDockerEngine(); engine.Available() {
			return engine, nil
		}
		if engine := NewPodmanEngine(); engine.Available() {
			return engine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "docker",
			Reason: "docker is not installed or not accessible, and podman fallback is also not available",
		}

	case EngineTypePodman:
		if engine := NewPodmanEngine(); engine.Available() {
			return engine, nil
		}
		if engine := NewDockerEngine(); engine.Available() {
			return engine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "podman",
			Reason: "podman is not installed or not accessible, and docker fallback is also not available",
		}

	case EngineTypeAuto, "":
		return AutoDetectEngine()

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferred)
	}
}

// AutoDetectEngine tries to find an available container engine.
func AutoDetectEngine() (Engine, error) {
	// Docker first: it is what the overwhelming majority of build hosts run.
	if docker := NewDockerEngine(); docker.Available() {
		return docker, nil
	}
	if podman := NewPodmanEngine(); podman.Available() {
		return podman, nil
	}
	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no container engine (docker or podman) is available on this system",
	}
}
