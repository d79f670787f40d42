// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"stratum-cli/internal/descriptor"
	"stratum-cli/pkg/types"
)

// ErrBuild is the sentinel for any failure raised while applying descriptor
// steps, so callers can classify build failures with errors.Is.
var ErrBuild = errors.New("build failed")

// ErrUnknownIdentity is the sentinel for a USER step naming a principal that
// does not exist in the image, raised only when strict identity checking is
// enabled.
var ErrUnknownIdentity = errors.New("unknown identity")

// Layer records a single committed layer and the step that produced it.
type Layer struct {
	// Step is the descriptor step this layer was committed for.
	Step descriptor.Step
	// Image is the intermediate image reference holding the layer.
	Image types.ImageRef
}

// Result describes a completed provisioning run.
type Result struct {
	// Image is the final image reference: the requested tag when one was
	// given, otherwise the last intermediate reference.
	Image types.ImageRef
	// Layers lists every committed layer in application order.
	Layers []Layer
	// FinalUser is the effective identity after the last step, which is
	// also the image's default runtime user.
	FinalUser types.Principal
}

// BuildError reports a step whose application failed. The zero steps before
// it are already committed; the failing step itself left no layer behind.
type BuildError struct {
	// Step is the descriptor step that failed.
	Step descriptor.Step
	// Index is the position of the step within the descriptor, zero-based.
	Index int
	// ExitCode is the command's exit status for RUN failures, zero for
	// infrastructure failures.
	ExitCode types.ExitCode
	// Err is the underlying cause, if any.
	Err error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %d (%s) failed: %v", e.Index+1, e.Step, e.Err)
	}
	return fmt.Sprintf("step %d (%s) failed with exit code %d", e.Index+1, e.Step, e.ExitCode)
}

func (e *BuildError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrBuild
}

func (e *BuildError) Is(target error) bool {
	return target == ErrBuild
}

// UnknownIdentityError reports a USER step that named a principal absent
// from the current top image while strict identity checking was on.
type UnknownIdentityError struct {
	// User is the principal that could not be resolved.
	User types.Principal
	// Image is the image the lookup ran against.
	Image types.ImageRef
}

func (e *UnknownIdentityError) Error() string {
	return fmt.Sprintf("identity %q does not exist in image %q", e.User, e.Image)
}

func (e *UnknownIdentityError) Unwrap() error {
	return ErrUnknownIdentity
}

// Config carries the tunables of a provisioning run. The zero value is not
// usable; obtain one from DefaultConfig and adjust.
type Config struct {
	// Tag is the reference the final image is tagged with. Empty leaves
	// the image under its last intermediate reference.
	Tag types.ImageRef
	// PullAlways forces a base image pull even when it exists locally.
	PullAlways bool
	// PullRetries is the number of pull attempts for transient failures.
	PullRetries int
	// StrictIdentities makes USER steps fail when the named principal does
	// not exist in the image, instead of deferring to runtime behavior.
	StrictIdentities bool
	// KeepFailedContainers leaves the container of a failed RUN step in
	// place for inspection instead of removing it.
	KeepFailedContainers bool
	// Stdout and Stderr receive the output of RUN steps. Nil discards.
	Stdout io.Writer
	Stderr io.Writer
	// Logger receives structured per-step progress. Nil uses the default.
	Logger *log.Logger
}

// DefaultConfig returns a Config with the defaults used by the CLI.
func DefaultConfig() Config {
	return Config{
		PullRetries: 3,
		Stdout:      io.Discard,
		Stderr:      io.Discard,
	}
}
