// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"errors"
	"fmt"

	"stratum-cli/pkg/types"
)

// ErrParse is the sentinel error wrapped by ParseError.
var ErrParse = errors.New("descriptor parse error")

type (
	// StepKind identifies what a step does when applied.
	StepKind string

	// Step is one ordered instruction of a provisioning pipeline. Steps are
	// applied strictly in declaration order; no step is skipped, reordered,
	// or parallelized.
	Step struct {
		// Kind selects which payload fields are meaningful.
		Kind StepKind

		// User is the SET_USER payload: the principal that subsequent RUN
		// steps execute as.
		User types.Principal

		// Command is the RUN payload: the full shell text, executed as a
		// single invocation sharing one atomicity boundary.
		Command string

		// SubCommands is the ordered top-level && list of Command. A simple
		// command yields a single entry. Informational: execution always uses
		// Command as one invocation so that any sub-command failure aborts
		// the whole step.
		SubCommands []string

		// Text is the COMMENT payload.
		Text string

		// Line is the 1-based physical line where the directive starts.
		Line int
	}

	// Descriptor is a parsed build descriptor: a base image reference plus
	// the ordered steps layered on top of it.
	Descriptor struct {
		// BaseImage is the immutable starting snapshot the pipeline extends.
		BaseImage types.ImageRef

		// Steps are the declared instructions in source order, FROM excluded.
		Steps []Step

		// Path is the source file path, "" when parsed from a reader.
		Path string
	}

	// ParseError reports a structural or syntactic problem in a descriptor.
	ParseError struct {
		Path string
		Line int
		Msg  string
		Err  error
	}
)

const (
	// StepSetUser changes the effective identity for subsequent RUN steps.
	StepSetUser StepKind = "set-user"
	// StepRun executes a shell command as one atomic layer.
	StepRun StepKind = "run"
	// StepComment is documentation only; applying it has no filesystem effect.
	StepComment StepKind = "comment"
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "descriptor"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", loc, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", loc, e.Msg)
}

// Unwrap returns the chain for errors.Is/As: the underlying cause if any,
// otherwise the ErrParse sentinel.
func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrParse
}

// Is reports whether target is ErrParse, so errors.Is works even when a
// cause is wrapped.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Effectful reports whether applying the step changes the resulting image
// (filesystem or metadata). Comments are the only non-effectful kind.
func (s Step) Effectful() bool { return s.Kind != StepComment }

// String returns a one-line human-readable rendering of the step.
func (s Step) String() string {
	switch s.Kind {
	case StepSetUser:
		return "USER " + s.User.String()
	case StepRun:
		return "RUN " + s.Command
	case StepComment:
		return "# " + s.Text
	default:
		return string(s.Kind)
	}
}

// EffectfulSteps returns the steps that commit layers, in order.
func (d *Descriptor) EffectfulSteps() []Step {
	out := make([]Step, 0, len(d.Steps))
	for _, s := range d.Steps {
		if s.Effectful() {
			out = append(out, s)
		}
	}
	return out
}

// FinalUser returns the last declared USER principal, or "" when the
// descriptor never switches identity (the base image default applies).
func (d *Descriptor) FinalUser() types.Principal {
	var u types.Principal
	for _, s := range d.Steps {
		if s.Kind == StepSetUser {
			u = s.User
		}
	}
	return u
}
