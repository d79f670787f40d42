// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"stratum-cli/internal/container"
	"stratum-cli/internal/descriptor"
	"stratum-cli/pkg/types"
)

// pullBackoff is the base delay between pull retry attempts.
const pullBackoff = 2 * time.Second

// Pipeline applies descriptors against a container engine. A single Pipeline
// can run multiple builds; each build carries its own state.
type Pipeline struct {
	engine  container.Engine
	cfg     Config
	log     *log.Logger
	backoff time.Duration
}

// buildState is the per-build mutable state threaded through step
// application. The effective identity lives here and nowhere else.
type buildState struct {
	// top is the current top-of-chain image every subsequent step extends.
	top types.ImageRef
	// identity is the effective identity RUN steps execute as.
	identity types.Principal
	// id distinguishes this build's containers and intermediate tags.
	id string
	// seq counts committed layers, for naming.
	seq int
	// intermediates lists the intermediate references created so far, so
	// they can be untagged once the build settles on a final reference.
	intermediates []types.ImageRef
	// layers accumulates the Result's layer records.
	layers []Layer
}

// NewPipeline creates a Pipeline executing against the given engine.
func NewPipeline(engine container.Engine, cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{engine: engine, cfg: cfg, log: logger, backoff: pullBackoff}
}

// Provision applies the descriptor's steps in order on top of its base image
// and returns the resulting image. On step failure nothing of the failing
// step is committed: the image chain ends at the last successful layer and
// the returned error is a *BuildError identifying the step.
func (p *Pipeline) Provision(ctx context.Context, d *descriptor.Descriptor) (*Result, error) {
	state, err := p.begin(ctx, d)
	if err != nil {
		return nil, err
	}

	for i, step := range d.Steps {
		if err := p.applyStep(ctx, state, i, step); err != nil {
			return nil, err
		}
	}

	return p.finish(ctx, state)
}

// begin resolves the base image and initializes the build state, with the
// effective identity taken from the base image's declared default user.
func (p *Pipeline) begin(ctx context.Context, d *descriptor.Descriptor) (*buildState, error) {
	if err := p.resolveBase(ctx, d.BaseImage); err != nil {
		return nil, err
	}

	identity, err := p.engine.ImageUser(ctx, d.BaseImage)
	if err != nil {
		// Not fatal: the engine still applies the image default at run time.
		p.log.Warn("could not read base image default user", "image", d.BaseImage, "error", err)
		identity = ""
	}

	p.log.Info("base image resolved", "image", d.BaseImage, "user", identity.String())
	return &buildState{top: d.BaseImage, identity: identity, id: newBuildID()}, nil
}

// resolveBase makes the base image locally resolvable, pulling it when
// missing (or always, when configured). Only transient pull failures are
// retried.
func (p *Pipeline) resolveBase(ctx context.Context, base types.ImageRef) error {
	if !p.cfg.PullAlways {
		exists, err := p.engine.ImageExists(ctx, base)
		if err == nil && exists {
			return nil
		}
	}

	attempts := max(p.cfg.PullRetries, 1)
	err := container.RetryWithBackoff(ctx, attempts, p.backoff, func(attempt int) (bool, error) {
		if attempt > 0 {
			p.log.Warn("retrying base image pull", "image", base, "attempt", attempt+1)
		}
		if err := p.engine.Pull(ctx, base); err != nil {
			return container.IsTransientError(err), err
		}
		return false, nil
	})
	if err != nil {
		return fmt.Errorf("base image %q is not resolvable: %w", base, err)
	}
	return nil
}

func (p *Pipeline) applyStep(ctx context.Context, state *buildState, index int, step descriptor.Step) error {
	switch step.Kind {
	case descriptor.StepComment:
		// Documentation only; preserved in the descriptor, never executed.
		p.log.Debug("skipping comment", "line", step.Line, "text", step.Text)
		return nil
	case descriptor.StepSetUser:
		return p.applySetUser(ctx, state, index, step)
	case descriptor.StepRun:
		return p.applyRun(ctx, state, index, step)
	default:
		return &BuildError{Step: step, Index: index, Err: fmt.Errorf("unknown step kind %q", step.Kind)}
	}
}

// applySetUser commits a metadata-only layer that changes the image's default
// user, then updates the effective identity for subsequent RUN steps.
func (p *Pipeline) applySetUser(ctx context.Context, state *buildState, index int, step descriptor.Step) error {
	if p.cfg.StrictIdentities {
		if err := p.verifyIdentity(ctx, state, step.User); err != nil {
			return &BuildError{Step: step, Index: index, Err: err}
		}
	}

	name := state.containerName()
	res, err := p.engine.Run(ctx, container.RunOptions{
		Image:   state.top,
		Name:    name,
		Command: []string{"true"},
	})
	if err != nil {
		p.removeContainer(ctx, name)
		return &BuildError{Step: step, Index: index, Err: err}
	}
	if res.Error != nil {
		p.removeContainer(ctx, name)
		return &BuildError{Step: step, Index: index, Err: res.Error}
	}

	next := state.nextRef()
	err = p.engine.Commit(ctx, container.CommitOptions{
		Container: name,
		Tag:       next,
		Changes:   []string{"USER " + step.User.String()},
	})
	p.removeContainer(ctx, name)
	if err != nil {
		return &BuildError{Step: step, Index: index, Err: err}
	}

	state.advance(step, next)
	state.identity = step.User
	p.log.Info("identity changed", "user", step.User, "image", next)
	return nil
}

// applyRun executes the step's command as a single shell invocation in a
// transient container under the current effective identity, and commits the
// container as a new layer only when the whole invocation exits zero.
func (p *Pipeline) applyRun(ctx context.Context, state *buildState, index int, step descriptor.Step) error {
	name := state.containerName()
	p.log.Info("running step", "index", index+1, "user", state.identity.String(), "command", step.Command)

	res, err := p.engine.Run(ctx, container.RunOptions{
		Image:   state.top,
		Name:    name,
		User:    state.identity,
		Command: []string{"/bin/sh", "-c", step.Command},
		Stdout:  p.cfg.Stdout,
		Stderr:  p.cfg.Stderr,
	})
	if err != nil {
		// Covers cancellation mid-run: the half-finished container goes away.
		p.removeContainer(ctx, name)
		return &BuildError{Step: step, Index: index, Err: err}
	}
	if res.Error != nil {
		p.removeContainer(ctx, name)
		return &BuildError{Step: step, Index: index, Err: res.Error}
	}
	if !res.ExitCode.IsSuccess() {
		// The container is discarded whole: a failed step commits nothing,
		// even when earlier sub-commands of a compound chain succeeded.
		if !p.cfg.KeepFailedContainers {
			p.removeContainer(ctx, name)
		} else {
			p.log.Warn("keeping failed container for inspection", "container", name)
		}
		return &BuildError{Step: step, Index: index, ExitCode: res.ExitCode}
	}

	next := state.nextRef()
	err = p.engine.Commit(ctx, container.CommitOptions{Container: name, Tag: next})
	p.removeContainer(ctx, name)
	if err != nil {
		return &BuildError{Step: step, Index: index, Err: err}
	}

	state.advance(step, next)
	p.log.Info("layer committed", "index", index+1, "image", next)
	return nil
}

// verifyIdentity probes the current top image for the principal. The probe
// runs as the image default user, not the current identity, since identity
// lookup needs no privileges.
func (p *Pipeline) verifyIdentity(ctx context.Context, state *buildState, user types.Principal) error {
	name := state.containerName() + "-probe"
	res, err := p.engine.Run(ctx, container.RunOptions{
		Image:   state.top,
		Name:    name,
		Command: []string{"/bin/sh", "-c", "id -u " + user.Name()},
	})
	p.removeContainer(ctx, name)
	if err != nil {
		return err
	}
	if res.Error != nil {
		return res.Error
	}
	if !res.ExitCode.IsSuccess() {
		return &UnknownIdentityError{User: user, Image: state.top}
	}
	return nil
}

// finish tags the final image and untags the intermediate references. The
// final image keeps the last declared identity as its default runtime user
// because the last USER layer carries it.
func (p *Pipeline) finish(ctx context.Context, state *buildState) (*Result, error) {
	final := state.top
	if p.cfg.Tag != "" {
		if err := p.engine.TagImage(ctx, state.top, p.cfg.Tag); err != nil {
			return nil, fmt.Errorf("tagging final image: %w", err)
		}
		final = p.cfg.Tag
	}

	for _, ref := range state.intermediates {
		if ref == final {
			continue
		}
		// Untag only: layers referenced by the final image stay alive.
		if err := p.engine.RemoveImage(ctx, ref, false); err != nil {
			p.log.Warn("could not untag intermediate image", "image", ref, "error", err)
		}
	}

	p.log.Info("provisioning complete", "image", final, "layers", len(state.layers), "user", state.identity.String())
	return &Result{Image: final, Layers: state.layers, FinalUser: state.identity}, nil
}

func (p *Pipeline) removeContainer(ctx context.Context, name container.ContainerID) {
	// Cleanup still runs when ctx was canceled mid-step.
	if err := p.engine.Remove(context.WithoutCancel(ctx), name, true); err != nil {
		p.log.Warn("could not remove container", "container", name, "error", err)
	}
}

func (s *buildState) containerName() container.ContainerID {
	return container.ContainerID(fmt.Sprintf("stratum-%s-%d", s.id, s.seq))
}

func (s *buildState) nextRef() types.ImageRef {
	return types.ImageRef(fmt.Sprintf("stratum-build:%s-%d", s.id, s.seq))
}

// advance records a committed layer and moves the top of the chain.
func (s *buildState) advance(step descriptor.Step, ref types.ImageRef) {
	s.layers = append(s.layers, Layer{Step: step, Image: ref})
	s.intermediates = append(s.intermediates, ref)
	s.top = ref
	s.seq++
}

func newBuildID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// Plan returns the human-readable application plan for a descriptor without
// touching the engine: one line per step, comments included, prefixed with
// whether the step commits a layer. RUN steps are annotated with the identity
// they will execute as, and compound commands list their sub-commands.
func Plan(d *descriptor.Descriptor) []string {
	out := make([]string, 0, len(d.Steps)+1)
	out = append(out, fmt.Sprintf("FROM %s", d.BaseImage))

	var identity types.Principal
	for _, s := range d.Steps {
		marker := "layer"
		if !s.Effectful() {
			marker = "no-op"
		}
		line := fmt.Sprintf("[%s] %s", marker, s)

		switch s.Kind {
		case descriptor.StepSetUser:
			identity = s.User
		case descriptor.StepRun:
			as := "image default"
			if identity != "" {
				as = identity.String()
			}
			line += fmt.Sprintf(" (as %s)", as)
		}
		out = append(out, line)

		if s.Kind == descriptor.StepRun && len(s.SubCommands) > 1 {
			for _, sub := range s.SubCommands {
				out = append(out, "        - "+sub)
			}
		}
	}
	return out
}

// ExitCodeOf extracts the command exit status from a provisioning error,
// mapping infrastructure failures to a generic failure code.
func ExitCodeOf(err error) types.ExitCode {
	var be *BuildError
	if errors.As(err, &be) && be.Err == nil {
		return be.ExitCode
	}
	return 1
}
