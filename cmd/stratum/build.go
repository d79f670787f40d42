// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"stratum-cli/internal/config"
	"stratum-cli/internal/container"
	"stratum-cli/internal/descriptor"
	"stratum-cli/internal/issue"
	"stratum-cli/internal/provision"
	"stratum-cli/pkg/types"
)

// DefaultDescriptorName is the descriptor file used when -f is not given.
const DefaultDescriptorName = "Stratumfile"

var (
	buildFile       string
	buildTag        string
	buildEngine     string
	buildPullAlways bool
	buildKeepFailed bool

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Build an image by applying a descriptor's steps in order",
		Long: `Build an image by applying a descriptor's steps in order.

The descriptor names a base image (FROM) followed by USER and RUN steps.
Each RUN executes in a transient container under the current identity and
commits one layer; a failing step commits nothing and aborts the build with
the step's exit code.`,
		Args: cobra.NoArgs,
		RunE: runBuild,
	}
)

func init() {
	buildCmd.Flags().StringVarP(&buildFile, "file", "f", DefaultDescriptorName, "descriptor file to build from")
	buildCmd.Flags().StringVarP(&buildTag, "tag", "t", "", "tag for the resulting image")
	buildCmd.Flags().StringVar(&buildEngine, "engine", "", "container engine to use (docker, podman, auto)")
	buildCmd.Flags().BoolVar(&buildPullAlways, "pull", false, "always pull the base image, even when present locally")
	buildCmd.Flags().BoolVar(&buildKeepFailed, "keep-failed", false, "keep the container of a failed step for inspection")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		renderIssue(issue.ConfigLoadFailedId)
		return err
	}

	d, err := parseDescriptor(buildFile)
	if err != nil {
		return err
	}

	if buildTag != "" {
		if err := types.ImageRef(buildTag).Validate(); err != nil {
			return err
		}
	}

	engine, err := resolveEngine(cfg)
	if err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if GetVerbose() {
		logger.SetLevel(log.DebugLevel)
	}

	pcfg := provision.DefaultConfig()
	pcfg.Tag = types.ImageRef(buildTag)
	pcfg.PullAlways = cfg.Pull.Always || buildPullAlways
	pcfg.PullRetries = cfg.Pull.Retries
	pcfg.StrictIdentities = cfg.StrictIdentities
	pcfg.KeepFailedContainers = cfg.KeepFailedContainers || buildKeepFailed
	pcfg.Stdout = os.Stdout
	pcfg.Stderr = os.Stderr
	pcfg.Logger = logger

	res, err := provision.NewPipeline(engine, pcfg).Provision(cmd.Context(), d)
	if err != nil {
		switch {
		case errors.Is(err, provision.ErrUnknownIdentity):
			renderIssue(issue.UnknownIdentityId)
		case errors.Is(err, provision.ErrBuild):
			renderIssue(issue.StepExecutionFailedId)
		}
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Build failed: ")+formatErrorForDisplay(err, GetVerbose()))
		return &ExitError{Code: provision.ExitCodeOf(err), Err: err}
	}

	fmt.Println(SuccessStyle.Render("Build complete"))
	fmt.Printf("%s: %s\n", StepStyle.Render("image"), res.Image)
	fmt.Printf("%s: %d\n", StepStyle.Render("layers"), len(res.Layers))
	if res.FinalUser != "" {
		fmt.Printf("%s: %s\n", StepStyle.Render("user"), res.FinalUser)
	}
	return nil
}

// parseDescriptor loads and parses a descriptor file, rendering the matching
// troubleshooting entry on failure.
func parseDescriptor(path string) (*descriptor.Descriptor, error) {
	d, err := descriptor.ParseFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			renderIssue(issue.DescriptorNotFoundId)
		} else if errors.Is(err, descriptor.ErrParse) {
			renderIssue(issue.DescriptorParseErrorId)
		}
		return nil, err
	}
	return d, nil
}

// resolveEngine picks the container engine, with the --engine flag taking
// precedence over the configured one.
func resolveEngine(cfg *config.Config) (container.Engine, error) {
	engineType := container.EngineType(cfg.ContainerEngine)
	if buildEngine != "" {
		engineType = container.EngineType(buildEngine)
	}
	engine, err := container.NewEngine(engineType)
	if err != nil {
		renderIssue(issue.ContainerEngineNotFoundId)
		return nil, err
	}
	return engine, nil
}

// renderIssue prints a troubleshooting catalog entry to stderr, best-effort.
func renderIssue(id issue.Id) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	if rendered, err := entry.Render("dark"); err == nil {
		fmt.Fprint(os.Stderr, rendered)
	}
}
