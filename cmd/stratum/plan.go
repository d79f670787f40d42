// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stratum-cli/internal/descriptor"
	"stratum-cli/internal/provision"
)

var (
	planFile string

	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Show the step plan for a descriptor without building",
		Long: `Show the step plan for a descriptor without building.

Each line is one step in application order, marked with whether it commits
a layer. Comments are listed as no-ops so the plan matches the file.`,
		Args: cobra.NoArgs,
		RunE: runPlan,
	}
)

func init() {
	planCmd.Flags().StringVarP(&planFile, "file", "f", DefaultDescriptorName, "descriptor file to plan")
}

func runPlan(cmd *cobra.Command, args []string) error {
	d, err := parseDescriptor(planFile)
	if err != nil {
		return err
	}

	fmt.Println(TitleStyle.Render("Build plan") + SubtitleStyle.Render(" "+planFile))
	for _, line := range provision.Plan(d) {
		switch {
		case strings.HasPrefix(line, "[no-op]"), strings.HasPrefix(line, " "):
			// Comments and sub-command breakdown lines print dimmed.
			fmt.Println(SubtitleStyle.Render(line))
		default:
			fmt.Println(StepStyle.Render(line))
		}
	}

	if user := d.FinalUser(); user != "" {
		fmt.Println()
		fmt.Printf("%s: %s\n", StepStyle.Render("final user"), user)
	}
	printEffectfulCount(d)
	return nil
}

func printEffectfulCount(d *descriptor.Descriptor) {
	fmt.Printf("%s: %d\n", StepStyle.Render("layers to commit"), len(d.EffectfulSteps()))
}
