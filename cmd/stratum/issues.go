// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"stratum-cli/internal/issue"
)

// issuesCmd renders the troubleshooting catalog: every known failure mode
// with its causes and fixes, the same entries build failures print inline.
var issuesCmd = &cobra.Command{
	Use:   "issues [id]",
	Short: "Show the troubleshooting catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("issue id must be a number, got %q", args[0])
			}
			entry := issue.Get(issue.Id(id))
			if entry == nil {
				return fmt.Errorf("no issue with id %d", id)
			}
			rendered, err := entry.Render("dark")
			if err != nil {
				return err
			}
			fmt.Print(rendered)
			return nil
		}

		fmt.Println(TitleStyle.Render("Troubleshooting catalog"))
		entries := issue.Values()
		slices.SortFunc(entries, func(a, b *issue.Issue) int { return int(a.Id() - b.Id()) })
		for _, entry := range entries {
			fmt.Printf("  %s  %s\n", StepStyle.Render(fmt.Sprintf("%2d", entry.Id())), entry.Title())
		}
		fmt.Println()
		fmt.Println(SubtitleStyle.Render("Run 'stratum issues <id>' for causes and fixes."))
		return nil
	},
}
