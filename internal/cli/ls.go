// Package cli — ls.go implements the "git-forest ls" command.
package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/forest/internal/config"
	"github.com/mmr-tortoise/forest/internal/forest"
)

// NewLsCommand creates the "ls" cobra command.
func NewLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List forests across all worktree bases, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs()
		},
	}
}

func runLs() error {
	cfg, err := config.LoadDefault()
	if err != nil {
		return err
	}
	summaries, err := forest.List(cfg)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		if summaries == nil {
			summaries = []forest.Summary{}
		}
		return printJSON(summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("No forests found. Create one with 'git-forest new <name>'.")
		return nil
	}
	for _, s := range summaries {
		fmt.Printf("%s  (%s, %s, %s)\n", s.Name, s.Mode, s.Age, formatBranches(s.Branches))
		fmt.Printf("  %s\n", s.Dir)
	}
	return nil
}

// formatBranches renders the branch histogram as "branch xN" pairs,
// sorted for stable output.
func formatBranches(branches map[string]int) string {
	names := make([]string, 0, len(branches))
	for branch := range branches {
		names = append(names, branch)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, branch := range names {
		parts = append(parts, fmt.Sprintf("%s x%d", branch, branches[branch]))
	}
	return strings.Join(parts, ", ")
}
