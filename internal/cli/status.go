// Package cli — status.go implements the "git-forest status" command.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/forest/internal/config"
	"github.com/mmr-tortoise/forest/internal/forest"
)

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status [name]",
		Short: "Show git status for each worktree in a forest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runStatus(name)
		},
	}
}

func runStatus(name string) error {
	cfg, err := config.LoadDefault()
	if err != nil {
		return err
	}
	found, err := forest.Resolve(cfg, name)
	if err != nil {
		return err
	}

	result := forest.Status(found)
	if IsJSONOutput() {
		return printJSON(result)
	}

	fmt.Printf("Forest %q at %s\n", result.Name, result.Dir)
	for _, repo := range result.Repos {
		fmt.Printf("\n[%s]\n", repo.Name)
		switch {
		case repo.Missing:
			fmt.Println("  worktree missing")
		case repo.Error != "":
			fmt.Printf("  error: %s\n", repo.Error)
		default:
			fmt.Println(indent(repo.Output, "  "))
		}
	}
	return nil
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
