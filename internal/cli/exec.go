// Package cli — exec.go implements the "git-forest exec" command.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/forest/internal/config"
	"github.com/mmr-tortoise/forest/internal/forest"
	"github.com/mmr-tortoise/forest/internal/model"
)

// NewExecCommand creates the "exec" cobra command.
func NewExecCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <name> -- <cmd> [args...]",
		Short: "Run a command in every worktree of a forest",
		Long: `Run a command in each member worktree with inherited stdio.

Example:
  git-forest exec my-feature -- git pull --rebase`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(args[0], args[1:])
		},
	}
}

func runExec(name string, command []string) error {
	cfg, err := config.LoadDefault()
	if err != nil {
		return err
	}
	found, err := forest.Resolve(cfg, name)
	if err != nil {
		return err
	}

	result, err := forest.Exec(newLogger(), found, command)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		if len(result.Skipped) > 0 {
			fmt.Printf("Skipped (worktree missing): %s\n", strings.Join(result.Skipped, ", "))
		}
		if len(result.Failed) > 0 {
			fmt.Printf("Failed in: %s\n", strings.Join(result.Failed, ", "))
		}
	}

	if len(result.Failed) > 0 {
		return model.NewCLIErrorf(model.ExitGeneralError,
			"command failed in %d repo(s)", len(result.Failed))
	}
	return nil
}
