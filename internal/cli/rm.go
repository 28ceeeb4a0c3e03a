// Package cli — rm.go implements the "git-forest rm" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/forest/internal/config"
	"github.com/mmr-tortoise/forest/internal/forest"
	"github.com/mmr-tortoise/forest/internal/model"
)

// rmFlags holds the flag values for the rm command.
type rmFlags struct {
	force  bool // --force: discard dirty worktrees and delete branches unconditionally
	dryRun bool // --dry-run: show what would be removed
}

// NewRmCommand creates the "rm" cobra command.
func NewRmCommand() *cobra.Command {
	flags := &rmFlags{}

	cmd := &cobra.Command{
		Use:   "rm [name]",
		Short: "Remove a forest, its worktrees, and the branches it created",
		Long: `Remove a forest. Without a name the forest containing the current
directory is removed.

Unless --force is given, the removal refuses to proceed if any worktree
has uncommitted changes, and only deletes branches whose work is provably
merged or pushed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runRm(name, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false, "Discard uncommitted changes and delete branches unconditionally")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show what would be removed without removing anything")

	return cmd
}

func runRm(name string, flags *rmFlags) error {
	cfg, err := config.LoadDefault()
	if err != nil {
		return err
	}
	found, err := forest.Resolve(cfg, name)
	if err != nil {
		return err
	}
	VerboseLog("Removing forest %q at %s", found.Meta.Name, found.Dir)

	result, err := forest.Remove(newLogger(), found, flags.force, flags.dryRun)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		printRmResult(result)
	}

	if result.Blocked {
		return model.NewCLIErrorf(model.ExitValidationError,
			"removal blocked: uncommitted changes in %v (use --force to discard)", result.DirtyRepos)
	}
	if len(result.Errors) > 0 {
		return model.NewCLIErrorf(model.ExitGeneralError,
			"removal finished with %d error(s)", len(result.Errors))
	}
	return nil
}

func printRmResult(result *forest.RmResult) {
	verb := "Removed"
	if result.DryRun {
		verb = "Would remove"
	}
	fmt.Printf("%s forest %q at %s\n", verb, result.Name, result.Dir)
	for _, repo := range result.Repos {
		fmt.Printf("  %s\n", repo.Name)
		fmt.Printf("    worktree: %s\n", formatOutcome(repo.Worktree))
		fmt.Printf("    branch:   %s\n", formatOutcome(repo.Branch))
	}
	fmt.Printf("  forest dir: %s\n", formatOutcome(result.ForestDir))
}

func formatOutcome(o forest.Outcome) string {
	if o.Detail == "" {
		return string(o.Status)
	}
	return fmt.Sprintf("%s (%s)", o.Status, o.Detail)
}
