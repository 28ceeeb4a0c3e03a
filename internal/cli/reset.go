// Package cli — reset.go implements the "git-forest reset" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/forest/internal/forest"
	"github.com/mmr-tortoise/forest/internal/model"
)

// resetFlags holds the flag values for the reset command.
type resetFlags struct {
	confirm    bool // --confirm: actually execute
	configOnly bool // --config-only: leave forests alone
	dryRun     bool // --dry-run: preview only
}

// NewResetCommand creates the "reset" cobra command.
func NewResetCommand() *cobra.Command {
	flags := &resetFlags{}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all forests plus the config and state files",
		Long: `Tear down every forest git-forest knows about, then delete the config
and state files. There is no undo; without --confirm only a preview is
printed and the command exits nonzero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(flags)
		},
	}

	cmd.Flags().BoolVar(&flags.confirm, "confirm", false, "Actually perform the reset")
	cmd.Flags().BoolVar(&flags.configOnly, "config-only", false, "Delete config and state files but leave forests alone")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Preview without deleting anything")

	return cmd
}

func runReset(flags *resetFlags) error {
	result, err := forest.Reset(newLogger(), flags.confirm, flags.configOnly, flags.dryRun)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		printResetResult(result)
	}

	if result.ConfirmRequired {
		return model.NewCLIError(model.ExitConfirmRequired,
			"reset needs --confirm to proceed")
	}
	if len(result.Errors) > 0 {
		return model.NewCLIErrorf(model.ExitGeneralError,
			"reset finished with %d error(s)", len(result.Errors))
	}
	return nil
}

func printResetResult(result *forest.ResetResult) {
	header := "Reset"
	if result.DryRun || result.ConfirmRequired {
		header = "Would reset"
	}
	fmt.Println(header + ":")

	for _, f := range result.Forests {
		state := "pending"
		if f.Deleted {
			state = "deleted"
		} else if f.Error != "" {
			state = "failed: " + f.Error
		}
		fmt.Printf("  forest %s (%s): %s\n", f.Name, f.Dir, state)
	}
	printFileEntry("config", result.ConfigFile)
	printFileEntry("state", result.StateFile)

	for _, warning := range result.Warnings {
		fmt.Printf("  warning: %s\n", warning)
	}
	if result.ConfirmRequired {
		fmt.Println("\nRe-run with --confirm to proceed.")
	}
}

func printFileEntry(label string, entry forest.FileResetEntry) {
	switch {
	case !entry.Existed:
		fmt.Printf("  %s file %s: absent\n", label, entry.Path)
	case entry.Deleted:
		fmt.Printf("  %s file %s: deleted\n", label, entry.Path)
	case entry.Error != "":
		fmt.Printf("  %s file %s: failed: %s\n", label, entry.Path, entry.Error)
	default:
		fmt.Printf("  %s file %s: pending\n", label, entry.Path)
	}
}
