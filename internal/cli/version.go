// Package cli — version.go implements the "git-forest version" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/forest/internal/model"
	"github.com/mmr-tortoise/forest/internal/version"
)

// versionFlags holds the flag values for the version command.
type versionFlags struct {
	check bool // --check: force a synchronous update check
}

// NewVersionCommand creates the "version" cobra command.
func NewVersionCommand() *cobra.Command {
	flags := &versionFlags{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the git-forest version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(flags)
		},
	}

	cmd.Flags().BoolVar(&flags.check, "check", false, "Check for a newer release now")

	return cmd
}

func runVersion(flags *versionFlags) error {
	if !flags.check {
		if IsJSONOutput() {
			return printJSON(map[string]string{"version": version.Current})
		}
		fmt.Printf("git-forest %s\n", version.Current)
		return nil
	}

	latest, newer, err := version.ForceCheck()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "update check failed", err)
	}

	if IsJSONOutput() {
		return printJSON(map[string]interface{}{
			"version":          version.Current,
			"latest":           latest,
			"update_available": newer,
		})
	}
	fmt.Printf("git-forest %s\n", version.Current)
	if newer {
		fmt.Printf("A newer release is available: %s\n", latest)
	} else {
		fmt.Println("You are up to date.")
	}
	return nil
}
