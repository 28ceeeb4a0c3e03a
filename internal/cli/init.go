// Package cli — init.go implements the "git-forest init" command.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/forest/internal/config"
	"github.com/mmr-tortoise/forest/internal/model"
)

// initFlags holds the flag values for the init command.
type initFlags struct {
	force    bool // --force: overwrite an existing config
	showPath bool // --show-path: print the config path and exit
}

// NewInitCommand creates the "init" cobra command.
func NewInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite an existing config file")
	cmd.Flags().BoolVar(&flags.showPath, "show-path", false, "Print the config file path and exit")

	return cmd
}

func runInit(flags *initFlags) error {
	path, err := config.DefaultPath()
	if err != nil {
		return err
	}

	if flags.showPath {
		if IsJSONOutput() {
			return printJSON(map[string]string{"path": path})
		}
		fmt.Println(path)
		return nil
	}

	if _, statErr := os.Stat(path); statErr == nil && !flags.force {
		return model.NewCLIErrorf(model.ExitValidationError,
			"config already exists at %s (use --force to overwrite)", path)
	}

	if err := config.WriteAtomic(path, []byte(config.StarterConfig)); err != nil {
		return err
	}

	if IsJSONOutput() {
		return printJSON(map[string]string{"path": path, "status": "written"})
	}
	fmt.Printf("Wrote starter config to %s\n", path)
	fmt.Println("Edit the template's worktreeBase and repos, then run 'git-forest new <name>'.")
	return nil
}
