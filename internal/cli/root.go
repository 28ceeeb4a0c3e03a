// Package cli implements the cobra-based CLI commands for git-forest.
//
// Each subcommand (init, new, rm, ls, status, exec, reset, version) is
// defined in its own file within this package. This file defines the root
// command that serves as the parent for all subcommands and handles
// global flags.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mmr-tortoise/forest/internal/config"
	"github.com/mmr-tortoise/forest/internal/logging"
	"github.com/mmr-tortoise/forest/internal/model"
	"github.com/mmr-tortoise/forest/internal/version"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	// When true, all output uses structured JSON format for machine
	// consumption. When false (default), output is human-readable text.
	jsonOutput bool

	// verbose enables detailed logging output for debugging.
	// When true, executor log events are also printed to stderr.
	verbose bool
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself does not perform any action — it only provides
// help text and global flags. Actual functionality is provided by
// subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "git-forest",
		Short: "Manage forests of git worktrees across multiple repositories",
		Long: `git-forest creates and removes "forests": per-task groups of git
worktrees, one per configured repository, so multi-repo features and
reviews get a disposable checkout of everything at once.

Templates in the config file define which repositories belong together,
where their worktrees go, and how branches are named.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewNewCommand())
	rootCmd.AddCommand(NewRmCommand())
	rootCmd.AddCommand(NewLsCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewExecCommand())
	rootCmd.AddCommand(NewResetCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// It inspects errors returned by cobra commands and translates them
// into appropriate OS exit codes. CLIError types carry their own
// exit codes; other errors default to exit code 1. After a successful
// command the cached update notice, if any, is printed to stderr.
func Execute(rootCmd *cobra.Command) {
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}

	// No notice after reset (it just deleted the state file the cache
	// lives in), version (handles updates itself), or help output.
	if cmd != nil {
		switch cmd.Name() {
		case "reset", "version", "help", "completion":
			return
		}
	}
	printUpdateNotice()
}

// printUpdateNotice consults the version-check cache and prints a notice
// on stderr when a newer release is known. The check never performs
// network I/O here; a stale cache only schedules a background refresh.
func printUpdateNotice() {
	enabled := true
	if cfg, err := config.LoadDefault(); err == nil {
		enabled = cfg.VersionCheckEnabled
	}
	if notice := version.Notice(newLogger(), enabled); notice != "" {
		fmt.Fprintln(os.Stderr, notice)
	}
}

// newLogger builds the executor logger, honoring --verbose.
func newLogger() *zap.Logger {
	return logging.NewForCLI(verbose)
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode; stdout is reserved for
		// successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// printJSON writes a result as indented JSON on stdout.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to encode JSON output", err)
	}
	fmt.Println(string(data))
	return nil
}

// VerboseLog prints a message to stderr only when verbose mode is
// enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
