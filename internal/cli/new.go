// Package cli — new.go implements the "git-forest new" command.
//
// new is the primary operation: it plans a forest from a template
// (validating names, branch targets, and git refs up front) and then
// creates one worktree per repository, rolling everything back if any
// single worktree fails.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/forest/internal/config"
	"github.com/mmr-tortoise/forest/internal/forest"
	"github.com/mmr-tortoise/forest/internal/model"
)

// newFlags holds the flag values for the new command.
type newFlags struct {
	mode         string   // --mode: feature or review
	template     string   // --template: template name (default: config's defaultTemplate)
	branch       string   // --branch: global branch override
	repoBranches []string // --repo-branch: per-repo "repo=branch" overrides
	noFetch      bool     // --no-fetch: skip fetching remotes before planning
	dryRun       bool     // --dry-run: show the plan without creating anything
}

// NewNewCommand creates the "new" cobra command.
func NewNewCommand() *cobra.Command {
	flags := &newFlags{}

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a forest of worktrees from a template",
		Long: `Create a forest: one git worktree per repository in the template.

Branch selection per repository, highest precedence first:
  --repo-branch repo=branch, then --branch, then the mode default
  (feature mode substitutes {name} into the template's pattern,
  review mode uses forest/<name>).

Examples:
  git-forest new java-84/refactor-auth
  git-forest new gh-1423 --mode review --branch sue/gh-1423/fix-dialog
  git-forest new demo --repo-branch acme-api=hotfix/cors --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.mode, "mode", "feature", "Forest mode: feature or review")
	cmd.Flags().StringVar(&flags.template, "template", "", "Template to use (default: config's defaultTemplate)")
	cmd.Flags().StringVar(&flags.branch, "branch", "", "Branch to use in every repo (overrides the mode default)")
	cmd.Flags().StringArrayVar(&flags.repoBranches, "repo-branch", nil, "Per-repo branch override as repo=branch (repeatable)")
	cmd.Flags().BoolVar(&flags.noFetch, "no-fetch", false, "Skip fetching remotes before planning")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show the plan without creating anything")

	return cmd
}

func runNew(rawName string, flags *newFlags) error {
	name, err := model.NewForestName(rawName)
	if err != nil {
		return err
	}
	mode, err := model.ParseForestMode(flags.mode)
	if err != nil {
		return err
	}
	repoBranches, err := parseRepoBranches(flags.repoBranches)
	if err != nil {
		return err
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return err
	}
	tmpl, err := cfg.Template(flags.template)
	if err != nil {
		return err
	}
	VerboseLog("Using template %q with %d repos", tmpl.Name, len(tmpl.Repos))

	result, err := forest.Create(newLogger(), forest.NewInputs{
		Name:         name,
		Mode:         mode,
		Template:     tmpl,
		GlobalBranch: flags.branch,
		RepoBranches: repoBranches,
		Fetch:        !flags.noFetch,
		DryRun:       flags.dryRun,
	})
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return printJSON(result)
	}
	printNewResult(result)
	return nil
}

// parseRepoBranches turns repeated "repo=branch" arguments into a map,
// rejecting malformed entries and repeated repos.
func parseRepoBranches(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		repo, branch, ok := strings.Cut(pair, "=")
		if !ok || repo == "" || branch == "" {
			return nil, model.NewCLIErrorf(model.ExitValidationError,
				"invalid --repo-branch %q (expected repo=branch)", pair)
		}
		if _, dup := out[repo]; dup {
			return nil, model.NewCLIErrorf(model.ExitValidationError,
				"--repo-branch given twice for repo %q", repo)
		}
		out[repo] = branch
	}
	return out, nil
}

func printNewResult(result *forest.NewResult) {
	if result.DryRun {
		fmt.Printf("Would create forest %q (%s mode) at %s\n", result.Name, result.Mode, result.Dir)
	} else {
		fmt.Printf("Created forest %q (%s mode) at %s\n", result.Name, result.Mode, result.Dir)
	}
	for _, repo := range result.Repos {
		var how string
		switch repo.Kind {
		case forest.CheckoutExistingLocal:
			how = "existing local branch"
		case forest.CheckoutTrackRemote:
			how = "tracking remote branch"
		default:
			how = "new branch"
		}
		fmt.Printf("  %s  %s (%s)\n", repo.Name, repo.Branch, how)
	}
}
