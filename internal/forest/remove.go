package forest

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mmr-tortoise/forest/internal/git"
	"github.com/mmr-tortoise/forest/internal/model"
)

// OutcomeStatus classifies one removal step.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// Outcome is the result of one step (worktree removal, branch deletion,
// forest dir removal) for one repo.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Detail string        `json:"detail,omitempty"`
}

func succeeded() Outcome              { return Outcome{Status: OutcomeSuccess} }
func skipped(reason string) Outcome   { return Outcome{Status: OutcomeSkipped, Detail: reason} }
func failed(err error) Outcome        { return Outcome{Status: OutcomeFailed, Detail: err.Error()} }
func failedMsg(detail string) Outcome { return Outcome{Status: OutcomeFailed, Detail: detail} }

// RepoRmPlan carries one repo's meta plus live-probed facts. The probes
// are taken once at plan time and trusted throughout execution.
type RepoRmPlan struct {
	Meta           model.RepoMeta
	WorktreePath   string
	WorktreeExists bool
	SourceExists   bool
	HasDirtyFiles  bool
}

// RmPlan is a frozen removal plan for one forest.
type RmPlan struct {
	Dir   string
	Meta  *model.ForestMeta
	Repos []RepoRmPlan
}

// RepoRemoved reports the per-step outcomes for one repo.
type RepoRemoved struct {
	Name     string  `json:"name"`
	Worktree Outcome `json:"worktree"`
	Branch   Outcome `json:"branch"`
}

// RmResult is the outcome of `git-forest rm`. Failed is true when any
// step recorded an error or the dirty preflight blocked the removal.
type RmResult struct {
	Name       string        `json:"name"`
	Dir        string        `json:"dir"`
	DryRun     bool          `json:"dry_run"`
	Force      bool          `json:"force"`
	Blocked    bool          `json:"blocked"`
	DirtyRepos []string      `json:"dirty_repos,omitempty"`
	Repos      []RepoRemoved `json:"repos"`
	ForestDir  Outcome       `json:"forest_dir"`
	Errors     []string      `json:"errors,omitempty"`
}

// Failed reports whether the removal should exit nonzero.
func (r *RmResult) Failed() bool {
	return r.Blocked || len(r.Errors) > 0
}

// PlanRemove probes the live state of every repo recorded in the forest's
// meta and freezes it into a plan.
func PlanRemove(f *Discovered) (*RmPlan, error) {
	plan := &RmPlan{
		Dir:   f.Dir,
		Meta:  f.Meta,
		Repos: make([]RepoRmPlan, 0, len(f.Meta.Repos)),
	}
	for _, repoMeta := range f.Meta.Repos {
		rp := RepoRmPlan{
			Meta:         repoMeta,
			WorktreePath: filepath.Join(f.Dir, repoMeta.Name.String()),
		}
		if info, err := os.Stat(rp.WorktreePath); err == nil && info.IsDir() {
			rp.WorktreeExists = true
		}
		if info, err := os.Stat(repoMeta.Source.String()); err == nil && info.IsDir() {
			rp.SourceExists = true
		}
		if rp.WorktreeExists {
			// A failed probe is treated as clean; git worktree remove is
			// the backstop and refuses dirty worktrees on its own.
			dirty, err := git.HasDirtyFiles(rp.WorktreePath)
			if err == nil {
				rp.HasDirtyFiles = dirty
			}
		}
		plan.Repos = append(plan.Repos, rp)
	}
	return plan, nil
}

// Remove plans and executes (or previews) the removal of a forest.
func Remove(logger *zap.Logger, f *Discovered, force, dryRun bool) (*RmResult, error) {
	plan, err := PlanRemove(f)
	if err != nil {
		return nil, err
	}
	return ExecuteRemove(logger, plan, force, dryRun), nil
}

// ExecuteRemove runs the removal plan. Unless forced, a dirty worktree
// anywhere blocks the entire removal before anything is touched. After
// the preflight, repos are processed best-effort and failures accumulate;
// the forest directory is only removed when nothing failed.
func ExecuteRemove(logger *zap.Logger, plan *RmPlan, force, dryRun bool) *RmResult {
	result := &RmResult{
		Name:   plan.Meta.Name.String(),
		Dir:    plan.Dir,
		DryRun: dryRun,
		Force:  force,
		Repos:  make([]RepoRemoved, 0, len(plan.Repos)),
	}

	if !force {
		for _, rp := range plan.Repos {
			if rp.WorktreeExists && rp.HasDirtyFiles {
				result.DirtyRepos = append(result.DirtyRepos, rp.Meta.Name.String())
			}
		}
		if len(result.DirtyRepos) > 0 {
			result.Blocked = true
			result.ForestDir = skipped("removal blocked by uncommitted changes (use --force to discard)")
			return result
		}
	}

	for _, rp := range plan.Repos {
		repoResult := RepoRemoved{Name: rp.Meta.Name.String()}
		repoResult.Worktree = removeWorktree(logger, plan, rp, force, dryRun)
		repoResult.Branch = deleteBranch(logger, rp, repoResult.Worktree, force, dryRun)
		result.Repos = append(result.Repos, repoResult)

		if repoResult.Worktree.Status == OutcomeFailed {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: worktree: %s", rp.Meta.Name, repoResult.Worktree.Detail))
		}
		if repoResult.Branch.Status == OutcomeFailed {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: branch: %s", rp.Meta.Name, repoResult.Branch.Detail))
		}
	}

	result.ForestDir = removeForestDir(logger, plan, len(result.Errors) > 0, force, dryRun)
	if result.ForestDir.Status == OutcomeFailed {
		result.Errors = append(result.Errors, "forest dir: "+result.ForestDir.Detail)
	}
	return result
}

// removeWorktree handles one repo's worktree. An already-missing worktree
// is skipped and counts as handled for branch deletion. A worktree whose
// source repo is gone cannot be unregistered through git, so it is
// deleted directly.
func removeWorktree(logger *zap.Logger, plan *RmPlan, rp RepoRmPlan, force, dryRun bool) Outcome {
	if !rp.WorktreeExists {
		return skipped("worktree already missing")
	}
	if dryRun {
		return succeeded()
	}

	if !rp.SourceExists {
		assertInsideForest(plan.Dir, rp.WorktreePath)
		logger.Info("source repo missing, deleting worktree directory",
			zap.String("repo", rp.Meta.Name.String()),
			zap.String("path", rp.WorktreePath))
		if err := os.RemoveAll(rp.WorktreePath); err != nil {
			return failed(err)
		}
		return succeeded()
	}

	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, rp.WorktreePath)
	logger.Info("removing worktree",
		zap.String("repo", rp.Meta.Name.String()),
		zap.String("path", rp.WorktreePath))
	if _, err := git.Run(rp.Meta.Source.String(), args...); err != nil {
		return failed(err)
	}
	return succeeded()
}

// deleteBranch deletes the repo's branch when this lifecycle created it
// and the worktree step left nothing behind. Unforced deletion tries the
// merge-checked -d first, then two safety fallbacks before giving up:
// the branch being an ancestor of its recorded remote base branch, or
// having an upstream with nothing unpushed (the squash-merge case).
func deleteBranch(logger *zap.Logger, rp RepoRmPlan, worktree Outcome, force, dryRun bool) Outcome {
	if !rp.Meta.BranchCreated {
		return skipped("branch not created by forest")
	}
	if !rp.SourceExists {
		return skipped("source repo missing")
	}
	if worktree.Status == OutcomeFailed {
		return skipped("worktree still exists, cannot delete branch")
	}
	if dryRun {
		return succeeded()
	}

	branch := rp.Meta.Branch
	if force {
		if _, err := git.Run(rp.Meta.Source.String(), "branch", "-D", branch); err != nil {
			return failed(err)
		}
		return succeeded()
	}

	_, safeErr := git.Run(rp.Meta.Source.String(), "branch", "-d", branch)
	if safeErr == nil {
		return succeeded()
	}

	if branchSafeToForceDelete(logger, rp) {
		if _, err := git.Run(rp.Meta.Source.String(), "branch", "-D", branch); err != nil {
			return failed(err)
		}
		return succeeded()
	}

	return failedMsg(fmt.Sprintf(
		"branch %s not fully merged, leaving it in place (use --force to delete anyway): %s",
		branch, safeErr.Error()))
}

// branchSafeToForceDelete applies the two fallbacks for branches that
// `git branch -d` refuses but whose work is provably preserved.
func branchSafeToForceDelete(logger *zap.Logger, rp RepoRmPlan) bool {
	branch := rp.Meta.Branch
	baseRef := rp.Meta.Remote + "/" + rp.Meta.BaseBranch

	merged, err := git.IsAncestor(rp.Meta.Source.String(), branch, baseRef)
	if err == nil && merged {
		logger.Info("branch merged into remote base, deleting",
			zap.String("branch", branch),
			zap.String("base", baseRef))
		return true
	}

	count, hasUpstream, err := git.UnpushedCount(rp.Meta.Source.String(), branch)
	if err == nil && hasUpstream && count == 0 {
		logger.Info("branch fully pushed upstream, deleting",
			zap.String("branch", branch))
		return true
	}
	return false
}

// removeForestDir removes the forest directory itself, but only when
// every repo was handled cleanly; a partially-failed removal keeps the
// meta so the forest stays discoverable and retryable.
func removeForestDir(logger *zap.Logger, plan *RmPlan, hadErrors, force, dryRun bool) Outcome {
	if hadErrors {
		return skipped("errors occurred, keeping forest directory")
	}
	if dryRun {
		return succeeded()
	}

	logger.Info("removing forest directory", zap.String("dir", plan.Dir))
	if force {
		if err := os.RemoveAll(plan.Dir); err != nil {
			return failed(err)
		}
		return succeeded()
	}

	if err := os.Remove(filepath.Join(plan.Dir, model.MetaFilename)); err != nil && !os.IsNotExist(err) {
		return failed(err)
	}
	// Non-recursive: anything unexpected left in the dir fails loudly
	// instead of being silently destroyed.
	if err := os.Remove(plan.Dir); err != nil {
		return failedMsg(fmt.Sprintf("forest directory not empty or not removable: %s", err))
	}
	return succeeded()
}
