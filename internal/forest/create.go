package forest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mmr-tortoise/forest/internal/config"
	"github.com/mmr-tortoise/forest/internal/git"
	"github.com/mmr-tortoise/forest/internal/model"
)

// CheckoutKind is the strategy used to attach a repo's worktree. It
// determines the `git worktree add` argument shape and whether removal
// may later delete the branch.
type CheckoutKind string

const (
	// CheckoutExistingLocal attaches the worktree to a branch that
	// already exists locally.
	CheckoutExistingLocal CheckoutKind = "existing_local"

	// CheckoutTrackRemote creates a local branch tracking an existing
	// remote branch.
	CheckoutTrackRemote CheckoutKind = "track_remote"

	// CheckoutNewBranch creates a brand-new branch from the remote base
	// branch, with no upstream tracking.
	CheckoutNewBranch CheckoutKind = "new_branch"
)

// NewInputs collects everything `git-forest new` needs to plan a forest.
type NewInputs struct {
	Name         model.ForestName
	Mode         model.ForestMode
	Template     *config.Template
	GlobalBranch string
	RepoBranches map[string]string
	Fetch        bool
	DryRun       bool
}

// RepoPlan is one repo's slice of a creation plan.
type RepoPlan struct {
	Repo   config.Repo
	Branch model.BranchName
	Kind   CheckoutKind
	Dest   string
}

// ForestPlan is a validated, ready-to-execute creation plan. It is never
// persisted; execution trusts the plan's snapshot.
type ForestPlan struct {
	Name  model.ForestName
	Mode  model.ForestMode
	Dir   string
	Repos []RepoPlan
}

// RepoCreated summarizes one repo in a NewResult.
type RepoCreated struct {
	Name          string       `json:"name"`
	Branch        string       `json:"branch"`
	Kind          CheckoutKind `json:"kind"`
	Dest          string       `json:"dest"`
	BranchCreated bool         `json:"branch_created"`
}

// NewResult is the outcome of `git-forest new`.
type NewResult struct {
	Name   string        `json:"name"`
	Dir    string        `json:"dir"`
	Mode   string        `json:"mode"`
	DryRun bool          `json:"dry_run"`
	Repos  []RepoCreated `json:"repos"`
}

// Create plans and (unless dry-run) executes a forest creation.
func Create(logger *zap.Logger, inputs NewInputs) (*NewResult, error) {
	if inputs.Fetch {
		fetchSources(logger, inputs.Template)
	}
	plan, err := PlanCreate(inputs)
	if err != nil {
		return nil, err
	}
	if inputs.DryRun {
		return planResult(plan, true), nil
	}
	return ExecuteCreate(logger, plan)
}

// fetchSources refreshes remote-tracking refs before planning so ref
// probes see the remote's current state. Fetch failures are logged, not
// fatal; planning will surface any ref that is genuinely missing.
func fetchSources(logger *zap.Logger, tmpl *config.Template) {
	type target struct{ path, remote string }
	seen := make(map[target]bool)
	for _, repo := range tmpl.Repos {
		tgt := target{repo.Path.String(), repo.Remote}
		if seen[tgt] {
			continue
		}
		seen[tgt] = true
		if err := git.Fetch(repo.Path.String(), repo.Remote); err != nil {
			logger.Warn("fetch failed",
				zap.String("repo", repo.Name.String()),
				zap.String("remote", repo.Remote),
				zap.Error(err))
		}
	}
}

// PlanCreate validates the request against the template and live git
// state and produces an ordered plan. Each failure is terminal; no
// partial plan is ever returned.
func PlanCreate(inputs NewInputs) (*ForestPlan, error) {
	tmpl := inputs.Template

	repoByName := make(map[string]config.Repo, len(tmpl.Repos))
	for _, repo := range tmpl.Repos {
		repoByName[repo.Name.String()] = repo
	}
	for repoName := range inputs.RepoBranches {
		if _, ok := repoByName[repoName]; !ok {
			return nil, model.NewCLIErrorf(model.ExitValidationError,
				"--repo-branch references unknown repo %q (template %q has: %s)",
				repoName, tmpl.Name, templateRepoNames(tmpl))
		}
	}

	if err := os.MkdirAll(tmpl.WorktreeBase.String(), 0o755); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			"failed to create worktree base "+tmpl.WorktreeBase.String(), err)
	}

	dir := model.ForestDir(tmpl.WorktreeBase.String(), inputs.Name)
	if _, err := os.Stat(dir); err == nil {
		return nil, model.NewCLIErrorf(model.ExitValidationError,
			"forest directory already exists: %s", dir)
	}
	// The sanitized dir name and the logical name can diverge, so a dir
	// check alone is not enough.
	existing, err := Find(tmpl.WorktreeBase.String(), inputs.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.NewCLIErrorf(model.ExitValidationError,
			"a forest named %q already exists at %s", inputs.Name, existing.Dir)
	}

	for _, repo := range tmpl.Repos {
		info, statErr := os.Stat(repo.Path.String())
		if statErr != nil || !info.IsDir() {
			return nil, model.NewCLIErrorf(model.ExitValidationError,
				"repo %q source path does not exist: %s", repo.Name, repo.Path)
		}
	}

	// Validate every branch target before probing any refs, so a bad
	// branch name anywhere in the template surfaces ahead of per-repo
	// git-state errors.
	branches := make([]model.BranchName, 0, len(tmpl.Repos))
	for _, repo := range tmpl.Repos {
		branch, err := branchTarget(inputs, repo)
		if err != nil {
			return nil, err
		}
		branches = append(branches, branch)
	}

	plan := &ForestPlan{
		Name:  inputs.Name,
		Mode:  inputs.Mode,
		Dir:   dir,
		Repos: make([]RepoPlan, 0, len(tmpl.Repos)),
	}

	for i, repo := range tmpl.Repos {
		kind, err := resolveCheckoutKind(repo, branches[i])
		if err != nil {
			return nil, err
		}
		plan.Repos = append(plan.Repos, RepoPlan{
			Repo:   repo,
			Branch: branches[i],
			Kind:   kind,
			Dest:   filepath.Join(dir, repo.Name.String()),
		})
	}
	return plan, nil
}

// branchTarget computes the branch for one repo. Precedence: per-repo
// override, then global override, then the mode default.
func branchTarget(inputs NewInputs, repo config.Repo) (model.BranchName, error) {
	if override, ok := inputs.RepoBranches[repo.Name.String()]; ok {
		return model.NewBranchName(override, repo.Remote)
	}
	if inputs.GlobalBranch != "" {
		return model.NewBranchName(inputs.GlobalBranch, repo.Remote)
	}
	switch inputs.Mode {
	case model.ModeReview:
		return model.NewBranchName("forest/"+inputs.Name.String(), repo.Remote)
	default:
		branch := strings.ReplaceAll(inputs.Template.FeatureBranchTemplate, "{name}", inputs.Name.String())
		return model.NewBranchName(branch, repo.Remote)
	}
}

// resolveCheckoutKind probes refs in the source repo: a local branch wins,
// then a remote-tracking branch, otherwise a new branch is cut from the
// remote base branch (which must exist).
func resolveCheckoutKind(repo config.Repo, branch model.BranchName) (CheckoutKind, error) {
	localExists, err := git.RefExists(repo.Path.String(), "refs/heads/"+branch.String())
	if err != nil {
		return "", err
	}
	if localExists {
		return CheckoutExistingLocal, nil
	}

	remoteExists, err := git.RefExists(repo.Path.String(), "refs/remotes/"+repo.Remote+"/"+branch.String())
	if err != nil {
		return "", err
	}
	if remoteExists {
		return CheckoutTrackRemote, nil
	}

	baseRef := "refs/remotes/" + repo.Remote + "/" + repo.BaseBranch
	baseExists, err := git.RefExists(repo.Path.String(), baseRef)
	if err != nil {
		return "", err
	}
	if !baseExists {
		return "", model.NewCLIErrorf(model.ExitGitError,
			"repo %q has no %s/%s to branch from (try 'git -C %s fetch %s')",
			repo.Name, repo.Remote, repo.BaseBranch, repo.Path, repo.Remote)
	}
	return CheckoutNewBranch, nil
}

// ExecuteCreate runs a plan. Any repo failure rolls back every worktree
// created so far and deletes the forest directory; no forest is left
// half-created.
func ExecuteCreate(logger *zap.Logger, plan *ForestPlan) (*NewResult, error) {
	// Mkdir, not MkdirAll: if the directory appeared since planning this
	// must fail rather than silently merge with it.
	if err := os.Mkdir(plan.Dir, 0o755); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			"failed to create forest directory "+plan.Dir, err)
	}

	meta := &model.ForestMeta{
		Name:      plan.Name,
		CreatedAt: time.Now().UTC(),
		Mode:      plan.Mode,
		Repos:     []model.RepoMeta{},
	}
	metaPath := filepath.Join(plan.Dir, model.MetaFilename)
	if err := meta.Write(metaPath); err != nil {
		os.RemoveAll(plan.Dir)
		return nil, err
	}

	var completed []RepoPlan
	for _, rp := range plan.Repos {
		logger.Info("adding worktree",
			zap.String("forest", plan.Name.String()),
			zap.String("repo", rp.Repo.Name.String()),
			zap.String("branch", rp.Branch.String()),
			zap.String("kind", string(rp.Kind)))

		if err := addWorktree(rp); err != nil {
			logger.Error("worktree add failed, rolling back",
				zap.String("repo", rp.Repo.Name.String()),
				zap.Error(err))
			rollbackCreate(logger, plan, completed)
			return nil, err
		}
		completed = append(completed, rp)

		// Rewrite meta after every success so it always reflects exactly
		// the worktrees that exist.
		meta.Repos = append(meta.Repos, model.RepoMeta{
			Name:          rp.Repo.Name,
			Source:        rp.Repo.Path,
			Branch:        rp.Branch.String(),
			BaseBranch:    rp.Repo.BaseBranch,
			Remote:        rp.Repo.Remote,
			BranchCreated: rp.Kind == CheckoutNewBranch,
		})
		if err := meta.Write(metaPath); err != nil {
			rollbackCreate(logger, plan, completed)
			return nil, err
		}
	}

	return planResult(plan, false), nil
}

// addWorktree issues the checkout-kind-specific `git worktree add`.
func addWorktree(rp RepoPlan) error {
	branch := rp.Branch.String()
	remote := rp.Repo.Remote

	var args []string
	switch rp.Kind {
	case CheckoutExistingLocal:
		args = []string{"worktree", "add", rp.Dest, branch}
	case CheckoutTrackRemote:
		args = []string{"worktree", "add", rp.Dest, "-b", branch, remote + "/" + branch}
	case CheckoutNewBranch:
		// --no-track: a brand-new feature branch must not auto-push to
		// the base branch it was cut from.
		args = []string{"worktree", "add", "-b", branch, "--no-track", rp.Dest, remote + "/" + rp.Repo.BaseBranch}
	default:
		return model.NewCLIErrorf(model.ExitGeneralError, "unknown checkout kind %q", rp.Kind)
	}

	_, err := git.Run(rp.Repo.Path.String(), args...)
	return err
}

// rollbackCreate removes every worktree created so far, then the forest
// directory. Best-effort; the original error is what the caller reports.
func rollbackCreate(logger *zap.Logger, plan *ForestPlan, completed []RepoPlan) {
	for _, rp := range completed {
		assertInsideForest(plan.Dir, rp.Dest)
		if _, err := git.Run(rp.Repo.Path.String(), "worktree", "remove", "--force", rp.Dest); err != nil {
			logger.Warn("rollback: worktree remove failed",
				zap.String("repo", rp.Repo.Name.String()),
				zap.Error(err))
		}
	}
	if err := os.RemoveAll(plan.Dir); err != nil {
		logger.Warn("rollback: failed to delete forest directory",
			zap.String("dir", plan.Dir),
			zap.Error(err))
	}
}

// assertInsideForest panics if a path slated for destruction is not
// contained in the forest directory. Rollback and reset only ever delete
// children of the forest dir; anything else is a bug.
func assertInsideForest(forestDir, target string) {
	rel, err := filepath.Rel(forestDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		panic(fmt.Sprintf("refusing to remove %s: not inside forest dir %s", target, forestDir))
	}
}

func planResult(plan *ForestPlan, dryRun bool) *NewResult {
	result := &NewResult{
		Name:   plan.Name.String(),
		Dir:    plan.Dir,
		Mode:   plan.Mode.String(),
		DryRun: dryRun,
		Repos:  make([]RepoCreated, 0, len(plan.Repos)),
	}
	for _, rp := range plan.Repos {
		result.Repos = append(result.Repos, RepoCreated{
			Name:          rp.Repo.Name.String(),
			Branch:        rp.Branch.String(),
			Kind:          rp.Kind,
			Dest:          rp.Dest,
			BranchCreated: rp.Kind == CheckoutNewBranch,
		})
	}
	return result
}

func templateRepoNames(tmpl *config.Template) string {
	names := make([]string, 0, len(tmpl.Repos))
	for _, repo := range tmpl.Repos {
		names = append(names, repo.Name.String())
	}
	return strings.Join(names, ", ")
}
