// Package git wraps the git CLI (via os/exec) with the small set of
// invocations and predicates the forest planners and executors need.
//
// Design decisions:
//   - We shell out to `git` rather than using a Go Git library (e.g., go-git)
//     because worktree operations require full Git CLI compatibility, and
//     go-git's worktree support is limited.
//   - All failing git commands are wrapped in model.CLIError with
//     ExitGitError so the CLI layer maps them to the right exit code.
//   - Predicates that hinge on a git exit status (ref probes, ancestry)
//     discard output and inspect the code instead of treating a nonzero
//     exit as a hard error.
package git

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mmr-tortoise/forest/internal/model"
)

// Run executes a git command in the given repository directory and returns
// its stdout with the trailing newline stripped.
//
// The directory is passed via the -C flag, which causes git to change to
// that directory before doing anything else. This avoids mutating the
// process working directory.
func Run(repoPath string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)

	// #nosec G204 -- args are constructed internally, not from user input
	cmd := exec.Command("git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed in %s", strings.Join(args, " "), repoPath)
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}

	return strings.TrimRight(stdout.String(), "\n"), nil
}

// exitCode runs a git command discarding all output and returns its exit
// code. A non-exit failure (git binary missing, etc.) is returned as an
// error.
func exitCode(repoPath string, args ...string) (int, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)

	// #nosec G204 -- args are constructed internally, not from user input
	cmd := exec.Command("git", fullArgs...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, model.WrapCLIError(model.ExitGitError,
		fmt.Sprintf("failed to run git %s in %s", strings.Join(args, " "), repoPath), err)
}

// RefExists reports whether a fully-qualified ref (refs/heads/...,
// refs/remotes/...) exists in the repository.
func RefExists(repoPath, ref string) (bool, error) {
	code, err := exitCode(repoPath, "show-ref", "--verify", "--quiet", ref)
	if err != nil {
		return false, err
	}
	return code == 0, nil
}

// IsRepo reports whether the path is inside a git repository.
func IsRepo(path string) bool {
	code, err := exitCode(path, "rev-parse", "--git-dir")
	return err == nil && code == 0
}

// HasDirtyFiles reports whether a worktree has uncommitted changes.
// Untracked files count as dirty, the same signal git itself uses to
// refuse `worktree remove`.
func HasDirtyFiles(worktreePath string) (bool, error) {
	out, err := Run(worktreePath, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// IsAncestor reports whether branch is an ancestor of ref, i.e. every
// commit on branch is reachable from ref. Exit code 1 means "not an
// ancestor"; anything above that is a real failure (unknown ref).
func IsAncestor(repoPath, branch, ref string) (bool, error) {
	code, err := exitCode(repoPath, "merge-base", "--is-ancestor", branch, ref)
	if err != nil {
		return false, err
	}
	switch code {
	case 0:
		return true, nil
	case 1:
		return false, nil
	default:
		return false, model.NewCLIErrorf(model.ExitGitError,
			"git merge-base --is-ancestor %s %s failed in %s (exit code %d)", branch, ref, repoPath, code)
	}
}

// UnpushedCount returns the number of commits on branch that are not on
// its upstream. hasUpstream is false when the branch has no upstream
// configured, in which case count is meaningless.
func UnpushedCount(repoPath, branch string) (count int, hasUpstream bool, err error) {
	out, runErr := Run(repoPath, "rev-list", "--count", branch+"@{upstream}.."+branch)
	if runErr != nil {
		// No upstream configured (or the branch is gone). Either way the
		// upstream-based check does not apply.
		return 0, false, nil
	}
	n, parseErr := strconv.Atoi(strings.TrimSpace(out))
	if parseErr != nil {
		return 0, false, model.WrapCLIError(model.ExitGitError,
			fmt.Sprintf("unexpected rev-list --count output %q", out), parseErr)
	}
	return n, true, nil
}

// Fetch updates the remote-tracking refs for the given remote.
func Fetch(repoPath, remote string) error {
	_, err := Run(repoPath, "fetch", remote)
	return err
}
