package forest

import (
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mmr-tortoise/forest/internal/model"
)

// ExecResult is the outcome of `git-forest exec`.
type ExecResult struct {
	Name    string   `json:"name"`
	Command []string `json:"command"`
	Skipped []string `json:"skipped,omitempty"`
	Failed  []string `json:"failed,omitempty"`
}

// Exec runs a command in each member worktree with inherited stdio,
// collecting the repos whose command exited nonzero. Missing worktrees
// are skipped.
func Exec(logger *zap.Logger, f *Discovered, command []string) (*ExecResult, error) {
	if len(command) == 0 {
		return nil, model.NewCLIError(model.ExitValidationError,
			"no command given (usage: git-forest exec <name> -- <cmd> [args...])")
	}

	result := &ExecResult{
		Name:    f.Meta.Name.String(),
		Command: command,
	}
	for _, repo := range f.Meta.Repos {
		worktree := filepath.Join(f.Dir, repo.Name.String())
		if _, err := os.Stat(worktree); err != nil {
			result.Skipped = append(result.Skipped, repo.Name.String())
			continue
		}

		logger.Info("exec",
			zap.String("repo", repo.Name.String()),
			zap.Strings("command", command))

		// #nosec G204 -- running the user's own command is the point
		cmd := exec.Command(command[0], command[1:]...)
		cmd.Dir = worktree
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			result.Failed = append(result.Failed, repo.Name.String())
		}
	}
	return result, nil
}
