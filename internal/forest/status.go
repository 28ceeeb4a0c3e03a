package forest

import (
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/forest/internal/git"
)

// RepoStatus is one repo's slice of `git-forest status`.
type RepoStatus struct {
	Name    string `json:"name"`
	Branch  string `json:"branch"`
	Output  string `json:"output,omitempty"`
	Missing bool   `json:"missing,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusResult is the outcome of `git-forest status`.
type StatusResult struct {
	Name  string       `json:"name"`
	Dir   string       `json:"dir"`
	Repos []RepoStatus `json:"repos"`
}

// Status runs `git status -sb` in each member worktree. A missing
// worktree or a failing status is recorded and the loop continues.
func Status(f *Discovered) *StatusResult {
	result := &StatusResult{
		Name:  f.Meta.Name.String(),
		Dir:   f.Dir,
		Repos: make([]RepoStatus, 0, len(f.Meta.Repos)),
	}
	for _, repo := range f.Meta.Repos {
		rs := RepoStatus{Name: repo.Name.String(), Branch: repo.Branch}
		worktree := filepath.Join(f.Dir, repo.Name.String())
		if _, err := os.Stat(worktree); err != nil {
			rs.Missing = true
			result.Repos = append(result.Repos, rs)
			continue
		}
		out, err := git.Run(worktree, "status", "-sb")
		if err != nil {
			rs.Error = err.Error()
		} else {
			rs.Output = out
		}
		result.Repos = append(result.Repos, rs)
	}
	return result
}
