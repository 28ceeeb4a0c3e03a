package forest

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/forest/internal/config"
	"github.com/mmr-tortoise/forest/internal/git"
	"github.com/mmr-tortoise/forest/internal/model"
)

func mustGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := git.Run(dir, args...)
	require.NoError(t, err, "git %v in %s", args, dir)
	return out
}

// setupSourceRepo builds a repository whose main branch tracks a bare
// "origin" remote, the shape forests are created from.
func setupSourceRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	cmd := exec.Command("git", "init", "-b", "main", dir)
	require.NoError(t, cmd.Run())
	mustGit(t, dir, "config", "user.email", "test@example.com")
	mustGit(t, dir, "config", "user.name", "Test User")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test\n"), 0o644))
	mustGit(t, dir, "add", ".")
	mustGit(t, dir, "commit", "-m", "initial commit")

	bare := t.TempDir()
	cmd = exec.Command("git", "init", "--bare", bare)
	require.NoError(t, cmd.Run())
	mustGit(t, dir, "remote", "add", "origin", bare)
	mustGit(t, dir, "push", "-u", "origin", "main")

	return dir
}

func repoEntry(t *testing.T, name, path string) config.Repo {
	t.Helper()
	repoName, err := model.NewRepoName(name)
	require.NoError(t, err)
	return config.Repo{Name: repoName, Path: model.AbsolutePath(path), BaseBranch: "main", Remote: "origin"}
}

func makeTemplate(t *testing.T, worktreeBase string, repos ...config.Repo) *config.Template {
	t.Helper()
	return &config.Template{
		Name:                  "test",
		WorktreeBase:          model.AbsolutePath(worktreeBase),
		BaseBranch:            "main",
		FeatureBranchTemplate: "feat/{name}",
		Repos:                 repos,
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func forestName(t *testing.T, name string) model.ForestName {
	t.Helper()
	fn, err := model.NewForestName(name)
	require.NoError(t, err)
	return fn
}

// writeFakeForest drops a forest dir with only a meta file, for discovery
// and reset tests that do not need real worktrees.
func writeFakeForest(t *testing.T, base, name string, createdAt time.Time, repos []model.RepoMeta) string {
	t.Helper()
	dir := filepath.Join(base, model.SanitizeForestName(name))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if repos == nil {
		repos = []model.RepoMeta{}
	}
	meta := &model.ForestMeta{
		Name:      forestName(t, name),
		CreatedAt: createdAt,
		Mode:      model.ModeFeature,
		Repos:     repos,
	}
	require.NoError(t, meta.Write(filepath.Join(dir, model.MetaFilename)))
	return dir
}
