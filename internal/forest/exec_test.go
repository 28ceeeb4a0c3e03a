package forest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmr-tortoise/forest/internal/model"
)

func TestExecRunsInEachWorktree(t *testing.T) {
	_, f, worktree := createTestForest(t, "demo")

	result, err := Exec(zap.NewNop(), f, []string{"touch", "ran-here"})
	require.NoError(t, err)

	assert.Empty(t, result.Failed)
	assert.Empty(t, result.Skipped)
	assert.FileExists(t, filepath.Join(worktree, "ran-here"))
}

func TestExecCollectsFailures(t *testing.T) {
	_, f, _ := createTestForest(t, "demo")

	result, err := Exec(zap.NewNop(), f, []string{"false"})
	require.NoError(t, err)
	assert.Equal(t, []string{"api"}, result.Failed)
}

func TestExecSkipsMissingWorktrees(t *testing.T) {
	_, f, worktree := createTestForest(t, "demo")
	require.NoError(t, os.RemoveAll(worktree))

	result, err := Exec(zap.NewNop(), f, []string{"true"})
	require.NoError(t, err)
	assert.Equal(t, []string{"api"}, result.Skipped)
}

func TestExecEmptyCommandErrors(t *testing.T) {
	_, f, _ := createTestForest(t, "demo")

	_, err := Exec(zap.NewNop(), f, nil)
	require.Error(t, err)
	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitValidationError, cliErr.Code)
}

func TestStatusReportsEachRepo(t *testing.T) {
	_, f, worktree := createTestForest(t, "demo")
	require.NoError(t, os.WriteFile(filepath.Join(worktree, "new.txt"), []byte("x\n"), 0o644))

	result := Status(f)
	require.Len(t, result.Repos, 1)
	rs := result.Repos[0]
	assert.Equal(t, "api", rs.Name)
	assert.False(t, rs.Missing)
	assert.Contains(t, rs.Output, "feat/demo")
	assert.Contains(t, rs.Output, "new.txt")
}

func TestStatusMarksMissingWorktree(t *testing.T) {
	_, f, worktree := createTestForest(t, "demo")
	require.NoError(t, os.RemoveAll(worktree))

	result := Status(f)
	require.Len(t, result.Repos, 1)
	assert.True(t, result.Repos[0].Missing)
}
