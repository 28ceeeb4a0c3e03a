package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "git-forest.log")

	logger, err := New(Options{
		FilePath:   path,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
		Level:      zapcore.InfoLevel,
	})
	require.NoError(t, err)

	logger.Info("worktree created", zap.String("repo", "acme-api"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "worktree created")
	assert.Contains(t, string(data), "acme-api")
}

func TestNewForCLINeverNil(t *testing.T) {
	logger := NewForCLI(false)
	require.NotNil(t, logger)
	logger.Info("noop check")
}
