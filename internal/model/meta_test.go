package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMeta(t *testing.T) *ForestMeta {
	t.Helper()
	name, err := NewForestName("review-sues-dialog")
	require.NoError(t, err)

	return &ForestMeta{
		Name:      name,
		CreatedAt: time.Date(2026, 2, 7, 14, 30, 0, 0, time.UTC),
		Mode:      ModeReview,
		Repos: []RepoMeta{
			{
				Name:          "foo-api",
				Source:        "/home/dliv/src/foo-api",
				Branch:        "forest/review-sues-dialog",
				BaseBranch:    "dev",
				Remote:        "origin",
				BranchCreated: true,
			},
			{
				Name:          "foo-web",
				Source:        "/home/dliv/src/foo-web",
				Branch:        "sue/gh-100/fix-dialog",
				BaseBranch:    "dev",
				Remote:        "origin",
				BranchCreated: false,
			},
		},
	}
}

func TestMetaWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, MetaFilename)

	original := sampleMeta(t)
	require.NoError(t, original.Write(path))

	loaded, err := ReadMeta(path)
	require.NoError(t, err)

	assert.Equal(t, original.Name, loaded.Name)
	assert.True(t, original.CreatedAt.Equal(loaded.CreatedAt))
	assert.Equal(t, ModeReview, loaded.Mode)
	require.Len(t, loaded.Repos, 2)
	assert.Equal(t, RepoName("foo-api"), loaded.Repos[0].Name)
	assert.True(t, loaded.Repos[0].BranchCreated)
	assert.Equal(t, RepoName("foo-web"), loaded.Repos[1].Name)
	assert.False(t, loaded.Repos[1].BranchCreated)
	assert.Equal(t, "origin", loaded.Repos[1].Remote)
}

func TestReadMetaAllFields(t *testing.T) {
	doc := `name: test-forest
created_at: 2026-02-07T14:30:00Z
mode: feature
repos:
  - name: foo-api
    source: /home/dliv/src/foo-api
    branch: dliv/test-forest
    base_branch: dev
    remote: origin
    branch_created: true
  - name: dev-docs
    source: /home/dliv/src/dev-docs
    branch: dliv/test-forest
    base_branch: main
    remote: upstream
    branch_created: true
`
	dir := t.TempDir()
	path := filepath.Join(dir, MetaFilename)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	meta, err := ReadMeta(path)
	require.NoError(t, err)
	assert.Equal(t, ForestName("test-forest"), meta.Name)
	assert.Equal(t, ModeFeature, meta.Mode)
	require.Len(t, meta.Repos, 2)
	assert.Equal(t, AbsolutePath("/home/dliv/src/foo-api"), meta.Repos[0].Source)
	assert.Equal(t, "main", meta.Repos[1].BaseBranch)
	assert.Equal(t, "upstream", meta.Repos[1].Remote)
}

func TestReadMetaRejectsEmptyName(t *testing.T) {
	doc := `name: ""
created_at: 2026-02-07T14:30:00Z
mode: feature
repos: []
`
	dir := t.TempDir()
	path := filepath.Join(dir, MetaFilename)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := ReadMeta(path)
	assert.Error(t, err)
}

func TestReadMetaRejectsRelativeSource(t *testing.T) {
	doc := `name: test-forest
created_at: 2026-02-07T14:30:00Z
mode: feature
repos:
  - name: foo
    source: relative/path
    branch: b
    base_branch: main
    remote: origin
    branch_created: true
`
	dir := t.TempDir()
	path := filepath.Join(dir, MetaFilename)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := ReadMeta(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute")
}

func TestParseForestMode(t *testing.T) {
	mode, err := ParseForestMode("feature")
	require.NoError(t, err)
	assert.Equal(t, ModeFeature, mode)

	mode, err = ParseForestMode("Review")
	require.NoError(t, err)
	assert.Equal(t, ModeReview, mode)

	_, err = ParseForestMode("bogus")
	assert.Error(t, err)
}

func TestCLIErrorUnwrap(t *testing.T) {
	underlying := os.ErrNotExist
	err := WrapCLIError(ExitGitError, "git failed", underlying)
	assert.Equal(t, ExitGitError, err.Code)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "git failed")
}
