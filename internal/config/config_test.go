package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/forest/internal/model"
)

const sampleConfig = `{
  // comments are allowed
  "defaultTemplate": "acme",
  "templates": {
    "acme": {
      "worktreeBase": "~/worktrees",
      "baseBranch": "dev",
      "featureBranchTemplate": "dliv/{name}",
      "repos": [
        { "path": "~/src/acme-api" },
        { "path": "~/src/acme-web", "name": "web", "baseBranch": "main", "remote": "upstream" }
      ]
    },
    "docs": {
      "worktreeBase": "/tmp/doc-worktrees",
      "baseBranch": "main",
      "featureBranchTemplate": "docs/{name}",
      "repos": [
        { "path": "/srv/git/handbook" }
      ]
    }
  },
  "versionCheck": { "enabled": false }
}`

func TestParseSampleConfig(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.DefaultTemplate)
	assert.False(t, cfg.VersionCheckEnabled)
	assert.Equal(t, []string{"acme", "docs"}, cfg.TemplateNames())

	tmpl, err := cfg.Template("acme")
	require.NoError(t, err)
	assert.Equal(t, "dev", tmpl.BaseBranch)
	require.Len(t, tmpl.Repos, 2)

	home := os.Getenv("HOME")
	assert.Equal(t, model.AbsolutePath(filepath.Join(home, "worktrees")), tmpl.WorktreeBase)

	api := tmpl.Repos[0]
	assert.Equal(t, model.RepoName("acme-api"), api.Name, "name derives from last path segment")
	assert.Equal(t, model.AbsolutePath(filepath.Join(home, "src/acme-api")), api.Path)
	assert.Equal(t, "dev", api.BaseBranch, "baseBranch inherits from template")
	assert.Equal(t, "origin", api.Remote, "remote defaults to origin")

	web := tmpl.Repos[1]
	assert.Equal(t, model.RepoName("web"), web.Name)
	assert.Equal(t, "main", web.BaseBranch)
	assert.Equal(t, "upstream", web.Remote)
}

func TestVersionCheckDefaultsEnabled(t *testing.T) {
	cfg, err := Parse([]byte(`{
  "templates": {
    "t": {
      "worktreeBase": "/tmp/w",
      "baseBranch": "main",
      "featureBranchTemplate": "f/{name}",
      "repos": [{ "path": "/srv/r" }]
    }
  }
}`))
	require.NoError(t, err)
	assert.True(t, cfg.VersionCheckEnabled)
}

func TestTemplateFallsBackToDefault(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	tmpl, err := cfg.Template("")
	require.NoError(t, err)
	assert.Equal(t, "acme", tmpl.Name)
}

func TestTemplateUnknownListsAvailable(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	_, err = cfg.Template("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acme, docs")
}

func TestParseRejectsUnknownDefaultTemplate(t *testing.T) {
	_, err := Parse([]byte(`{
  "defaultTemplate": "missing",
  "templates": {
    "t": {
      "worktreeBase": "/tmp/w",
      "baseBranch": "main",
      "featureBranchTemplate": "f/{name}",
      "repos": [{ "path": "/srv/r" }]
    }
  }
}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestParseRejectsTemplateWithoutPlaceholder(t *testing.T) {
	_, err := Parse([]byte(`{
  "templates": {
    "t": {
      "worktreeBase": "/tmp/w",
      "baseBranch": "main",
      "featureBranchTemplate": "no-placeholder",
      "repos": [{ "path": "/srv/r" }]
    }
  }
}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{name}")
}

func TestParseRejectsDuplicateRepoNames(t *testing.T) {
	_, err := Parse([]byte(`{
  "templates": {
    "t": {
      "worktreeBase": "/tmp/w",
      "baseBranch": "main",
      "featureBranchTemplate": "f/{name}",
      "repos": [
        { "path": "/srv/a/repo" },
        { "path": "/srv/b/repo" }
      ]
    }
  }
}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate repo name")
}

func TestParseRejectsEmptyRepos(t *testing.T) {
	_, err := Parse([]byte(`{
  "templates": {
    "t": {
      "worktreeBase": "/tmp/w",
      "baseBranch": "main",
      "featureBranchTemplate": "f/{name}",
      "repos": []
    }
  }
}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no repos")
}

func TestParseRejectsNoTemplates(t *testing.T) {
	_, err := Parse([]byte(`{ "templates": {} }`))
	assert.Error(t, err)
}

func TestAllWorktreeBasesDedupesAndSorts(t *testing.T) {
	cfg, err := Parse([]byte(`{
  "templates": {
    "a": {
      "worktreeBase": "/tmp/w",
      "baseBranch": "main",
      "featureBranchTemplate": "f/{name}",
      "repos": [{ "path": "/srv/r1" }]
    },
    "b": {
      "worktreeBase": "/tmp/w",
      "baseBranch": "main",
      "featureBranchTemplate": "f/{name}",
      "repos": [{ "path": "/srv/r2" }]
    },
    "c": {
      "worktreeBase": "/tmp/other",
      "baseBranch": "main",
      "featureBranchTemplate": "f/{name}",
      "repos": [{ "path": "/srv/r3" }]
    }
  }
}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/other", "/tmp/w"}, cfg.AllWorktreeBases())
}

func TestLoadMissingFileHintsInit(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.jsonc"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init")
}

func TestWriteAtomicRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.jsonc")
	require.NoError(t, WriteAtomic(path, []byte(sampleConfig)))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.DefaultTemplate)
}

func TestStarterConfigParses(t *testing.T) {
	cfg, err := Parse([]byte(StarterConfig))
	require.NoError(t, err)
	assert.Equal(t, "example", cfg.DefaultTemplate)
	assert.True(t, cfg.VersionCheckEnabled)
}
