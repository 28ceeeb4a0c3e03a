// Package config loads and resolves the git-forest configuration file.
//
// The file is JSONC (JSON with comments) so users can annotate their
// template definitions. Parsing strips comments with tidwall/jsonc and
// hands the result to encoding/json.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/forest/internal/model"
)

// ConfigFilename is the name of the configuration file inside the
// git-forest config directory.
const ConfigFilename = "config.jsonc"

// namePlaceholder must appear in every featureBranchTemplate; it is
// replaced with the forest name when computing branch targets.
const namePlaceholder = "{name}"

// rawConfig mirrors the JSONC file before validation and path expansion.
type rawConfig struct {
	DefaultTemplate string                 `json:"defaultTemplate"`
	Templates       map[string]rawTemplate `json:"templates"`
	VersionCheck    *rawVersionCheck       `json:"versionCheck"`
}

type rawTemplate struct {
	WorktreeBase          string    `json:"worktreeBase"`
	BaseBranch            string    `json:"baseBranch"`
	FeatureBranchTemplate string    `json:"featureBranchTemplate"`
	Repos                 []rawRepo `json:"repos"`
}

type rawRepo struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	BaseBranch string `json:"baseBranch"`
	Remote     string `json:"remote"`
}

type rawVersionCheck struct {
	Enabled *bool `json:"enabled"`
}

// Config is the validated configuration with all paths absolute.
type Config struct {
	DefaultTemplate     string
	Templates           map[string]Template
	VersionCheckEnabled bool
}

// Template is a resolved template: its worktree base, default base
// branch, branch-name pattern, and member repos. Repos is non-empty and
// repo names are unique.
type Template struct {
	Name                  string
	WorktreeBase          model.AbsolutePath
	BaseBranch            string
	FeatureBranchTemplate string
	Repos                 []Repo
}

// Repo is one source repository entry with overrides applied.
type Repo struct {
	Name       model.RepoName
	Path       model.AbsolutePath
	BaseBranch string
	Remote     string
}

// Parse validates raw JSONC config bytes into a Config.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to parse config", err)
	}
	return resolve(&raw)
}

func resolve(raw *rawConfig) (*Config, error) {
	if len(raw.Templates) == 0 {
		return nil, model.NewCLIError(model.ExitConfigError, "config has no templates")
	}
	if raw.DefaultTemplate != "" {
		if _, ok := raw.Templates[raw.DefaultTemplate]; !ok {
			return nil, model.NewCLIErrorf(model.ExitConfigError,
				"defaultTemplate %q does not match any template (available: %s)",
				raw.DefaultTemplate, strings.Join(templateNames(raw.Templates), ", "))
		}
	}

	cfg := &Config{
		DefaultTemplate:     raw.DefaultTemplate,
		Templates:           make(map[string]Template, len(raw.Templates)),
		VersionCheckEnabled: true,
	}
	if raw.VersionCheck != nil && raw.VersionCheck.Enabled != nil {
		cfg.VersionCheckEnabled = *raw.VersionCheck.Enabled
	}

	for name, rawTmpl := range raw.Templates {
		tmpl, err := resolveTemplate(name, rawTmpl)
		if err != nil {
			return nil, err
		}
		cfg.Templates[name] = *tmpl
	}
	return cfg, nil
}

func resolveTemplate(name string, raw rawTemplate) (*Template, error) {
	if raw.WorktreeBase == "" {
		return nil, model.NewCLIErrorf(model.ExitConfigError, "template %q has no worktreeBase", name)
	}
	worktreeBase, err := model.NewAbsolutePath(raw.WorktreeBase)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("template %q worktreeBase", name), err)
	}
	if raw.BaseBranch == "" {
		return nil, model.NewCLIErrorf(model.ExitConfigError, "template %q has no baseBranch", name)
	}
	if !strings.Contains(raw.FeatureBranchTemplate, namePlaceholder) {
		return nil, model.NewCLIErrorf(model.ExitConfigError,
			"template %q featureBranchTemplate %q must contain %s",
			name, raw.FeatureBranchTemplate, namePlaceholder)
	}
	if len(raw.Repos) == 0 {
		return nil, model.NewCLIErrorf(model.ExitConfigError, "template %q has no repos", name)
	}

	tmpl := &Template{
		Name:                  name,
		WorktreeBase:          worktreeBase,
		BaseBranch:            raw.BaseBranch,
		FeatureBranchTemplate: raw.FeatureBranchTemplate,
		Repos:                 make([]Repo, 0, len(raw.Repos)),
	}

	seen := make(map[model.RepoName]bool, len(raw.Repos))
	for _, rawRepo := range raw.Repos {
		repo, err := resolveRepo(name, raw, rawRepo)
		if err != nil {
			return nil, err
		}
		if seen[repo.Name] {
			return nil, model.NewCLIErrorf(model.ExitConfigError,
				"template %q has duplicate repo name %q", name, repo.Name)
		}
		seen[repo.Name] = true
		tmpl.Repos = append(tmpl.Repos, *repo)
	}
	return tmpl, nil
}

func resolveRepo(templateName string, tmpl rawTemplate, raw rawRepo) (*Repo, error) {
	if raw.Path == "" {
		return nil, model.NewCLIErrorf(model.ExitConfigError,
			"template %q has a repo with no path", templateName)
	}
	path, err := model.NewAbsolutePath(raw.Path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("template %q repo path %q", templateName, raw.Path), err)
	}

	// Name derivation happens after expansion so "~/src/foo" and
	// "/home/x/src/foo" derive the same name.
	rawName := raw.Name
	if rawName == "" {
		rawName = filepath.Base(path.String())
	}
	name, err := model.NewRepoName(rawName)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("template %q repo %q", templateName, raw.Path), err)
	}

	repo := &Repo{
		Name:       name,
		Path:       path,
		BaseBranch: raw.BaseBranch,
		Remote:     raw.Remote,
	}
	if repo.BaseBranch == "" {
		repo.BaseBranch = tmpl.BaseBranch
	}
	if repo.Remote == "" {
		repo.Remote = "origin"
	}
	return repo, nil
}

// Template returns the named template, or the default template when name
// is empty.
func (c *Config) Template(name string) (*Template, error) {
	if name == "" {
		name = c.DefaultTemplate
	}
	if name == "" {
		return nil, model.NewCLIErrorf(model.ExitConfigError,
			"no template specified and no defaultTemplate set (available: %s)",
			strings.Join(c.TemplateNames(), ", "))
	}
	tmpl, ok := c.Templates[name]
	if !ok {
		return nil, model.NewCLIErrorf(model.ExitConfigError,
			"template %q not found (available: %s)", name, strings.Join(c.TemplateNames(), ", "))
	}
	return &tmpl, nil
}

// TemplateNames returns the sorted template names.
func (c *Config) TemplateNames() []string {
	names := lo.Keys(c.Templates)
	sort.Strings(names)
	return names
}

// AllWorktreeBases returns the sorted, deduplicated worktree bases across
// all templates.
func (c *Config) AllWorktreeBases() []string {
	bases := lo.Uniq(lo.Map(lo.Values(c.Templates), func(t Template, _ int) string {
		return t.WorktreeBase.String()
	}))
	sort.Strings(bases)
	return bases
}

func templateNames(templates map[string]rawTemplate) []string {
	names := lo.Keys(templates)
	sort.Strings(names)
	return names
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.NewCLIErrorf(model.ExitConfigError,
				"config file not found at %s (run 'git-forest init' to create one)", path)
		}
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to read config from %s", path), err)
	}
	return Parse(data)
}

// LoadDefault loads the config from the default path.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// DefaultPath returns the config file path under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", model.WrapCLIError(model.ExitConfigError, "failed to locate user config directory", err)
	}
	return filepath.Join(dir, "git-forest", ConfigFilename), nil
}

// StateDir returns the directory for mutable state (version-check cache,
// log files): $XDG_STATE_HOME/git-forest, falling back to
// ~/.local/state/git-forest.
func StateDir() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "git-forest"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", model.WrapCLIError(model.ExitConfigError, "failed to locate home directory", err)
	}
	return filepath.Join(home, ".local", "state", "git-forest"), nil
}

// WriteAtomic writes data to path via a temp file and rename, creating
// parent directories as needed.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to create directory %s", dir), err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to create temp config file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return model.WrapCLIError(model.ExitGeneralError, "failed to write temp config file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return model.WrapCLIError(model.ExitGeneralError, "failed to close temp config file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to move config into place at %s", path), err)
	}
	return nil
}

// StarterConfig is the commented config written by `git-forest init`.
const StarterConfig = `{
  // git-forest configuration.
  //
  // Each template names a group of repositories that get a worktree when
  // a forest is created from it.
  "defaultTemplate": "example",
  "templates": {
    "example": {
      // Forests are created as subdirectories of worktreeBase.
      "worktreeBase": "~/worktrees",
      // New branches start from <remote>/<baseBranch>.
      "baseBranch": "main",
      // {name} is replaced with the forest name in feature mode.
      "featureBranchTemplate": "feature/{name}",
      "repos": [
        // name defaults to the last path segment; baseBranch defaults to
        // the template's; remote defaults to "origin".
        { "path": "~/src/example-repo" }
      ]
    }
  },
  "versionCheck": { "enabled": true }
}
`
