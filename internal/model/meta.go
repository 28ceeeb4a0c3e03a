package model

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MetaFilename is the marker file written at the root of every forest
// directory. Its presence is what makes a directory a forest.
const MetaFilename = ".forest-meta.yaml"

// ForestMode determines how member branches are named by default.
type ForestMode string

const (
	// ModeFeature names branches from the template's featureBranchTemplate
	// with {name} substituted.
	ModeFeature ForestMode = "feature"

	// ModeReview names branches "forest/<name>" so review checkouts are
	// clearly disposable.
	ModeReview ForestMode = "review"
)

// String returns the string representation of ForestMode.
func (m ForestMode) String() string {
	return string(m)
}

// IsValid checks whether the ForestMode is one of the defined modes.
func (m ForestMode) IsValid() bool {
	switch m {
	case ModeFeature, ModeReview:
		return true
	default:
		return false
	}
}

// ParseForestMode converts a string to a ForestMode.
func ParseForestMode(s string) (ForestMode, error) {
	mode := ForestMode(strings.ToLower(s))
	if !mode.IsValid() {
		return "", NewCLIErrorf(ExitValidationError, "invalid mode %q (valid: feature, review)", s)
	}
	return mode, nil
}

// ForestMeta is the persisted record of a forest: what it is called, when
// it was created, and which worktrees belong to it. It is the source of
// truth for removal: repos are removed based on what the meta says was
// created, not on what the directory happens to contain.
type ForestMeta struct {
	Name      ForestName `yaml:"name" json:"name"`
	CreatedAt time.Time  `yaml:"created_at" json:"created_at"`
	Mode      ForestMode `yaml:"mode" json:"mode"`
	Repos     []RepoMeta `yaml:"repos" json:"repos"`
}

// RepoMeta records one member worktree. BranchCreated distinguishes
// branches the forest created (safe to delete on removal) from
// pre-existing branches it merely attached to. Remote is recorded so
// removal-time safety checks can name <remote>/<base_branch> exactly as
// it was resolved at creation time.
type RepoMeta struct {
	Name          RepoName     `yaml:"name" json:"name"`
	Source        AbsolutePath `yaml:"source" json:"source"`
	Branch        string       `yaml:"branch" json:"branch"`
	BaseBranch    string       `yaml:"base_branch" json:"base_branch"`
	Remote        string       `yaml:"remote" json:"remote"`
	BranchCreated bool         `yaml:"branch_created" json:"branch_created"`
}

// Write serializes the meta to YAML at the given path.
func (m *ForestMeta) Write(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return WrapCLIError(ExitGeneralError, "failed to serialize forest meta", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return WrapCLIError(ExitGeneralError, fmt.Sprintf("failed to write forest meta to %s", path), err)
	}
	return nil
}

// ReadMeta loads and validates a forest meta file.
func ReadMeta(path string) (*ForestMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapCLIError(ExitGeneralError, fmt.Sprintf("failed to read forest meta from %s", path), err)
	}
	var meta ForestMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		// Name and source validation happens inside the UnmarshalYAML
		// hooks, so a malformed meta surfaces here.
		return nil, WrapCLIError(ExitGeneralError, "failed to parse forest meta YAML", err)
	}
	return &meta, nil
}
