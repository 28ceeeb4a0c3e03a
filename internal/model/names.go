package model

import (
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ForestName identifies a forest. Any non-empty string except "." and ".."
// is accepted; slashes are allowed in the name (e.g. "java-84/refactor-auth")
// and are replaced with hyphens in the directory form.
type ForestName string

// NewForestName validates and constructs a ForestName.
func NewForestName(name string) (ForestName, error) {
	if name == "" || name == "." || name == ".." {
		return "", NewCLIErrorf(ExitValidationError,
			"invalid forest name %q\n  hint: provide a descriptive name like \"java-84/refactor-auth\"", name)
	}
	if SanitizeForestName(name) == "" {
		return "", NewCLIErrorf(ExitValidationError,
			"forest name %q sanitizes to empty\n  hint: provide a name with at least one alphanumeric character", name)
	}
	return ForestName(name), nil
}

func (n ForestName) String() string {
	return string(n)
}

// Sanitized returns the filesystem-safe form of the name
// (slashes replaced with hyphens).
func (n ForestName) Sanitized() string {
	return SanitizeForestName(string(n))
}

// UnmarshalYAML validates the name when loading a meta file.
func (n *ForestName) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := NewForestName(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// SanitizeForestName replaces slashes with hyphens so the result is safe
// to use as a single directory name.
func SanitizeForestName(name string) string {
	return strings.ReplaceAll(name, "/", "-")
}

// RepoName identifies a repository within a template or forest.
type RepoName string

// NewRepoName validates and constructs a RepoName.
func NewRepoName(name string) (RepoName, error) {
	if name == "" {
		return "", NewCLIError(ExitValidationError, "repo name must not be empty")
	}
	return RepoName(name), nil
}

func (n RepoName) String() string {
	return string(n)
}

// UnmarshalYAML validates the name when loading a meta file.
func (n *RepoName) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := NewRepoName(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// BranchName is a validated local branch name.
type BranchName string

// NewBranchName validates a branch name. The repo's remote is needed to
// reject remote-prefixed names like "origin/main", which would silently
// resolve to the wrong ref in later git invocations.
func NewBranchName(name, remote string) (BranchName, error) {
	if name == "" {
		return "", NewCLIError(ExitValidationError, "branch name must not be empty")
	}
	if strings.HasPrefix(name, "refs/") {
		return "", NewCLIErrorf(ExitValidationError,
			"branch name %q looks like a ref path\n  hint: pass the branch name without the refs/ prefix", name)
	}
	remotePrefix := remote + "/"
	if strings.HasPrefix(name, remotePrefix) {
		return "", NewCLIErrorf(ExitValidationError,
			"branch name %q looks like a remote ref\n  hint: pass the branch name without the remote prefix: %q",
			name, strings.TrimPrefix(name, remotePrefix))
	}
	return BranchName(name), nil
}

func (n BranchName) String() string {
	return string(n)
}

// ForestDir returns the directory a forest lives in: the worktree base
// joined with the sanitized forest name.
func ForestDir(worktreeBase string, name ForestName) string {
	return filepath.Join(worktreeBase, name.Sanitized())
}
