package model

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AbsolutePath is a validated absolute filesystem path. A value of this
// type is always absolute; relative paths are rejected at construction
// and when loading persisted files.
type AbsolutePath string

// NewAbsolutePath expands a leading tilde and validates the result.
func NewAbsolutePath(path string) (AbsolutePath, error) {
	expanded, err := ExpandTilde(path)
	if err != nil {
		return "", err
	}
	return AbsolutePath(expanded), nil
}

func (p AbsolutePath) String() string {
	return string(p)
}

// UnmarshalYAML validates absoluteness when loading a meta file.
func (p *AbsolutePath) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if !filepath.IsAbs(s) {
		return NewCLIErrorf(ExitGeneralError, "path must be absolute: %q", s)
	}
	*p = AbsolutePath(s)
	return nil
}

// ExpandTilde expands a leading "~" or "~/" against $HOME and requires the
// result to be absolute. Relative paths are rejected rather than resolved
// against the current directory, because config-declared paths must mean
// the same thing from any working directory.
func ExpandTilde(path string) (string, error) {
	var expanded string
	switch {
	case path == "~":
		home := os.Getenv("HOME")
		if home == "" {
			return "", NewCLIError(ExitConfigError, "cannot expand ~: HOME environment variable is not set")
		}
		expanded = home
	case strings.HasPrefix(path, "~/"):
		home := os.Getenv("HOME")
		if home == "" {
			return "", NewCLIError(ExitConfigError, "cannot expand ~/: HOME environment variable is not set")
		}
		expanded = filepath.Join(home, strings.TrimPrefix(path, "~/"))
	default:
		expanded = path
	}

	if !filepath.IsAbs(expanded) {
		return "", NewCLIErrorf(ExitValidationError, "path is not absolute: %s", path)
	}
	return expanded, nil
}
