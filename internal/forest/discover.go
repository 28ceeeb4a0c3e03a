// Package forest implements the lifecycle of worktree forests: planning
// and creating them from templates, removing them safely, listing them,
// and tearing everything down on reset.
package forest

import (
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/forest/internal/config"
	"github.com/mmr-tortoise/forest/internal/model"
)

// Discovered is a forest found on disk: its directory and parsed meta.
type Discovered struct {
	Dir  string
	Meta *model.ForestMeta
}

// Discover scans the immediate subdirectories of a worktree base for
// forest meta files. Directories without a meta, or with one that does
// not parse, are skipped; discovery is used by listing and reset and
// must not fail on one bad forest.
func Discover(worktreeBase string) ([]Discovered, error) {
	entries, err := os.ReadDir(worktreeBase)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, model.WrapCLIError(model.ExitGeneralError,
			"failed to scan worktree base "+worktreeBase, err)
	}

	var forests []Discovered
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(worktreeBase, entry.Name())
		meta, err := model.ReadMeta(filepath.Join(dir, model.MetaFilename))
		if err != nil {
			continue
		}
		forests = append(forests, Discovered{Dir: dir, Meta: meta})
	}
	return forests, nil
}

// Find looks up a forest by name in one worktree base. A forest matches
// when its meta name equals the requested name, or its directory name
// equals the requested name's sanitized form (the two can diverge when
// the name contains slashes). Returns nil when nothing matches.
func Find(worktreeBase string, name model.ForestName) (*Discovered, error) {
	forests, err := Discover(worktreeBase)
	if err != nil {
		return nil, err
	}
	for i := range forests {
		f := &forests[i]
		if f.Meta.Name == name || filepath.Base(f.Dir) == name.Sanitized() {
			return f, nil
		}
	}
	return nil, nil
}

// DetectCurrent walks up from startDir looking for a forest meta file.
// Returns nil when the walk reaches the filesystem root without finding
// one.
func DetectCurrent(startDir string) (*Discovered, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to resolve "+startDir, err)
	}
	for {
		metaPath := filepath.Join(dir, model.MetaFilename)
		if _, statErr := os.Stat(metaPath); statErr == nil {
			meta, readErr := model.ReadMeta(metaPath)
			if readErr != nil {
				return nil, readErr
			}
			return &Discovered{Dir: dir, Meta: meta}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Resolve finds the forest a command should operate on. An explicit name
// is searched across every worktree base in the config; without a name
// the current directory is walked up instead. Both failure modes carry a
// hint.
func Resolve(cfg *config.Config, name string) (*Discovered, error) {
	if name != "" {
		forestName, err := model.NewForestName(name)
		if err != nil {
			return nil, err
		}
		for _, base := range cfg.AllWorktreeBases() {
			found, err := Find(base, forestName)
			if err != nil {
				return nil, err
			}
			if found != nil {
				return found, nil
			}
		}
		return nil, model.NewCLIErrorf(model.ExitForestNotFound,
			"forest %q not found (run 'git-forest ls' to see existing forests)", name)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}
	found, err := DetectCurrent(cwd)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, model.NewCLIError(model.ExitForestNotFound,
			"not inside a forest; pass a forest name or cd into one (see 'git-forest ls')")
	}
	return found, nil
}
