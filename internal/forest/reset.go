package forest

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mmr-tortoise/forest/internal/config"
	"github.com/mmr-tortoise/forest/internal/git"
	"github.com/mmr-tortoise/forest/internal/model"
	"github.com/mmr-tortoise/forest/internal/version"
)

// FileResetEntry reports what happened to one file during reset.
type FileResetEntry struct {
	Path    string `json:"path"`
	Existed bool   `json:"existed"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

// ForestResetEntry reports what happened to one forest during reset.
type ForestResetEntry struct {
	Name    string `json:"name"`
	Dir     string `json:"dir"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

// ResetResult is the outcome of `git-forest reset`.
type ResetResult struct {
	DryRun          bool               `json:"dry_run"`
	ConfirmRequired bool               `json:"confirm_required"`
	ConfigOnly      bool               `json:"config_only"`
	Warnings        []string           `json:"warnings,omitempty"`
	Forests         []ForestResetEntry `json:"forests"`
	ConfigFile      FileResetEntry     `json:"config_file"`
	StateFile       FileResetEntry     `json:"state_file"`
	Errors          []string           `json:"errors,omitempty"`
}

// Failed reports whether the reset should exit nonzero.
func (r *ResetResult) Failed() bool {
	return r.ConfirmRequired || len(r.Errors) > 0
}

// Reset tears down every forest plus the config and state files. The gate
// has three modes: dry-run previews; without --confirm the preview is
// returned flagged confirm_required; with --confirm it executes. Forests
// are destroyed first, while the config describing their source repos
// still exists, then the config file, then the state file.
func Reset(logger *zap.Logger, confirm, configOnly, dryRun bool) (*ResetResult, error) {
	configPath, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	statePath, err := version.StatePath()
	if err != nil {
		return nil, err
	}

	result := &ResetResult{
		DryRun:     dryRun,
		ConfigOnly: configOnly,
		ConfigFile: FileResetEntry{Path: configPath, Existed: fileExists(configPath)},
		StateFile:  FileResetEntry{Path: statePath, Existed: fileExists(statePath)},
	}

	var forests []Discovered
	if !configOnly && result.ConfigFile.Existed {
		cfg, cfgErr := config.Load(configPath)
		if cfgErr != nil {
			// Reset must recover from a corrupted config: the files still
			// get deleted, but forests cannot be located.
			result.Warnings = append(result.Warnings,
				"config could not be parsed; worktree directories may need manual cleanup: "+cfgErr.Error())
		} else {
			for _, base := range cfg.AllWorktreeBases() {
				found, derr := Discover(base)
				if derr != nil {
					result.Warnings = append(result.Warnings, derr.Error())
					continue
				}
				forests = append(forests, found...)
			}
		}
	}
	for _, f := range forests {
		result.Forests = append(result.Forests, ForestResetEntry{
			Name: f.Meta.Name.String(),
			Dir:  f.Dir,
		})
	}

	if !result.ConfigFile.Existed && !result.StateFile.Existed && len(forests) == 0 {
		return nil, model.NewCLIError(model.ExitValidationError, "nothing to reset")
	}

	if dryRun {
		return result, nil
	}
	if !confirm {
		result.ConfirmRequired = true
		return result, nil
	}

	for i, f := range forests {
		if err := destroyForest(logger, f); err != nil {
			result.Forests[i].Error = err.Error()
			result.Errors = append(result.Errors, f.Meta.Name.String()+": "+err.Error())
			continue
		}
		result.Forests[i].Deleted = true
	}

	deleteFile(&result.ConfigFile)
	deleteFile(&result.StateFile)
	for _, entry := range []FileResetEntry{result.ConfigFile, result.StateFile} {
		if entry.Error != "" {
			result.Errors = append(result.Errors, entry.Path+": "+entry.Error)
		}
	}
	return result, nil
}

// destroyForest unregisters each worktree best-effort, then recursively
// deletes the forest directory.
func destroyForest(logger *zap.Logger, f Discovered) error {
	logger.Info("reset: destroying forest",
		zap.String("forest", f.Meta.Name.String()),
		zap.String("dir", f.Dir))

	for _, repo := range f.Meta.Repos {
		worktree := filepath.Join(f.Dir, repo.Name.String())
		assertInsideForest(f.Dir, worktree)
		if _, err := os.Stat(repo.Source.String()); err != nil {
			continue
		}
		if _, err := git.Run(repo.Source.String(), "worktree", "remove", "--force", worktree); err != nil {
			logger.Warn("reset: worktree remove failed",
				zap.String("repo", repo.Name.String()),
				zap.Error(err))
		}
	}
	return os.RemoveAll(f.Dir)
}

func deleteFile(entry *FileResetEntry) {
	if !entry.Existed {
		return
	}
	if err := os.Remove(entry.Path); err != nil && !os.IsNotExist(err) {
		entry.Error = err.Error()
		return
	}
	entry.Deleted = true
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
