// Package version implements the daily update check. The check never
// blocks a lifecycle command: results are cached in the state file, a
// stale cache triggers a detached background refresh, and the user sees
// the notice on their next invocation. Every failure is silent.
package version

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/forest/internal/config"
)

// Current is the running binary's version, overridden at build time via
// -ldflags "-X github.com/mmr-tortoise/forest/internal/version.Current=...".
var Current = "0.0.0-dev"

// StateFilename is the cache file under the state dir.
const StateFilename = "state.yaml"

// BackgroundCheckArg is the hidden argument that turns an invocation into
// a background cache refresh instead of a normal command.
const BackgroundCheckArg = "--internal-version-check"

const (
	checkURL       = "https://forest.dliv.gg/api/latest"
	checkTimeout   = 500 * time.Millisecond
	cacheStaleness = 24 * time.Hour
)

// State is the persisted version-check cache.
type State struct {
	VersionCheck CheckState `yaml:"version_check"`
}

// CheckState records the last fetch and its result.
type CheckState struct {
	LastChecked   time.Time `yaml:"last_checked"`
	LatestVersion string    `yaml:"latest_version"`
}

// StatePath returns the state file path under the state dir.
func StatePath() (string, error) {
	dir, err := config.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, StateFilename), nil
}

// LoadState reads the cache; a missing or unreadable file yields a zero
// state and ok=false.
func LoadState() (State, bool) {
	path, err := StatePath()
	if err != nil {
		return State{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, false
	}
	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, false
	}
	return st, true
}

// SaveState writes the cache, creating the state dir as needed.
func SaveState(st State) error {
	path, err := StatePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Newer reports whether latest is a strictly newer semver than current.
// Unparsable versions compare as not-newer.
func Newer(latest, current string) bool {
	l, c := "v"+latest, "v"+current
	if !semver.IsValid(l) || !semver.IsValid(c) {
		return false
	}
	return semver.Compare(l, c) > 0
}

// Notice returns the update notice to print after a command, and kicks
// off a detached background refresh when the cache is stale. The first
// run writes an empty cache and returns a privacy note instead.
func Notice(logger *zap.Logger, enabled bool) string {
	if !enabled {
		return ""
	}

	st, ok := LoadState()
	if !ok {
		if err := SaveState(State{}); err == nil {
			spawnBackgroundCheck(logger)
		}
		return "git-forest checks for new versions once a day (disable with versionCheck.enabled=false in config)"
	}

	if time.Since(st.VersionCheck.LastChecked) > cacheStaleness {
		spawnBackgroundCheck(logger)
	}

	if Newer(st.VersionCheck.LatestVersion, Current) {
		return fmt.Sprintf("git-forest %s is available (you have %s)", st.VersionCheck.LatestVersion, Current)
	}
	return ""
}

// spawnBackgroundCheck re-invokes the binary with the hidden refresh
// argument and never waits for it.
func spawnBackgroundCheck(logger *zap.Logger) {
	self, err := os.Executable()
	if err != nil {
		return
	}
	cmd := exec.Command(self, BackgroundCheckArg)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		logger.Debug("background version check failed to start", zap.Error(err))
		return
	}
	// Fire and forget; the result lands in the state file for next time.
	_ = cmd.Process.Release()
}

// RunBackgroundCheck is the body of the hidden refresh invocation:
// fetch, cache, exit. All failures are silent.
func RunBackgroundCheck() {
	latest, err := FetchLatest()
	if err != nil {
		return
	}
	_ = SaveState(State{VersionCheck: CheckState{
		LastChecked:   time.Now().UTC(),
		LatestVersion: latest,
	}})
}

type latestResponse struct {
	Latest string `json:"latest"`
}

// FetchLatest queries the release endpoint synchronously.
func FetchLatest() (string, error) {
	client := &http.Client{Timeout: checkTimeout}
	resp, err := client.Get(checkURL + "?v=" + url.QueryEscape(Current))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from version endpoint", resp.StatusCode)
	}
	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Latest, nil
}

// ForceCheck fetches synchronously (for `version --check`), updates the
// cache, and reports whether an update is available.
func ForceCheck() (latest string, newer bool, err error) {
	latest, err = FetchLatest()
	if err != nil {
		return "", false, err
	}
	_ = SaveState(State{VersionCheck: CheckState{
		LastChecked:   time.Now().UTC(),
		LatestVersion: latest,
	}})
	return latest, Newer(latest, Current), nil
}
