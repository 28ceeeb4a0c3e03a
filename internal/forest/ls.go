package forest

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/mmr-tortoise/forest/internal/config"
	"github.com/mmr-tortoise/forest/internal/model"
)

// Summary is one forest as shown by `git-forest ls`.
type Summary struct {
	Name       string         `json:"name"`
	Dir        string         `json:"dir"`
	Mode       string         `json:"mode"`
	CreatedAt  time.Time      `json:"created_at"`
	AgeSeconds int64          `json:"age_seconds"`
	Age        string         `json:"age"`
	RepoCount  int            `json:"repo_count"`
	Branches   map[string]int `json:"branches"`
}

// List collects forests across every worktree base, newest first.
func List(cfg *config.Config) ([]Summary, error) {
	now := time.Now().UTC()
	var summaries []Summary

	for _, base := range cfg.AllWorktreeBases() {
		forests, err := Discover(base)
		if err != nil {
			return nil, err
		}
		for _, f := range forests {
			summaries = append(summaries, summarize(f, now))
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func summarize(f Discovered, now time.Time) Summary {
	age := now.Sub(f.Meta.CreatedAt)
	return Summary{
		Name:       f.Meta.Name.String(),
		Dir:        f.Dir,
		Mode:       f.Meta.Mode.String(),
		CreatedAt:  f.Meta.CreatedAt,
		AgeSeconds: int64(age.Seconds()),
		Age:        FormatAge(age),
		RepoCount:  len(f.Meta.Repos),
		Branches: lo.CountValuesBy(f.Meta.Repos, func(r model.RepoMeta) string {
			return r.Branch
		}),
	}
}

// FormatAge renders a duration as a coarse "N ago" string. Anything under
// a minute still reads "1m ago".
func FormatAge(age time.Duration) string {
	switch {
	case age >= 24*time.Hour:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	case age >= time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		minutes := int(age.Minutes())
		if minutes < 1 {
			minutes = 1
		}
		return fmt.Sprintf("%dm ago", minutes)
	}
}
