package forest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/forest/internal/config"
	"github.com/mmr-tortoise/forest/internal/model"
)

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "3d ago", FormatAge(3*24*time.Hour+5*time.Hour))
	assert.Equal(t, "5h ago", FormatAge(5*time.Hour+30*time.Minute))
	assert.Equal(t, "15m ago", FormatAge(15*time.Minute))
	assert.Equal(t, "1m ago", FormatAge(20*time.Second), "sub-minute still reads 1m")
}

func TestListNewestFirstWithBranchCounts(t *testing.T) {
	base := t.TempDir()
	now := time.Now().UTC()
	writeFakeForest(t, base, "old", now.Add(-48*time.Hour), []model.RepoMeta{
		{Name: "api", Source: "/srv/api", Branch: "feat/old", BaseBranch: "main", Remote: "origin"},
	})
	writeFakeForest(t, base, "fresh", now.Add(-10*time.Minute), []model.RepoMeta{
		{Name: "api", Source: "/srv/api", Branch: "feat/fresh", BaseBranch: "main", Remote: "origin"},
		{Name: "web", Source: "/srv/web", Branch: "feat/fresh", BaseBranch: "main", Remote: "origin"},
		{Name: "docs", Source: "/srv/docs", Branch: "main", BaseBranch: "main", Remote: "origin"},
	})

	cfg := &config.Config{Templates: map[string]config.Template{
		"t": {Name: "t", WorktreeBase: model.AbsolutePath(base), BaseBranch: "main", FeatureBranchTemplate: "f/{name}"},
	}}

	summaries, err := List(cfg)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "fresh", summaries[0].Name)
	assert.Equal(t, "old", summaries[1].Name)
	assert.Equal(t, 3, summaries[0].RepoCount)
	assert.Equal(t, map[string]int{"feat/fresh": 2, "main": 1}, summaries[0].Branches)
	assert.Equal(t, "10m ago", summaries[0].Age)
	assert.Equal(t, "2d ago", summaries[1].Age)
}
