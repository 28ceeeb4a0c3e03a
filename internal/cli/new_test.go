package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/forest/internal/forest"
)

func TestParseRepoBranches(t *testing.T) {
	out, err := parseRepoBranches([]string{"api=hotfix/cors", "web=main"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"api": "hotfix/cors", "web": "main"}, out)
}

func TestParseRepoBranchesEmpty(t *testing.T) {
	out, err := parseRepoBranches(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestParseRepoBranchesMalformed(t *testing.T) {
	for _, pair := range []string{"api", "=branch", "api=", "="} {
		_, err := parseRepoBranches([]string{pair})
		assert.Error(t, err, "expected error for %q", pair)
	}
}

func TestParseRepoBranchesDuplicateRepo(t *testing.T) {
	_, err := parseRepoBranches([]string{"api=a", "api=b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twice")
}

func TestFormatBranchesSortedStable(t *testing.T) {
	got := formatBranches(map[string]int{"main": 1, "feat/x": 2})
	assert.Equal(t, "feat/x x2, main x1", got)
}

func TestFormatOutcome(t *testing.T) {
	assert.Equal(t, "success", formatOutcome(forest.Outcome{Status: forest.OutcomeSuccess}))
	assert.Equal(t, "skipped (branch not created by forest)",
		formatOutcome(forest.Outcome{Status: forest.OutcomeSkipped, Detail: "branch not created by forest"}))
}
