package score

import (
	"testing"
	"time"

	"github.com/google/go-github/v83/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromGitHubRepo(t *testing.T) {
	created := github.Timestamp{Time: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)}
	pushed := github.Timestamp{Time: time.Date(2025, 12, 24, 8, 0, 0, 0, time.UTC)}

	repo := &github.Repository{
		FullName:        github.Ptr("octo/spoon"),
		StargazersCount: github.Ptr(1200),
		ForksCount:      github.Ptr(88),
		OpenIssuesCount: github.Ptr(14),
		CreatedAt:       &created,
		PushedAt:        &pushed,
	}
	stats := []*github.ContributorStats{
		{Total: github.Ptr(300)},
		{Total: github.Ptr(120)},
		{Total: github.Ptr(5)},
	}

	rec := FromGitHubRepo(repo, stats)

	assert.Equal(t, "octo/spoon", rec.ID)
	require.NotNil(t, rec.Stars)
	assert.Equal(t, int64(1200), *rec.Stars)
	require.NotNil(t, rec.Forks)
	assert.Equal(t, int64(88), *rec.Forks)
	require.NotNil(t, rec.OpenIssues)
	assert.Equal(t, int64(14), *rec.OpenIssues)
	require.NotNil(t, rec.Contributors)
	assert.Equal(t, int64(3), *rec.Contributors)
	require.NotNil(t, rec.Commits)
	assert.Equal(t, int64(425), *rec.Commits)
	require.NotNil(t, rec.CreatedAt)
	assert.Equal(t, created.Time, *rec.CreatedAt)
	require.NotNil(t, rec.LastUpdatedAt)
	assert.Equal(t, pushed.Time, *rec.LastUpdatedAt)
}

func TestFromGitHubRepo_SparseRepo(t *testing.T) {
	rec := FromGitHubRepo(&github.Repository{FullName: github.Ptr("octo/empty")}, nil)

	assert.Equal(t, "octo/empty", rec.ID)
	assert.Nil(t, rec.Stars)
	assert.Nil(t, rec.Contributors)
	assert.Nil(t, rec.Commits)
	assert.Nil(t, rec.LastUpdatedAt)
}

func TestFromGitHubRepo_FallsBackToUpdatedAt(t *testing.T) {
	updated := github.Timestamp{Time: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	rec := FromGitHubRepo(&github.Repository{
		FullName:  github.Ptr("octo/quiet"),
		UpdatedAt: &updated,
	}, nil)

	require.NotNil(t, rec.LastUpdatedAt)
	assert.Equal(t, updated.Time, *rec.LastUpdatedAt)
}

func TestFromGitHubRepo_Nil(t *testing.T) {
	rec := FromGitHubRepo(nil, nil)
	assert.Empty(t, rec.ID)
}
