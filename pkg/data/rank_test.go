package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SureOnThisShiningNight/openrank/pkg/score"
)

func TestGetTopRepos_RanksByTotalScore(t *testing.T) {
	db := setupTestDB(t)
	records := []score.ScoredRepoRecord{
		{RawRepoRecord: score.RawRepoRecord{ID: "low"}, TotalScore: 10},
		{RawRepoRecord: score.RawRepoRecord{ID: "high", Stars: i64(900)}, TotalScore: 88.5},
		{RawRepoRecord: score.RawRepoRecord{ID: "mid"}, TotalScore: 40},
	}
	require.NoError(t, SaveRun(db, "run-1", testScoredAt, nil, records))

	ranks, err := GetTopRepos(db, "run-1", 10)
	require.NoError(t, err)
	require.Len(t, ranks, 3)
	assert.Equal(t, "high", ranks[0].RepoID)
	assert.Equal(t, "mid", ranks[1].RepoID)
	assert.Equal(t, "low", ranks[2].RepoID)

	require.NotNil(t, ranks[0].Stars)
	assert.Equal(t, int64(900), *ranks[0].Stars)
	assert.Nil(t, ranks[1].Stars)
}

func TestGetTopRepos_TieBreaksOnRepoID(t *testing.T) {
	db := setupTestDB(t)
	records := []score.ScoredRepoRecord{
		{RawRepoRecord: score.RawRepoRecord{ID: "zeta"}, TotalScore: 50},
		{RawRepoRecord: score.RawRepoRecord{ID: "alpha"}, TotalScore: 50},
	}
	require.NoError(t, SaveRun(db, "run-1", testScoredAt, nil, records))

	ranks, err := GetTopRepos(db, "run-1", 10)
	require.NoError(t, err)
	require.Len(t, ranks, 2)
	assert.Equal(t, "alpha", ranks[0].RepoID)
	assert.Equal(t, "zeta", ranks[1].RepoID)
}

func TestGetTopRepos_HonorsLimit(t *testing.T) {
	db := setupTestDB(t)
	records := []score.ScoredRepoRecord{
		{RawRepoRecord: score.RawRepoRecord{ID: "a"}, TotalScore: 1},
		{RawRepoRecord: score.RawRepoRecord{ID: "b"}, TotalScore: 2},
		{RawRepoRecord: score.RawRepoRecord{ID: "c"}, TotalScore: 3},
	}
	require.NoError(t, SaveRun(db, "run-1", testScoredAt, nil, records))

	ranks, err := GetTopRepos(db, "run-1", 2)
	require.NoError(t, err)
	assert.Len(t, ranks, 2)
}

func TestGetTopRepos_RunsAreIsolated(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, SaveRun(db, "run-1", testScoredAt, nil, []score.ScoredRepoRecord{
		{RawRepoRecord: score.RawRepoRecord{ID: "a"}, TotalScore: 99},
	}))
	require.NoError(t, SaveRun(db, "run-2", testScoredAt, nil, []score.ScoredRepoRecord{
		{RawRepoRecord: score.RawRepoRecord{ID: "b"}, TotalScore: 1},
	}))

	ranks, err := GetTopRepos(db, "run-2", 10)
	require.NoError(t, err)
	require.Len(t, ranks, 1)
	assert.Equal(t, "b", ranks[0].RepoID)
}

func TestGetTopRepos_NilDB(t *testing.T) {
	_, err := GetTopRepos(nil, "run-1", 10)
	assert.Error(t, err)
}

func TestGetTopRepos_EmptyRunID(t *testing.T) {
	db := setupTestDB(t)
	_, err := GetTopRepos(db, "", 10)
	assert.Error(t, err)
}
