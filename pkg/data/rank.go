package data

import (
	"database/sql"
	"fmt"
)

const (
	selectTopReposSQL = `SELECT repo_id, stars, forks, contributors, commits,
			contribution_score, activity_score, total_score
		FROM repo_score
		WHERE run_id = ?
		ORDER BY total_score DESC, repo_id ASC
		LIMIT ?
	`
)

// RepoRank is one ranked repository within a run.
type RepoRank struct {
	RepoID            string  `json:"repo_id" yaml:"repoID"`
	Stars             *int64  `json:"stars,omitempty" yaml:"stars,omitempty"`
	Forks             *int64  `json:"forks,omitempty" yaml:"forks,omitempty"`
	Contributors      *int64  `json:"contributors,omitempty" yaml:"contributors,omitempty"`
	Commits           *int64  `json:"commits,omitempty" yaml:"commits,omitempty"`
	ContributionScore float64 `json:"contribution_score" yaml:"contributionScore"`
	ActivityScore     float64 `json:"activity_score" yaml:"activityScore"`
	TotalScore        float64 `json:"total_score" yaml:"totalScore"`
}

// GetTopRepos returns a run's repositories ranked by total score.
// Ties break on repo id so the ordering is stable.
func GetTopRepos(db *sql.DB, runID string, limit int) ([]*RepoRank, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if runID == "" {
		return nil, fmt.Errorf("runID not specified")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.Query(selectTopReposSQL, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top repos for run %s: %w", runID, err)
	}
	defer rows.Close()

	ranks := make([]*RepoRank, 0, limit)
	for rows.Next() {
		var r RepoRank
		var stars, forks, contributors, commits sql.NullInt64
		if err := rows.Scan(&r.RepoID, &stars, &forks, &contributors, &commits,
			&r.ContributionScore, &r.ActivityScore, &r.TotalScore); err != nil {
			return nil, fmt.Errorf("scanning rank row: %w", err)
		}
		r.Stars = nullableInt(stars)
		r.Forks = nullableInt(forks)
		r.Contributors = nullableInt(contributors)
		r.Commits = nullableInt(commits)
		ranks = append(ranks, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rank rows: %w", err)
	}
	return ranks, nil
}

func nullableInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
