package data

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/SureOnThisShiningNight/openrank/pkg/codec"
	"github.com/SureOnThisShiningNight/openrank/pkg/score"
)

const (
	insertRunSQL = `INSERT INTO run (id, scored_at, model_version, lines, records, skipped)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	insertRepoScoreSQL = `INSERT INTO repo_score (run_id, repo_id, stars, forks, contributors, commits,
			open_issues, closed_issues, open_prs, merged_prs, created_at, last_updated_at,
			contribution_score, activity_score, total_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectRunSQL = `SELECT id, scored_at, model_version, lines, records, skipped
		FROM run WHERE id = ?
	`

	selectRunsSQL = `SELECT id, scored_at, model_version, lines, records, skipped
		FROM run ORDER BY scored_at DESC
	`
)

// Run is one persisted scoring invocation. Scores are only comparable
// within a single run; queries never join scores across runs.
type Run struct {
	ID           string    `json:"id" yaml:"id"`
	ScoredAt     time.Time `json:"scored_at" yaml:"scoredAt"`
	ModelVersion string    `json:"model_version" yaml:"modelVersion"`
	Lines        int       `json:"lines" yaml:"lines"`
	Records      int       `json:"records" yaml:"records"`
	Skipped      int       `json:"skipped" yaml:"skipped"`
}

// SaveRun persists a scored batch with its decode summary in one
// transaction.
func SaveRun(db *sql.DB, runID string, scoredAt time.Time, sum *codec.Summary, records []score.ScoredRepoRecord) error {
	if db == nil {
		return errDBNotInitialized
	}
	if runID == "" {
		return fmt.Errorf("runID not specified")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	lines, skipped := 0, 0
	if sum != nil {
		lines = sum.Lines
		skipped = sum.Skipped()
	}

	when := scoredAt.UTC().Format(time.RFC3339)
	if _, err := tx.Exec(insertRunSQL, runID, when, score.ModelVersion, lines, len(records), skipped); err != nil {
		return fmt.Errorf("inserting run %s: %w", runID, err)
	}

	stmt, err := tx.Prepare(insertRepoScoreSQL)
	if err != nil {
		return fmt.Errorf("preparing repo score statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(
			runID,
			rec.ID,
			optInt(rec.Stars),
			optInt(rec.Forks),
			optInt(rec.Contributors),
			optInt(rec.Commits),
			optInt(rec.OpenIssues),
			optInt(rec.ClosedIssues),
			optInt(rec.OpenPRs),
			optInt(rec.MergedPRs),
			optTimestamp(rec.CreatedAt),
			optTimestamp(rec.LastUpdatedAt),
			rec.ContributionScore,
			rec.ActivityScore,
			rec.TotalScore,
		); err != nil {
			return fmt.Errorf("inserting score for %s in run %s: %w", rec.ID, runID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", runID, err)
	}
	return nil
}

// GetRun returns one run's metadata or sql.ErrNoRows.
func GetRun(db *sql.DB, runID string) (*Run, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	return scanRun(db.QueryRow(selectRunSQL, runID))
}

// ListRuns returns all persisted runs, most recent first.
func ListRuns(db *sql.DB) ([]*Run, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectRunsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*Run, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		r    Run
		when string
	)
	if err := row.Scan(&r.ID, &when, &r.ModelVersion, &r.Lines, &r.Records, &r.Skipped); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run row: %w", err)
	}
	t, err := time.Parse(time.RFC3339, when)
	if err != nil {
		return nil, fmt.Errorf("parsing run timestamp %q: %w", when, err)
	}
	r.ScoredAt = t
	return &r, nil
}

func optInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
