package score

import "time"

// Stats holds the per-metric normalization references and the pinned clock
// for one scoring run. Ranges for magnitude metrics (contributors, commits,
// forks, stars) are over log1p-transformed values; the two ratio metrics are
// linear.
//
// Stats computed by ComputeStats are batch-relative: scores from two runs
// with different inputs are not comparable. Supplying a fixed Stats (for
// example from the config reference block) trades that for cross-run
// comparability.
type Stats struct {
	Now time.Time `json:"now" yaml:"now"`

	Contributors  Range `json:"contributors" yaml:"contributors"`
	Commits       Range `json:"commits" yaml:"commits"`
	Forks         Range `json:"forks" yaml:"forks"`
	Stars         Range `json:"stars" yaml:"stars"`
	IssueVelocity Range `json:"issue_velocity" yaml:"issueVelocity"`
	PRMergeRate   Range `json:"pr_merge_rate" yaml:"prMergeRate"`
}

// ComputeStats is pass one: a full scan of the batch to observe each
// metric's min and max. Absent fields count as the metric floor (zero),
// per the missing-data policy, so a batch where a metric is entirely
// absent yields a 0..0 range and the metric scores the floor everywhere.
func ComputeStats(records []RawRepoRecord, now time.Time) Stats {
	s := Stats{Now: now.UTC()}
	if len(records) == 0 {
		return s
	}

	// Seed each range from the first record so a single-record batch is a
	// degenerate range at its own value, not one stretched down to zero.
	first := records[0]
	s.Contributors = seed(log1p(counter(first.Contributors)))
	s.Commits = seed(log1p(counter(first.Commits)))
	s.Forks = seed(log1p(counter(first.Forks)))
	s.Stars = seed(log1p(counter(first.Stars)))
	s.IssueVelocity = seed(issueVelocity(first))
	s.PRMergeRate = seed(prMergeRate(first))

	for _, r := range records[1:] {
		s.Contributors = s.Contributors.observe(log1p(counter(r.Contributors)))
		s.Commits = s.Commits.observe(log1p(counter(r.Commits)))
		s.Forks = s.Forks.observe(log1p(counter(r.Forks)))
		s.Stars = s.Stars.observe(log1p(counter(r.Stars)))
		s.IssueVelocity = s.IssueVelocity.observe(issueVelocity(r))
		s.PRMergeRate = s.PRMergeRate.observe(prMergeRate(r))
	}
	return s
}

func seed(v float64) Range {
	return Range{Min: v, Max: v}
}

// counter reads an optional counter, degrading absence to the floor and
// clamping invalid negatives.
func counter(v *int64) float64 {
	if v == nil || *v < 0 {
		return 0
	}
	return float64(*v)
}

// issueVelocity is the closed fraction of all observed issues. No observed
// issues means no evidence, which scores the floor.
func issueVelocity(r RawRepoRecord) float64 {
	closed := counter(r.ClosedIssues)
	total := counter(r.OpenIssues) + closed
	if total == 0 {
		return 0
	}
	return closed / total
}

// prMergeRate is the merged fraction of all observed pull requests.
func prMergeRate(r RawRepoRecord) float64 {
	merged := counter(r.MergedPRs)
	total := counter(r.OpenPRs) + merged
	if total == 0 {
		return 0
	}
	return merged / total
}
