package score

import (
	"time"

	"github.com/google/go-github/v83/github"
)

// FromGitHubRepo maps a go-github repository (and, when available, its
// contributor stats) to a RawRepoRecord. Fetchers built on the GitHub API
// client can hand their results straight to the engine; fields the API did
// not populate stay absent rather than zero.
func FromGitHubRepo(r *github.Repository, stats []*github.ContributorStats) RawRepoRecord {
	if r == nil {
		return RawRepoRecord{}
	}

	rec := RawRepoRecord{
		ID:         r.GetFullName(),
		Stars:      optCount(r.StargazersCount),
		Forks:      optCount(r.ForksCount),
		OpenIssues: optCount(r.OpenIssuesCount),
		CreatedAt:  optTime(r.CreatedAt),
	}
	if rec.ID == "" {
		rec.ID = r.GetHTMLURL()
	}

	// PushedAt is the closest repository-level proxy for last commit time.
	if t := optTime(r.PushedAt); t != nil {
		rec.LastUpdatedAt = t
	} else {
		rec.LastUpdatedAt = optTime(r.UpdatedAt)
	}

	if len(stats) > 0 {
		contributors := int64(len(stats))
		var commits int64
		for _, cs := range stats {
			commits += int64(cs.GetTotal())
		}
		rec.Contributors = &contributors
		rec.Commits = &commits
	}

	return rec
}

func optCount(v *int) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

func optTime(t *github.Timestamp) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.Time.UTC()
	return &u
}
