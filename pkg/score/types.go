package score

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMissingID indicates a record without the mandatory id field.
// The id is the only required field; everything else may be absent.
var ErrMissingID = errors.New("record missing id")

// RawRepoRecord is one repository's harvested counters and timestamps.
// Every field except ID is optional: nil means "unknown", which is not
// the same as zero. Fields not listed here survive decode/encode in Extra
// so that upstream metadata (paper titles, URLs) reaches the renderer
// untouched.
type RawRepoRecord struct {
	ID            string     `json:"id" yaml:"id"`
	Stars         *int64     `json:"stars,omitempty" yaml:"stars,omitempty"`
	Forks         *int64     `json:"forks,omitempty" yaml:"forks,omitempty"`
	Contributors  *int64     `json:"contributors_count,omitempty" yaml:"contributorsCount,omitempty"`
	Commits       *int64     `json:"commit_count,omitempty" yaml:"commitCount,omitempty"`
	OpenIssues    *int64     `json:"open_issues,omitempty" yaml:"openIssues,omitempty"`
	ClosedIssues  *int64     `json:"closed_issues,omitempty" yaml:"closedIssues,omitempty"`
	OpenPRs       *int64     `json:"open_prs,omitempty" yaml:"openPRs,omitempty"`
	MergedPRs     *int64     `json:"merged_prs,omitempty" yaml:"mergedPRs,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty" yaml:"createdAt,omitempty"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty" yaml:"lastUpdatedAt,omitempty"`

	Extra map[string]json.RawMessage `json:"-" yaml:"-"`

	// lastUpdatedKey is the input key that supplied LastUpdatedAt, so
	// pass-through re-emits the field under its original name.
	lastUpdatedKey string
}

// ScoredRepoRecord is the terminal artifact: the raw record unchanged
// plus the three bounded scores, each in [0, 100].
type ScoredRepoRecord struct {
	RawRepoRecord `yaml:",inline"`

	ContributionScore float64 `json:"contribution_score" yaml:"contributionScore"`
	ActivityScore     float64 `json:"activity_score" yaml:"activityScore"`
	TotalScore        float64 `json:"total_score" yaml:"totalScore"`
}

// knownFields are the keys this package owns; everything else is Extra.
var knownFields = map[string]bool{
	"id":                 true,
	"stars":              true,
	"forks":              true,
	"contributors_count": true,
	"commit_count":       true,
	"open_issues":        true,
	"closed_issues":      true,
	"open_prs":           true,
	"merged_prs":         true,
	"created_at":         true,
	"last_updated_at":    true,
	"last_commit_at":     true,
	"pushed_at":          true,
	"contribution_score": true,
	"activity_score":     true,
	"total_score":        true,
}

func (r *RawRepoRecord) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	if err := unmarshalField(fields, "id", &r.ID); err != nil {
		return err
	}

	for key, dst := range map[string]**int64{
		"stars":              &r.Stars,
		"forks":              &r.Forks,
		"contributors_count": &r.Contributors,
		"commit_count":       &r.Commits,
		"open_issues":        &r.OpenIssues,
		"closed_issues":      &r.ClosedIssues,
		"open_prs":           &r.OpenPRs,
		"merged_prs":         &r.MergedPRs,
	} {
		if err := unmarshalField(fields, key, dst); err != nil {
			return err
		}
	}

	var err error
	if r.CreatedAt, err = unmarshalTime(fields, "created_at"); err != nil {
		return err
	}
	// Fetchers that report commit rather than push recency use the aliases.
	for _, key := range []string{"last_updated_at", "last_commit_at", "pushed_at"} {
		if r.LastUpdatedAt, err = unmarshalTime(fields, key); err != nil {
			return err
		}
		if r.LastUpdatedAt != nil {
			r.lastUpdatedKey = key
			break
		}
	}

	for key, raw := range fields {
		if knownFields[key] {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[key] = raw
	}
	return nil
}

func (r RawRepoRecord) MarshalJSON() ([]byte, error) {
	return marshalRecord(r, nil)
}

func (r ScoredRepoRecord) MarshalJSON() ([]byte, error) {
	return marshalRecord(r.RawRepoRecord, map[string]any{
		"contribution_score": r.ContributionScore,
		"activity_score":     r.ActivityScore,
		"total_score":        r.TotalScore,
	})
}

// marshalRecord rebuilds the field map so Extra keys come out next to the
// typed ones. encoding/json sorts map keys, which keeps output byte-stable.
func marshalRecord(r RawRepoRecord, scores map[string]any) ([]byte, error) {
	fields := make(map[string]any, len(r.Extra)+len(scores)+11)
	fields["id"] = r.ID

	for key, val := range map[string]*int64{
		"stars":              r.Stars,
		"forks":              r.Forks,
		"contributors_count": r.Contributors,
		"commit_count":       r.Commits,
		"open_issues":        r.OpenIssues,
		"closed_issues":      r.ClosedIssues,
		"open_prs":           r.OpenPRs,
		"merged_prs":         r.MergedPRs,
	} {
		if val != nil {
			fields[key] = *val
		}
	}
	if r.CreatedAt != nil {
		fields["created_at"] = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	if r.LastUpdatedAt != nil {
		key := r.lastUpdatedKey
		if key == "" {
			key = "last_updated_at"
		}
		fields[key] = r.LastUpdatedAt.UTC().Format(time.RFC3339)
	}

	for key, raw := range r.Extra {
		fields[key] = raw
	}
	for key, val := range scores {
		fields[key] = val
	}
	return json.Marshal(fields)
}

func unmarshalField[T any](fields map[string]json.RawMessage, key string, dst *T) error {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}

func unmarshalTime(fields map[string]json.RawMessage, key string) (*time.Time, error) {
	var s string
	if err := unmarshalField(fields, key, &s); err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	t, err := parseTime(s)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return &t, nil
}

// parseTime accepts RFC3339 and the zone-less ISO form some fetchers emit,
// treating the latter as UTC.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
}
