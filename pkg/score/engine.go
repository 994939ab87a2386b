package score

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"
)

// ModelVersion is the current scoring model version.
const ModelVersion = "1.0.0"

const (
	// Documented model defaults. Each weight group sums to 1.0.
	defaultContributorsWeight = 0.40
	defaultCommitsWeight      = 0.35
	defaultForksWeight        = 0.25

	defaultRecencyWeight       = 0.40
	defaultIssueVelocityWeight = 0.25
	defaultPRMergeRateWeight   = 0.20
	defaultStarsWeight         = 0.15

	defaultContributionShare = 0.5

	defaultHalfLifeDays = 90.0
	defaultNeutral      = 0.5

	scoreScale     = 100.0
	scorePrecision = 2
	weightEpsilon  = 1e-9
)

// ContributionWeights blend the cumulative-effort signals.
type ContributionWeights struct {
	Contributors float64 `json:"contributors" yaml:"contributors"`
	Commits      float64 `json:"commits" yaml:"commits"`
	Forks        float64 `json:"forks" yaml:"forks"`
}

// ActivityWeights blend the maintenance-freshness signals.
type ActivityWeights struct {
	Recency       float64 `json:"recency" yaml:"recency"`
	IssueVelocity float64 `json:"issue_velocity" yaml:"issueVelocity"`
	PRMergeRate   float64 `json:"pr_merge_rate" yaml:"prMergeRate"`
	Stars         float64 `json:"stars" yaml:"stars"`
}

// Weights is the full model parameterization. ContributionShare is the
// contribution fraction of the total; activity gets the remainder.
type Weights struct {
	Contribution      ContributionWeights `json:"contribution" yaml:"contribution"`
	Activity          ActivityWeights     `json:"activity" yaml:"activity"`
	ContributionShare float64             `json:"contribution_share" yaml:"contributionShare"`
}

// DefaultWeights returns the documented model defaults.
func DefaultWeights() Weights {
	return Weights{
		Contribution: ContributionWeights{
			Contributors: defaultContributorsWeight,
			Commits:      defaultCommitsWeight,
			Forks:        defaultForksWeight,
		},
		Activity: ActivityWeights{
			Recency:       defaultRecencyWeight,
			IssueVelocity: defaultIssueVelocityWeight,
			PRMergeRate:   defaultPRMergeRateWeight,
			Stars:         defaultStarsWeight,
		},
		ContributionShare: defaultContributionShare,
	}
}

// Validate checks that each weight group sums to 1 and the share is a
// valid fraction.
func (w Weights) Validate() error {
	c := w.Contribution.Contributors + w.Contribution.Commits + w.Contribution.Forks
	if math.Abs(c-1) > weightEpsilon {
		return fmt.Errorf("contribution weights sum to %.4f, want 1", c)
	}
	a := w.Activity.Recency + w.Activity.IssueVelocity + w.Activity.PRMergeRate + w.Activity.Stars
	if math.Abs(a-1) > weightEpsilon {
		return fmt.Errorf("activity weights sum to %.4f, want 1", a)
	}
	if w.ContributionShare < 0 || w.ContributionShare > 1 {
		return fmt.Errorf("contribution share %.4f outside [0, 1]", w.ContributionShare)
	}
	return nil
}

// Engine computes bounded, comparable scores for a batch of repositories.
// It holds no state across runs; every run is a pure function of the
// records and the Stats it is given.
type Engine struct {
	weights      Weights
	halfLifeDays float64
	neutral      float64
}

// NewEngine creates an engine. A zero Weights or non-positive half-life
// falls back to the documented defaults.
func NewEngine(w Weights, halfLifeDays float64) (*Engine, error) {
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights: %w", err)
	}
	if halfLifeDays <= 0 {
		halfLifeDays = defaultHalfLifeDays
	}
	return &Engine{weights: w, halfLifeDays: halfLifeDays, neutral: defaultNeutral}, nil
}

// ScoreAll maps each record to its scored form, order-preserving and total:
// no record is dropped for missing optional fields. It fails only when a
// record has no id, which would break the 1:1 input/output mapping.
func (e *Engine) ScoreAll(records []RawRepoRecord, stats Stats) ([]ScoredRepoRecord, error) {
	out := make([]ScoredRepoRecord, len(records))
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrMissingID)
		}
		out[i] = e.scoreOne(r, stats)
	}
	return out, nil
}

// ScoreAllParallel is ScoreAll fanned out over the given number of workers.
// Records are independent once Stats is computed, so the result is
// identical to the serial pass.
func (e *Engine) ScoreAllParallel(ctx context.Context, records []RawRepoRecord, stats Stats, workers int) ([]ScoredRepoRecord, error) {
	if workers <= 1 {
		return e.ScoreAll(records, stats)
	}

	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrMissingID)
		}
	}

	out := make([]ScoredRepoRecord, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = e.scoreOne(records[i], stats)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) scoreOne(r RawRepoRecord, stats Stats) ScoredRepoRecord {
	w := e.weights

	contribution := w.Contribution.Contributors*stats.Contributors.normalize(log1p(counter(r.Contributors)), e.neutral) +
		w.Contribution.Commits*stats.Commits.normalize(log1p(counter(r.Commits)), e.neutral) +
		w.Contribution.Forks*stats.Forks.normalize(log1p(counter(r.Forks)), e.neutral)

	activity := w.Activity.Recency*e.recency(r, stats) +
		w.Activity.IssueVelocity*stats.IssueVelocity.normalize(issueVelocity(r), e.neutral) +
		w.Activity.PRMergeRate*stats.PRMergeRate.normalize(prMergeRate(r), e.neutral) +
		w.Activity.Stars*stats.Stars.normalize(log1p(counter(r.Stars)), e.neutral)

	total := w.ContributionShare*contribution + (1-w.ContributionShare)*activity

	slog.Debug("scored repo",
		"id", r.ID,
		"contribution", contribution,
		"activity", activity)

	return ScoredRepoRecord{
		RawRepoRecord:     r,
		ContributionScore: toFixed(scoreScale*clamp01(contribution), scorePrecision),
		ActivityScore:     toFixed(scoreScale*clamp01(activity), scorePrecision),
		TotalScore:        toFixed(scoreScale*clamp01(total), scorePrecision),
	}
}

// recency decays from 1 at the pinned now toward 0 with the configured
// half-life. No timestamp means no evidence of activity.
func (e *Engine) recency(r RawRepoRecord, stats Stats) float64 {
	if r.LastUpdatedAt == nil {
		return 0
	}
	days := stats.Now.Sub(r.LastUpdatedAt.UTC()).Hours() / 24
	return expDecay(days, e.halfLifeDays)
}
