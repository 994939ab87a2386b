package score

import "math"

// Range is an observed or externally supplied normalization reference
// for one metric.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// observe widens the range to include v.
func (r Range) observe(v float64) Range {
	if v < r.Min {
		r.Min = v
	}
	if v > r.Max {
		r.Max = v
	}
	return r
}

// normalize maps v into [0, 1] against the range. A degenerate range
// (min == max) cannot discriminate: if the batch holds no evidence at all
// (everything at the floor) the result is the floor, otherwise every record
// is tied and gets the neutral midpoint.
func (r Range) normalize(v, neutral float64) float64 {
	if r.Max <= r.Min {
		if r.Max <= 0 {
			return 0
		}
		return neutral
	}
	return clamp01((v - r.Min) / (r.Max - r.Min))
}

// log1p compresses order-of-magnitude metrics (stars, forks, commits)
// before min-max scaling.
func log1p(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Log1p(v)
}

// expDecay models freshness with a half-life in days.
func expDecay(days, halfLifeDays float64) float64 {
	if halfLifeDays <= 0 {
		return 0
	}
	if days <= 0 {
		return 1
	}
	return math.Exp(-days * math.Ln2 / halfLifeDays)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// toFixed rounds to the given number of decimals. Scores are emitted at
// two decimals so repeated runs stay byte-identical.
func toFixed(num float64, precision int) float64 {
	output := math.Pow(10, float64(precision))
	return math.Round(num*output) / output
}
