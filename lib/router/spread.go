package router

import (
	"math"
)

// ----------------------------------------------------------------------------
// Replica spread statistics
// ----------------------------------------------------------------------------

// SpreadStats describes how evenly replica reads were spread over the slots.
type SpreadStats struct {
	Counts       []int   `json:"counts"`
	StdDeviation float64 `json:"std_deviation"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	MinMaxRatio  float64 `json:"min_max_ratio"`
	// Quality is 1 for a perfectly even spread and approaches 0 as slots starve.
	Quality float64 `json:"quality"`
}

// NewSpreadStats computes the spread of per-slot selection counts.
func NewSpreadStats(counts []int) SpreadStats {
	if len(counts) == 0 {
		return SpreadStats{}
	}

	s := SpreadStats{
		Counts: append([]int(nil), counts...),
		Min:    float64(counts[0]),
		Max:    float64(counts[0]),
	}

	var sum float64
	for _, c := range counts {
		v := float64(c)
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(len(counts))

	var sumSquaredDiffs float64
	for _, c := range counts {
		diff := float64(c) - s.Mean
		sumSquaredDiffs += diff * diff
	}
	// population formula
	s.StdDeviation = math.Sqrt(sumSquaredDiffs / float64(len(counts)))

	s.MinMaxRatio = 1.0
	if s.Max > 0 {
		s.MinMaxRatio = s.Min / s.Max
	}

	// coefficient of variation and min/max ratio weigh equally
	var cv float64
	if s.Mean > 0 {
		cv = s.StdDeviation / s.Mean
	}
	s.Quality = (1.0-math.Min(1.0, cv))*0.5 + s.MinMaxRatio*0.5

	return s
}

// MeasureSpread draws samples values and counts the slot SelectReplicaSlot picks for each of n slots.
func MeasureSpread(n, samples int, draw func() int64) SpreadStats {
	if n < 1 {
		return SpreadStats{}
	}
	if draw == nil {
		draw = defaultDraw
	}
	counts := make([]int, n)
	for i := 0; i < samples; i++ {
		counts[SelectReplicaSlot(draw(), n)]++
	}
	return NewSpreadStats(counts)
}
