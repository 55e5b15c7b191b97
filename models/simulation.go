package models

import "sort"

// SimulationResult holds the accumulated prize per pick count
type SimulationResult struct {
	TrialsPerPick int64
	Totals        map[int]int64 // picks -> total prize over all trials
}

// NewSimulationResult creates an empty result for the given trial count
func NewSimulationResult(trials int64) *SimulationResult {
	return &SimulationResult{
		TrialsPerPick: trials,
		Totals:        make(map[int]int64),
	}
}

// PickCounts returns the simulated pick counts in ascending order
func (r *SimulationResult) PickCounts() []int {
	picks := make([]int, 0, len(r.Totals))
	for p := range r.Totals {
		picks = append(picks, p)
	}
	sort.Ints(picks)
	return picks
}

// MeanPrize returns the average prize per trial for a pick count
func (r *SimulationResult) MeanPrize(picks int) float64 {
	if r.TrialsPerPick == 0 {
		return 0
	}
	return float64(r.Totals[picks]) / float64(r.TrialsPerPick)
}
