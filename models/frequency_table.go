package models

import "sort"

// FrequencyTable counts how often each number 1..80 was drawn across TotalRecords records.
// Index 0 of Counts is never used.
type FrequencyTable struct {
	Counts       [MaxNumber + 1]int64
	TotalRecords int64
}

// NewFrequencyTable returns an empty table
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{}
}

// Add tallies one record. The record must already be validated.
func (t *FrequencyTable) Add(record DrawRecord) {
	for _, n := range record {
		t.Counts[n]++
	}
	t.TotalRecords++
}

// Merge folds another table into this one
func (t *FrequencyTable) Merge(other *FrequencyTable) {
	for n := MinNumber; n <= MaxNumber; n++ {
		t.Counts[n] += other.Counts[n]
	}
	t.TotalRecords += other.TotalRecords
}

// Count returns the occurrences of n, or 0 when n is outside the pool
func (t *FrequencyTable) Count(n int) int64 {
	if n < MinNumber || n > MaxNumber {
		return 0
	}
	return t.Counts[n]
}

// Sum returns the total number of drawn values tallied
func (t *FrequencyTable) Sum() int64 {
	var sum int64
	for n := MinNumber; n <= MaxNumber; n++ {
		sum += t.Counts[n]
	}
	return sum
}

// RelativeFrequency returns count/TotalRecords for n at full precision.
// Unseen numbers and an empty table both yield 0.
func (t *FrequencyTable) RelativeFrequency(n int) float64 {
	if t.TotalRecords == 0 {
		return 0
	}
	return float64(t.Count(n)) / float64(t.TotalRecords)
}

// Ranked lists the numbers that were drawn at least once, most frequent first.
// Ties keep ascending number order.
func (t *FrequencyTable) Ranked() []RankedFrequency {
	ranked := make([]RankedFrequency, 0, MaxNumber)
	for n := MinNumber; n <= MaxNumber; n++ {
		count := t.Counts[n]
		if count == 0 {
			continue
		}
		ranked = append(ranked, RankedFrequency{
			Number:            n,
			Count:             count,
			RelativeFrequency: t.RelativeFrequency(n),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelativeFrequency > ranked[j].RelativeFrequency
	})
	return ranked
}
