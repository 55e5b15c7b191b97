package models

import "math"

// RankedFrequency is one row of the frequency ranking
type RankedFrequency struct {
	Number            int
	Count             int64
	RelativeFrequency float64 // count / total records, full precision
}

// FrequencyStatistics is the outcome of the uniformity analysis
type FrequencyStatistics struct {
	Ranked           []RankedFrequency // descending by relative frequency
	TotalRecords     int64
	ExpectedCount    float64 // per number under the uniform null hypothesis
	ChiSquared       float64
	DegreesOfFreedom int
	PValue           float64 // upper-tail probability
}

// RelativeFrequencySum adds up the ranked relative frequencies (≈ DrawSize)
func (s *FrequencyStatistics) RelativeFrequencySum() float64 {
	var sum float64
	for _, r := range s.Ranked {
		sum += r.RelativeFrequency
	}
	return sum
}

// RoundFrequency rounds a relative frequency to 5 decimal digits for display
func RoundFrequency(f float64) float64 {
	return math.Round(f*1e5) / 1e5
}
