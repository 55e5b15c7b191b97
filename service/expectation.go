package service

import (
	"math"

	"kenoanalyzer/models"

	"gonum.org/v1/gonum/stat/combin"
)

// PayoutExpectation is the exact prize distribution summary for one pick count
type PayoutExpectation struct {
	Picks    int
	Mean     float64 // expected prize per trial
	Variance float64
}

// MatchProbability returns the hypergeometric probability that picks numbers
// chosen from 1..80 share exactly matches numbers with a 20-number draw.
func MatchProbability(picks, matches int) float64 {
	if picks < 0 || picks > models.MaxNumber || matches < 0 || matches > picks || matches > models.DrawSize {
		return 0
	}
	if models.DrawSize-matches > models.MaxNumber-picks {
		return 0
	}

	logP := combin.LogGeneralizedBinomial(float64(picks), float64(matches)) +
		combin.LogGeneralizedBinomial(float64(models.MaxNumber-picks), float64(models.DrawSize-matches)) -
		combin.LogGeneralizedBinomial(models.MaxNumber, models.DrawSize)
	return math.Exp(logP)
}

// ExpectedPayout computes the exact mean and variance of the prize for a pick count
func ExpectedPayout(table *PayoutTable, picks int) (PayoutExpectation, error) {
	if picks < MinPicks || picks > MaxPicks {
		return PayoutExpectation{}, &InvalidPickCountError{Picks: picks}
	}

	var mean, second float64
	for m := 0; m <= picks; m++ {
		p := MatchProbability(picks, m)
		prize := float64(table.Lookup(picks, m))
		mean += p * prize
		second += p * prize * prize
	}

	return PayoutExpectation{
		Picks:    picks,
		Mean:     mean,
		Variance: second - mean*mean,
	}, nil
}
