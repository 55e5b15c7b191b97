package service

import (
	"context"
	"fmt"

	"kenoanalyzer/models"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"
)

// DegreesOfFreedom for the goodness-of-fit test over the 80-number pool
const DegreesOfFreedom = models.MaxNumber - 1

type frequencyService struct {
	aggregator *Aggregator
}

// NewFrequencyService creates a frequency service backed by the given aggregator
func NewFrequencyService(aggregator *Aggregator) FrequencyService {
	return &frequencyService{
		aggregator: aggregator,
	}
}

func (s *frequencyService) Analyze(ctx context.Context, sources []RecordSource) (*models.FrequencyTable, *models.FrequencyStatistics, error) {
	table, err := s.aggregator.Aggregate(ctx, sources)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to aggregate draw records: %w", err)
	}

	stats, err := ComputeFrequencyStatistics(table)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute frequency statistics: %w", err)
	}

	log.WithFields(log.Fields{
		"records":    stats.TotalRecords,
		"chiSquared": stats.ChiSquared,
		"pValue":     stats.PValue,
	}).Info("Frequency analysis completed")

	return table, stats, nil
}

// ComputeFrequencyStatistics ranks numbers by relative frequency and runs a
// chi-squared goodness-of-fit test against a uniform draw.
//
// Under the null hypothesis each record draws DrawSize of MaxNumber numbers
// uniformly, so every number is expected TotalRecords*20/80 times. The p-value
// is the upper tail 1 - CDF(chi2; 79).
func ComputeFrequencyStatistics(table *models.FrequencyTable) (*models.FrequencyStatistics, error) {
	if table == nil || table.TotalRecords == 0 {
		return nil, ErrEmptyDataset
	}

	expected := float64(table.TotalRecords) * models.DrawSize / models.MaxNumber
	var chiSquared float64
	for n := models.MinNumber; n <= models.MaxNumber; n++ {
		diff := float64(table.Counts[n]) - expected
		chiSquared += diff * diff / expected
	}

	dist := distuv.ChiSquared{K: DegreesOfFreedom}

	return &models.FrequencyStatistics{
		Ranked:           table.Ranked(),
		TotalRecords:     table.TotalRecords,
		ExpectedCount:    expected,
		ChiSquared:       chiSquared,
		DegreesOfFreedom: DegreesOfFreedom,
		PValue:           dist.Survival(chiSquared),
	}, nil
}
