package testutil

import (
	"time"

	"kenoanalyzer/models"

	"github.com/google/uuid"
)

// CreateTestFrequencyTable builds a table from n records whose numbers cycle
// through the pool, so every number is seen n/4 times when n is a multiple of 4
func CreateTestFrequencyTable(n int) *models.FrequencyTable {
	table := models.NewFrequencyTable()
	for i := 0; i < n; i++ {
		record := make(models.DrawRecord, models.DrawSize)
		start := (i % 4) * models.DrawSize
		for j := range record {
			record[j] = start + j + 1
		}
		table.Add(record)
	}
	return table
}

// CreateTestAnalysisRun creates a complete analysis run with default values
func CreateTestAnalysisRun(dataRoot string) *models.AnalysisRun {
	table := CreateTestFrequencyTable(8)
	table.Counts[7]++
	table.Counts[61]--

	simulation := models.NewSimulationResult(1000)
	simulation.Totals[1] = 750
	simulation.Totals[5] = 940
	simulation.Totals[10] = 680

	return &models.AnalysisRun{
		ID:          uuid.New(),
		DataRoot:    dataRoot,
		Frequencies: table,
		Statistics: &models.FrequencyStatistics{
			Ranked:           table.Ranked(),
			TotalRecords:     table.TotalRecords,
			ExpectedCount:    2,
			ChiSquared:       1,
			DegreesOfFreedom: models.MaxNumber - 1,
			PValue:           1,
		},
		Simulation: simulation,
		CreatedAt:  time.Now(),
	}
}
