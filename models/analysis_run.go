package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRun represents one complete pass of both engines over a data root
type AnalysisRun struct {
	ID          uuid.UUID            `db:"id"`
	DataRoot    string               `db:"data_root"`
	Frequencies *FrequencyTable      `db:"-"`
	Statistics  *FrequencyStatistics `db:"-"`
	Simulation  *SimulationResult    `db:"-"`
	CreatedAt   time.Time            `db:"created_at"`
}
