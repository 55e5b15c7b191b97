package service

import (
	"context"

	"kenoanalyzer/events"
	"kenoanalyzer/models"

	"github.com/google/uuid"
)

// RecordSource yields validated-or-not draw records from one input, such as a CSV file
type RecordSource interface {
	// Name identifies the source in logs and errors
	Name() string

	// Each calls fn for every record in order, stopping at the first error
	Each(ctx context.Context, fn func(models.DrawRecord) error) error
}

// AnalysisRunRepository defines the interface for persisting finished analysis runs
type AnalysisRunRepository interface {
	// Create stores the run together with its frequencies and simulation totals
	Create(ctx context.Context, run *models.AnalysisRun) error

	// GetByID retrieves a stored run, or nil when it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, error)

	// GetLatest returns the most recent run, or nil when none exist
	GetLatest(ctx context.Context) (*models.AnalysisRun, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// FrequencyService aggregates draw records and tests them for uniformity
type FrequencyService interface {
	// Analyze builds the frequency table for all sources and computes its statistics
	Analyze(ctx context.Context, sources []RecordSource) (*models.FrequencyTable, *models.FrequencyStatistics, error)
}

// SimulationService estimates prize totals per pick count
type SimulationService interface {
	// Simulate runs trials for the given pick counts, or all of 1..10 when none are given
	Simulate(ctx context.Context, trials int64, picks ...int) (*models.SimulationResult, error)
}

// AnalysisService runs both engines and records the outcome
type AnalysisService interface {
	// Run analyzes the sources found under dataRoot and simulates trials per pick count
	Run(ctx context.Context, dataRoot string, sources []RecordSource, trials int64) (*models.AnalysisRun, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	AnalysisRunRepository() AnalysisRunRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
