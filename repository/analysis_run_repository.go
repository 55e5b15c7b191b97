package repository

import (
	"context"
	"errors"
	"fmt"

	"kenoanalyzer/database"
	"kenoanalyzer/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AnalysisRunRepository implements the AnalysisRunRepository interface
type AnalysisRunRepository struct {
	q  queryable
	db *database.DB // set when not bound to a unit of work; Create then opens its own transaction
}

// NewAnalysisRunRepository creates a new analysis run repository
func NewAnalysisRunRepository(db *database.DB) *AnalysisRunRepository {
	return &AnalysisRunRepository{q: db.Pool, db: db}
}

// newAnalysisRunRepositoryWithTx creates a new analysis run repository with a transaction
func newAnalysisRunRepositoryWithTx(tx queryable) *AnalysisRunRepository {
	return &AnalysisRunRepository{q: tx}
}

// Create stores the run header, all 80 number counts and the simulation totals
func (r *AnalysisRunRepository) Create(ctx context.Context, run *models.AnalysisRun) error {
	if run.Frequencies == nil || run.Statistics == nil || run.Simulation == nil {
		return fmt.Errorf("analysis run %s is incomplete", run.ID)
	}

	if r.db != nil {
		return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
			return insertRun(ctx, tx, run)
		})
	}
	return insertRun(ctx, r.q, run)
}

func insertRun(ctx context.Context, q queryable, run *models.AnalysisRun) error {
	query := `
		INSERT INTO analysis_runs
		(id, data_root, total_records, expected_count, chi_squared, degrees_of_freedom, p_value, trials_per_pick)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	stats := run.Statistics
	err := q.QueryRow(ctx, query,
		run.ID,
		run.DataRoot,
		stats.TotalRecords,
		stats.ExpectedCount,
		stats.ChiSquared,
		stats.DegreesOfFreedom,
		stats.PValue,
		run.Simulation.TrialsPerPick,
	).Scan(&run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create analysis run %s: %w", run.ID, err)
	}

	batch := &pgx.Batch{}
	for n := models.MinNumber; n <= models.MaxNumber; n++ {
		batch.Queue(`INSERT INTO number_frequencies (run_id, number, occurrences) VALUES ($1, $2, $3)`,
			run.ID, n, run.Frequencies.Counts[n])
	}
	for _, picks := range run.Simulation.PickCounts() {
		batch.Queue(`INSERT INTO simulation_totals (run_id, picks, total_prize) VALUES ($1, $2, $3)`,
			run.ID, picks, run.Simulation.Totals[picks])
	}

	results := q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to store results for analysis run %s: %w", run.ID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to store results for analysis run %s: %w", run.ID, err)
	}

	return nil
}

// GetByID retrieves a run with its frequencies and simulation totals
func (r *AnalysisRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, error) {
	query := `
		SELECT id, data_root, total_records, expected_count, chi_squared,
		       degrees_of_freedom, p_value, trials_per_pick, created_at
		FROM analysis_runs
		WHERE id = $1
	`

	run := &models.AnalysisRun{}
	stats := &models.FrequencyStatistics{}
	var trials int64

	err := r.q.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.DataRoot,
		&stats.TotalRecords,
		&stats.ExpectedCount,
		&stats.ChiSquared,
		&stats.DegreesOfFreedom,
		&stats.PValue,
		&trials,
		&run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis run %s: %w", id, err)
	}

	table, err := r.getFrequencies(ctx, id)
	if err != nil {
		return nil, err
	}
	table.TotalRecords = stats.TotalRecords
	stats.Ranked = table.Ranked()

	simulation, err := r.getSimulationTotals(ctx, id, trials)
	if err != nil {
		return nil, err
	}

	run.Frequencies = table
	run.Statistics = stats
	run.Simulation = simulation
	return run, nil
}

// GetLatest returns the most recent run
func (r *AnalysisRunRepository) GetLatest(ctx context.Context) (*models.AnalysisRun, error) {
	var id uuid.UUID
	err := r.q.QueryRow(ctx, `SELECT id FROM analysis_runs ORDER BY created_at DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest analysis run: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *AnalysisRunRepository) getFrequencies(ctx context.Context, id uuid.UUID) (*models.FrequencyTable, error) {
	rows, err := r.q.Query(ctx, `SELECT number, occurrences FROM number_frequencies WHERE run_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get frequencies for analysis run %s: %w", id, err)
	}
	defer rows.Close()

	table := models.NewFrequencyTable()
	for rows.Next() {
		var number int
		var occurrences int64
		if err := rows.Scan(&number, &occurrences); err != nil {
			return nil, fmt.Errorf("failed to scan frequency row: %w", err)
		}
		if number < models.MinNumber || number > models.MaxNumber {
			return nil, fmt.Errorf("stored frequency for number %d is outside the pool", number)
		}
		table.Counts[number] = occurrences
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read frequencies for analysis run %s: %w", id, err)
	}
	return table, nil
}

func (r *AnalysisRunRepository) getSimulationTotals(ctx context.Context, id uuid.UUID, trials int64) (*models.SimulationResult, error) {
	rows, err := r.q.Query(ctx, `SELECT picks, total_prize FROM simulation_totals WHERE run_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get simulation totals for analysis run %s: %w", id, err)
	}
	defer rows.Close()

	result := models.NewSimulationResult(trials)
	for rows.Next() {
		var picks int
		var total int64
		if err := rows.Scan(&picks, &total); err != nil {
			return nil, fmt.Errorf("failed to scan simulation total row: %w", err)
		}
		result.Totals[picks] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read simulation totals for analysis run %s: %w", id, err)
	}
	return result, nil
}
