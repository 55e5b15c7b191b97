package service

import (
	"context"
	"fmt"
	"time"

	"kenoanalyzer/events"
	"kenoanalyzer/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type analysisService struct {
	frequencyService  FrequencyService
	simulationService SimulationService
	uowFactory        UnitOfWorkFactory // nil disables persistence
	publisher         EventPublisher
}

// NewAnalysisService creates the service that runs both engines side by side.
// Passing a nil uowFactory keeps results in memory only.
func NewAnalysisService(frequencyService FrequencyService, simulationService SimulationService, uowFactory UnitOfWorkFactory, publisher EventPublisher) AnalysisService {
	return &analysisService{
		frequencyService:  frequencyService,
		simulationService: simulationService,
		uowFactory:        uowFactory,
		publisher:         publisher,
	}
}

func (s *analysisService) Run(ctx context.Context, dataRoot string, sources []RecordSource, trials int64) (*models.AnalysisRun, error) {
	run := &models.AnalysisRun{
		ID:       uuid.New(),
		DataRoot: dataRoot,
	}

	logger := log.WithFields(log.Fields{
		"runID":    run.ID,
		"dataRoot": dataRoot,
		"sources":  len(sources),
		"trials":   trials,
	})
	logger.Info("Starting analysis run")
	start := time.Now()

	// The two engines share no state, so they run concurrently
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		table, stats, err := s.frequencyService.Analyze(gctx, sources)
		if err != nil {
			return err
		}
		run.Frequencies = table
		run.Statistics = stats
		s.publish(events.FrequencyAnalysisCompletedEvent{
			RunID:        run.ID,
			TotalRecords: stats.TotalRecords,
			ChiSquared:   stats.ChiSquared,
			PValue:       stats.PValue,
		})
		return nil
	})
	g.Go(func() error {
		result, err := s.simulationService.Simulate(gctx, trials)
		if err != nil {
			return fmt.Errorf("failed to run payout simulation: %w", err)
		}
		run.Simulation = result
		s.publish(events.SimulationCompletedEvent{
			RunID:         run.ID,
			TrialsPerPick: result.TrialsPerPick,
			Totals:        result.Totals,
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.WithField("duration", time.Since(start)).Info("Analysis run completed")

	if s.uowFactory == nil {
		logger.Debug("No database configured, skipping persistence")
		return run, nil
	}

	if err := s.save(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *analysisService) save(ctx context.Context, run *models.AnalysisRun) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.AnalysisRunRepository().Create(ctx, run); err != nil {
		return fmt.Errorf("failed to save analysis run: %w", err)
	}

	uow.EventBus().Publish(events.AnalysisRunSavedEvent{
		RunID:    run.ID,
		DataRoot: run.DataRoot,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *analysisService) publish(event events.Event) {
	if s.publisher != nil {
		s.publisher.Publish(event)
	}
}
