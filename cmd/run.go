package cmd

import (
	"context"
	"fmt"
	"time"

	"kenoanalyzer/config"
	"kenoanalyzer/database"
	"kenoanalyzer/events"
	"kenoanalyzer/models"
	"kenoanalyzer/records"
	"kenoanalyzer/report"
	"kenoanalyzer/repository"
	"kenoanalyzer/service"

	log "github.com/sirupsen/logrus"
)

// Run analyzes every record under the configured data root, simulates the
// payout table and writes the report
func Run(ctx context.Context) error {
	cfg := config.Get()
	if err := configureLogging(cfg); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"dataRoot":    cfg.DataRootPath,
		"trials":      cfg.TrialCount,
		"environment": cfg.Environment,
	}).Info("Starting Keno analyzer")
	start := time.Now()

	sources, err := discoverSources(cfg.DataRootPath)
	if err != nil {
		return err
	}

	eventBus := events.NewBus()
	subscribeLogging(eventBus)
	// Handlers are asynchronous; let the milestone logs land before returning
	defer eventBus.Wait()

	var uowFactory service.UnitOfWorkFactory
	if cfg.PersistenceEnabled() {
		db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		uowFactory = repository.NewUnitOfWorkFactory(db, eventBus)
	} else {
		log.Info("DATABASE_URL not set, analysis run will not be stored")
	}

	payouts := service.DefaultPayoutTable()
	var simOpts []service.SimulatorOption
	if cfg.SimulationSeed != 0 {
		simOpts = append(simOpts, service.WithSeed(cfg.SimulationSeed))
	}

	analysisService := service.NewAnalysisService(
		service.NewFrequencyService(service.NewAggregator(cfg.AggregatorWorkers)),
		service.NewSimulator(payouts, simOpts...),
		uowFactory,
		eventBus,
	)

	run, err := analysisService.Run(ctx, cfg.DataRootPath, sources, cfg.TrialCount)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := writeOutputs(cfg, payouts, run); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"runID":       run.ID,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Keno analyzer finished")
	return nil
}

// RenderLatest rewrites the report and chart from the most recently stored run
func RenderLatest(ctx context.Context) error {
	cfg := config.Get()
	if err := configureLogging(cfg); err != nil {
		return err
	}
	if !cfg.PersistenceEnabled() {
		return fmt.Errorf("DATABASE_URL is required to render a stored run")
	}

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	run, err := repository.NewAnalysisRunRepository(db).GetLatest(ctx)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no stored analysis runs")
	}

	log.WithFields(log.Fields{
		"runID":     run.ID,
		"createdAt": run.CreatedAt,
	}).Info("Rendering stored analysis run")

	return writeOutputs(cfg, service.DefaultPayoutTable(), run)
}

func configureLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	log.SetLevel(level)
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	return nil
}

func discoverSources(root string) ([]service.RecordSource, error) {
	files, err := records.Discover(root)
	if err != nil {
		return nil, fmt.Errorf("failed to discover record files: %w", err)
	}

	sources := make([]service.RecordSource, len(files))
	for i, f := range files {
		sources[i] = f
	}
	return sources, nil
}

func subscribeLogging(bus *events.Bus) {
	bus.Subscribe(events.EventTypeFrequencyAnalysisCompleted, func(ctx context.Context, e events.Event) {
		ev := e.(events.FrequencyAnalysisCompletedEvent)
		log.WithFields(log.Fields{
			"runID":      ev.RunID,
			"records":    ev.TotalRecords,
			"chiSquared": ev.ChiSquared,
			"pValue":     ev.PValue,
		}).Info("Frequency analysis completed")
	})
	bus.Subscribe(events.EventTypeSimulationCompleted, func(ctx context.Context, e events.Event) {
		ev := e.(events.SimulationCompletedEvent)
		log.WithFields(log.Fields{
			"runID":  ev.RunID,
			"trials": ev.TrialsPerPick,
			"totals": ev.Totals,
		}).Info("Simulation completed")
	})
	bus.Subscribe(events.EventTypeAnalysisRunSaved, func(ctx context.Context, e events.Event) {
		ev := e.(events.AnalysisRunSavedEvent)
		log.WithFields(log.Fields{
			"runID":    ev.RunID,
			"dataRoot": ev.DataRoot,
		}).Info("Analysis run stored")
	})
}

func writeOutputs(cfg *config.Config, payouts *service.PayoutTable, run *models.AnalysisRun) error {
	chartPath := ""
	if !cfg.DisableChart {
		if err := report.NewFrequencyChart().WriteFile(cfg.ChartPath, run.Frequencies); err != nil {
			return err
		}
		chartPath = cfg.ChartPath
	}

	return report.NewLaTeXReport(payouts, chartPath).WriteFile(cfg.ReportPath, run)
}
