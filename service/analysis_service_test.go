package service

import (
	"context"
	"errors"
	"testing"

	"kenoanalyzer/events"
	"kenoanalyzer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func analysisFixtures() (*models.FrequencyTable, *models.FrequencyStatistics, *models.SimulationResult) {
	table := tableFromRecords(rangeRecord(1), rangeRecord(1), rangeRecord(1), rangeRecord(1))
	stats, _ := ComputeFrequencyStatistics(table)
	sim := models.NewSimulationResult(100)
	sim.Totals[1] = 50
	return table, stats, sim
}

func TestAnalysisService_Run_Persists(t *testing.T) {
	ctx := context.Background()
	table, stats, sim := analysisFixtures()
	sources := []RecordSource{&memorySource{name: "a.csv"}}

	mockFreq := new(MockFrequencyService)
	mockSim := new(MockSimulationService)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUoW := new(MockUnitOfWork)
	mockRepo := new(MockAnalysisRunRepository)
	mockTxBus := new(MockEventPublisher)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(mockRepo, mockTxBus)

	mockFreq.On("Analyze", mock.Anything, sources).Return(table, stats, nil)
	mockSim.On("Simulate", mock.Anything, int64(100)).Return(sim, nil)

	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		ev, ok := e.(events.FrequencyAnalysisCompletedEvent)
		return ok && ev.TotalRecords == 4 && ev.ChiSquared == stats.ChiSquared
	})).Return()
	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		ev, ok := e.(events.SimulationCompletedEvent)
		return ok && ev.TrialsPerPick == 100 && ev.Totals[1] == 50
	})).Return()

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRepo.On("Create", ctx, mock.MatchedBy(func(run *models.AnalysisRun) bool {
		return run.DataRoot == "/data" && run.Statistics == stats && run.Simulation == sim && run.Frequencies == table
	})).Return(nil)

	mockTxBus.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		ev, ok := e.(events.AnalysisRunSavedEvent)
		return ok && ev.DataRoot == "/data"
	})).Return()

	svc := NewAnalysisService(mockFreq, mockSim, mockFactory, mockPublisher)
	run, err := svc.Run(ctx, "/data", sources, 100)

	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, stats, run.Statistics)
	assert.Equal(t, sim, run.Simulation)
	assert.NotEmpty(t, run.ID)

	mockFreq.AssertExpectations(t)
	mockSim.AssertExpectations(t)
	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
	mockTxBus.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestAnalysisService_Run_WithoutDatabase(t *testing.T) {
	ctx := context.Background()
	table, stats, sim := analysisFixtures()

	mockFreq := new(MockFrequencyService)
	mockSim := new(MockSimulationService)
	mockFreq.On("Analyze", mock.Anything, mock.Anything).Return(table, stats, nil)
	mockSim.On("Simulate", mock.Anything, int64(100)).Return(sim, nil)

	svc := NewAnalysisService(mockFreq, mockSim, nil, nil)
	run, err := svc.Run(ctx, "/data", nil, 100)

	require.NoError(t, err)
	assert.Equal(t, table, run.Frequencies)
	mockFreq.AssertExpectations(t)
	mockSim.AssertExpectations(t)
}

func TestAnalysisService_Run_EngineFailure(t *testing.T) {
	ctx := context.Background()
	_, _, sim := analysisFixtures()

	mockFreq := new(MockFrequencyService)
	mockSim := new(MockSimulationService)
	mockFactory := new(MockUnitOfWorkFactory)

	mockFreq.On("Analyze", mock.Anything, mock.Anything).Return(nil, nil, ErrEmptyDataset)
	mockSim.On("Simulate", mock.Anything, int64(100)).Return(sim, nil).Maybe()

	svc := NewAnalysisService(mockFreq, mockSim, mockFactory, nil)
	run, err := svc.Run(ctx, "/data", nil, 100)

	assert.Nil(t, run)
	assert.ErrorIs(t, err, ErrEmptyDataset)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestAnalysisService_Run_SaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	table, stats, sim := analysisFixtures()

	mockFreq := new(MockFrequencyService)
	mockSim := new(MockSimulationService)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUoW := new(MockUnitOfWork)
	mockRepo := new(MockAnalysisRunRepository)
	mockTxBus := new(MockEventPublisher)

	mockUoW.SetRepositories(mockRepo, mockTxBus)

	mockFreq.On("Analyze", mock.Anything, mock.Anything).Return(table, stats, nil)
	mockSim.On("Simulate", mock.Anything, int64(100)).Return(sim, nil)
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockRepo.On("Create", ctx, mock.Anything).Return(errors.New("connection reset"))

	svc := NewAnalysisService(mockFreq, mockSim, mockFactory, nil)
	_, err := svc.Run(ctx, "/data", nil, 100)

	assert.ErrorContains(t, err, "failed to save analysis run")
	mockUoW.AssertNotCalled(t, "Commit")
	mockUoW.AssertCalled(t, "Rollback")
	mockTxBus.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestAnalysisService_EndToEnd(t *testing.T) {
	ctx := context.Background()

	sources := splitIntoSources([]models.DrawRecord{
		rangeRecord(1), rangeRecord(1), rangeRecord(1), rangeRecord(1),
	}, 1)

	svc := NewAnalysisService(
		NewFrequencyService(NewAggregator(4)),
		NewSimulator(DefaultPayoutTable(), WithSeed(3)),
		nil,
		events.NewBus(),
	)

	run, err := svc.Run(ctx, "synthetic", sources, 2000)
	require.NoError(t, err)

	for n := 1; n <= 20; n++ {
		assert.Equal(t, int64(4), run.Frequencies.Count(n))
	}
	for n := 21; n <= 80; n++ {
		assert.Equal(t, int64(0), run.Frequencies.Count(n))
	}
	assert.Equal(t, int64(4), run.Statistics.TotalRecords)
	assert.Greater(t, run.Statistics.ChiSquared, 0.0)
	assert.InDelta(t, 0.0, run.Statistics.PValue, 1e-6)
	assert.Len(t, run.Simulation.Totals, MaxPicks)
}
