package repository

import (
	"context"
	"testing"
	"time"

	"kenoanalyzer/events"
	"kenoanalyzer/models"
	"kenoanalyzer/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisRunRepository_CreateAndGetByID(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAnalysisRunRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no run found", func(t *testing.T) {
		run, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, run)
	})

	t.Run("round trip", func(t *testing.T) {
		original := testutil.CreateTestAnalysisRun("/data/keno")
		require.NoError(t, repo.Create(ctx, original))
		assert.False(t, original.CreatedAt.IsZero())

		run, err := repo.GetByID(ctx, original.ID)
		require.NoError(t, err)
		require.NotNil(t, run)

		assert.Equal(t, original.ID, run.ID)
		assert.Equal(t, "/data/keno", run.DataRoot)
		assert.Equal(t, original.Frequencies.Counts, run.Frequencies.Counts)
		assert.Equal(t, original.Frequencies.TotalRecords, run.Frequencies.TotalRecords)

		assert.Equal(t, original.Statistics.TotalRecords, run.Statistics.TotalRecords)
		assert.InDelta(t, original.Statistics.ExpectedCount, run.Statistics.ExpectedCount, 1e-12)
		assert.InDelta(t, original.Statistics.ChiSquared, run.Statistics.ChiSquared, 1e-12)
		assert.Equal(t, models.MaxNumber-1, run.Statistics.DegreesOfFreedom)
		assert.InDelta(t, original.Statistics.PValue, run.Statistics.PValue, 1e-12)

		// Ranking is rebuilt from the stored counts
		require.Len(t, run.Statistics.Ranked, models.MaxNumber)
		assert.Equal(t, 7, run.Statistics.Ranked[0].Number)
		assert.Equal(t, int64(3), run.Statistics.Ranked[0].Count)
		assert.Equal(t, 61, run.Statistics.Ranked[models.MaxNumber-1].Number)
		// One unit per drawn slot
		assert.InDelta(t, float64(models.DrawSize), run.Statistics.RelativeFrequencySum(), 1e-9)

		assert.Equal(t, int64(1000), run.Simulation.TrialsPerPick)
		assert.Equal(t, original.Simulation.Totals, run.Simulation.Totals)
	})

	t.Run("incomplete run rejected", func(t *testing.T) {
		run := testutil.CreateTestAnalysisRun("/data/keno")
		run.Simulation = nil

		err := repo.Create(ctx, run)
		require.Error(t, err)

		stored, err := repo.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("duplicate id leaves no partial rows", func(t *testing.T) {
		run := testutil.CreateTestAnalysisRun("/data/first")
		require.NoError(t, repo.Create(ctx, run))

		duplicate := testutil.CreateTestAnalysisRun("/data/second")
		duplicate.ID = run.ID
		require.Error(t, repo.Create(ctx, duplicate))

		stored, err := repo.GetByID(ctx, run.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "/data/first", stored.DataRoot)
		assert.Equal(t, run.Frequencies.Counts, stored.Frequencies.Counts)
	})
}

func TestAnalysisRunRepository_GetLatest(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAnalysisRunRepository(testDB.DB)
	ctx := context.Background()

	run, err := repo.GetLatest(ctx)
	require.NoError(t, err)
	assert.Nil(t, run)

	first := testutil.CreateTestAnalysisRun("/data/first")
	require.NoError(t, repo.Create(ctx, first))
	time.Sleep(10 * time.Millisecond)
	second := testutil.CreateTestAnalysisRun("/data/second")
	require.NoError(t, repo.Create(ctx, second))

	latest, err := repo.GetLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
}

func TestUnitOfWork(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	saved := make(chan events.AnalysisRunSavedEvent, 2)
	bus.Subscribe(events.EventTypeAnalysisRunSaved, func(ctx context.Context, e events.Event) {
		saved <- e.(events.AnalysisRunSavedEvent)
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	repo := NewAnalysisRunRepository(testDB.DB)

	t.Run("commit persists and flushes events", func(t *testing.T) {
		run := testutil.CreateTestAnalysisRun("/data/commit")

		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.AnalysisRunRepository().Create(ctx, run))
		uow.EventBus().Publish(events.AnalysisRunSavedEvent{RunID: run.ID})
		require.NoError(t, uow.Commit())

		select {
		case e := <-saved:
			assert.Equal(t, run.ID, e.RunID)
		case <-time.After(2 * time.Second):
			t.Fatal("expected saved event after commit")
		}

		stored, err := repo.GetByID(ctx, run.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
	})

	t.Run("rollback discards rows and events", func(t *testing.T) {
		run := testutil.CreateTestAnalysisRun("/data/rollback")

		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.AnalysisRunRepository().Create(ctx, run))
		uow.EventBus().Publish(events.AnalysisRunSavedEvent{RunID: run.ID})
		require.NoError(t, uow.Rollback())

		select {
		case <-saved:
			t.Fatal("no event expected after rollback")
		case <-time.After(200 * time.Millisecond):
		}

		stored, err := repo.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("begin twice fails", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		assert.Error(t, uow.Begin(ctx))
	})

	t.Run("commit without begin fails", func(t *testing.T) {
		uow := factory.Create()
		assert.Error(t, uow.Commit())
		assert.NoError(t, uow.Rollback())
	})
}
