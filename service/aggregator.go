package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"kenoanalyzer/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Aggregator tallies drawn numbers across many record sources in parallel.
// Each source is counted into a worker-local table and merged into the shared
// result once, so no lock is taken per record.
type Aggregator struct {
	workers int
}

// NewAggregator creates an aggregator running at most workers sources at a time.
// A non-positive value means one worker per available CPU.
func NewAggregator(workers int) *Aggregator {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Aggregator{workers: workers}
}

// Aggregate builds the frequency table for all sources. The first malformed
// record aborts the run with a *MalformedRecordError naming its source.
func (a *Aggregator) Aggregate(ctx context.Context, sources []RecordSource) (*models.FrequencyTable, error) {
	start := time.Now()
	table := models.NewFrequencyTable()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for _, source := range sources {
		g.Go(func() error {
			local, err := tallySource(gctx, source)
			if err != nil {
				return err
			}

			mu.Lock()
			table.Merge(local)
			mu.Unlock()

			log.WithFields(log.Fields{
				"source":  source.Name(),
				"records": local.TotalRecords,
			}).Debug("Merged record source into frequency table")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"sources":  len(sources),
		"records":  table.TotalRecords,
		"workers":  a.workers,
		"duration": time.Since(start),
	}).Info("Record aggregation completed")

	return table, nil
}

// tallySource counts one source into a fresh table that only this worker touches
func tallySource(ctx context.Context, source RecordSource) (*models.FrequencyTable, error) {
	local := models.NewFrequencyTable()
	index := 0

	err := source.Each(ctx, func(record models.DrawRecord) error {
		if err := record.Validate(); err != nil {
			return &MalformedRecordError{Source: source.Name(), Index: index, Err: err}
		}
		local.Add(record)
		index++
		return nil
	})
	if err != nil {
		var malformed *MalformedRecordError
		if errors.As(err, &malformed) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read record source %s: %w", source.Name(), err)
	}

	return local, nil
}
