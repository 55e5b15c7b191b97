package service

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
	"math/rand/v2"
	"sync"
	"time"

	"kenoanalyzer/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultTrialCount is the number of trials run per pick count
const DefaultTrialCount int64 = 10_000_000

// cancelCheckInterval is how many trials run between context checks (power of two)
const cancelCheckInterval = 1 << 16

// Simulator estimates the prize paid for each pick count by Monte Carlo.
// Every pick count runs in its own goroutine with a private RNG and accumulator.
type Simulator struct {
	table      *PayoutTable
	seed       uint64
	fixedSeed  bool
	seedSource io.Reader
}

// SimulatorOption configures a Simulator
type SimulatorOption func(*Simulator)

// WithSeed makes every pick-count stream derive its RNG from seed, so runs are reproducible
func WithSeed(seed uint64) SimulatorOption {
	return func(s *Simulator) {
		s.seed = seed
		s.fixedSeed = true
	}
}

// NewSimulator creates a simulator over the given payout table
func NewSimulator(table *PayoutTable, opts ...SimulatorOption) *Simulator {
	s := &Simulator{table: table, seedSource: crand.Reader}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate runs trials for each requested pick count (all of 1..10 when none are given)
// and returns the total prize accumulated per pick count.
func (s *Simulator) Simulate(ctx context.Context, trials int64, picks ...int) (*models.SimulationResult, error) {
	if trials <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTrialCount, trials)
	}

	pickCounts, err := normalizePickCounts(picks)
	if err != nil {
		return nil, err
	}

	// Every stream is seeded before any of them starts
	streams := make([]*rand.Rand, len(pickCounts))
	for i, p := range pickCounts {
		if streams[i], err = s.newStream(p); err != nil {
			return nil, err
		}
	}

	result := models.NewSimulationResult(trials)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range pickCounts {
		rng := streams[i]
		g.Go(func() error {
			start := time.Now()
			total, err := runTrials(gctx, rng, s.table, p, trials)
			if err != nil {
				return fmt.Errorf("simulation for %d picks interrupted: %w", p, err)
			}

			mu.Lock()
			result.Totals[p] = total
			mu.Unlock()

			log.WithFields(log.Fields{
				"picks":    p,
				"trials":   trials,
				"total":    total,
				"duration": time.Since(start),
			}).Debug("Pick count simulation finished")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

// normalizePickCounts validates the requested pick counts and drops duplicates,
// so that each pick count is produced by exactly one stream.
func normalizePickCounts(picks []int) ([]int, error) {
	if len(picks) == 0 {
		all := make([]int, 0, MaxPicks)
		for p := MinPicks; p <= MaxPicks; p++ {
			all = append(all, p)
		}
		return all, nil
	}

	seen := make(map[int]bool, len(picks))
	unique := make([]int, 0, len(picks))
	for _, p := range picks {
		if p < MinPicks || p > MaxPicks {
			return nil, &InvalidPickCountError{Picks: p}
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		unique = append(unique, p)
	}
	return unique, nil
}

func (s *Simulator) newStream(picks int) (*rand.Rand, error) {
	if s.fixedSeed {
		return rand.New(rand.NewPCG(s.seed, uint64(picks))), nil
	}

	var buf [16]byte
	if _, err := io.ReadFull(s.seedSource, buf[:]); err != nil {
		return nil, fmt.Errorf("failed to seed random stream: %w", err)
	}
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(buf[:8]), binary.LittleEndian.Uint64(buf[8:]))), nil
}

func runTrials(ctx context.Context, rng *rand.Rand, table *PayoutTable, picks int, trials int64) (int64, error) {
	drawer := newSubsetDrawer(rng)

	var total int64
	for t := int64(0); t < trials; t++ {
		if t%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		_, prize := playTrial(drawer, table, picks)
		total += prize
	}
	return total, nil
}

// playTrial draws the player's picks and an independent house draw, then pays the match count
func playTrial(drawer *subsetDrawer, table *PayoutTable, picks int) (int, int64) {
	player := drawer.draw(picks)
	house := drawer.draw(models.DrawSize)
	matches := player.intersectCount(house)
	return matches, table.Lookup(picks, matches)
}

// numberMask is a bit set over 0..127; bit n marks number n as chosen
type numberMask [2]uint64

func (m *numberMask) set(n int) {
	m[n>>6] |= 1 << uint(n&63)
}

func (m numberMask) has(n int) bool {
	return m[n>>6]&(1<<uint(n&63)) != 0
}

func (m numberMask) count() int {
	return bits.OnesCount64(m[0]) + bits.OnesCount64(m[1])
}

func (m numberMask) intersectCount(other numberMask) int {
	return bits.OnesCount64(m[0]&other[0]) + bits.OnesCount64(m[1]&other[1])
}

// subsetDrawer samples uniform subsets of 1..80 without replacement using a
// partial Fisher-Yates shuffle over a pool owned by a single stream.
type subsetDrawer struct {
	rng  *rand.Rand
	pool [models.MaxNumber]int
}

func newSubsetDrawer(rng *rand.Rand) *subsetDrawer {
	d := &subsetDrawer{rng: rng}
	for i := range d.pool {
		d.pool[i] = models.MinNumber + i
	}
	return d
}

func (d *subsetDrawer) draw(k int) numberMask {
	var mask numberMask
	for i := 0; i < k; i++ {
		j := i + d.rng.IntN(len(d.pool)-i)
		d.pool[i], d.pool[j] = d.pool[j], d.pool[i]
		mask.set(d.pool[i])
	}
	return mask
}
