package service

import (
	"fmt"

	"kenoanalyzer/models"
)

const (
	MinPicks = 1
	MaxPicks = 10
)

// PayoutTable maps (picks, matches) to a prize. It is immutable once built
// and safe to share between simulation workers without locking.
type PayoutTable struct {
	prizes [MaxPicks + 1][MaxPicks + 1]int64
}

// NewPayoutTable builds a table from a picks -> matches -> prize schedule.
// Combinations missing from the schedule pay nothing.
func NewPayoutTable(schedule map[int]map[int]int64) (*PayoutTable, error) {
	table := &PayoutTable{}
	for picks, row := range schedule {
		if picks < MinPicks || picks > MaxPicks {
			return nil, &InvalidPickCountError{Picks: picks}
		}
		for matches, prize := range row {
			if matches < 0 || matches > picks {
				return nil, fmt.Errorf("invalid match count %d for %d picks", matches, picks)
			}
			if prize < 0 {
				return nil, fmt.Errorf("negative prize %d for %d picks with %d matches", prize, picks, matches)
			}
			table.prizes[picks][matches] = prize
		}
	}
	return table, nil
}

// DefaultPayoutTable returns the standard Keno prize schedule for 1 to 10 picks
func DefaultPayoutTable() *PayoutTable {
	table, err := NewPayoutTable(map[int]map[int]int64{
		1:  {1: 2},
		2:  {2: 10},
		3:  {3: 25, 2: 2},
		4:  {4: 50, 3: 5, 2: 1},
		5:  {5: 500, 4: 15, 3: 2},
		6:  {6: 1500, 5: 50, 4: 5, 3: 1},
		7:  {7: 5000, 6: 150, 5: 15, 4: 2, 3: 1},
		8:  {8: 15000, 7: 400, 6: 50, 5: 10, 4: 2},
		9:  {9: 25000, 8: 2500, 7: 200, 6: 25, 5: 4, 4: 1},
		10: {10: 200000, 9: 10000, 8: 500, 7: 50, 6: 10, 5: 3, 0: 3},
	})
	if err != nil {
		panic(fmt.Sprintf("default payout table is invalid: %v", err))
	}
	return table
}

// Lookup returns the prize for a combination; anything outside the table pays 0
func (t *PayoutTable) Lookup(picks, matches int) int64 {
	if picks < MinPicks || picks > MaxPicks || matches < 0 || matches > picks {
		return 0
	}
	return t.prizes[picks][matches]
}

// MaxPrize returns the largest prize available for a pick count
func (t *PayoutTable) MaxPrize(picks int) int64 {
	var best int64
	for m := 0; m <= picks && m <= models.DrawSize; m++ {
		if prize := t.Lookup(picks, m); prize > best {
			best = prize
		}
	}
	return best
}
