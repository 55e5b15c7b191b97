package models

import (
	"errors"
	"fmt"
)

const (
	// MinNumber and MaxNumber bound the Keno number pool
	MinNumber = 1
	MaxNumber = 80

	// DrawSize is how many numbers the house draws per event
	DrawSize = 20
)

var (
	ErrWrongDrawSize    = errors.New("wrong number of drawn values")
	ErrNumberOutOfRange = errors.New("drawn number out of range")
	ErrDuplicateNumber  = errors.New("duplicate drawn number")
)

// DrawRecord holds the numbers drawn in one historical Keno event
type DrawRecord []int

// Validate checks the record has exactly DrawSize distinct values in [MinNumber, MaxNumber]
func (r DrawRecord) Validate() error {
	if len(r) != DrawSize {
		return fmt.Errorf("%w: have %d, need %d", ErrWrongDrawSize, len(r), DrawSize)
	}

	var seen [MaxNumber + 1]bool
	for i, n := range r {
		if n < MinNumber || n > MaxNumber {
			return fmt.Errorf("%w: value %d at position %d", ErrNumberOutOfRange, n, i)
		}
		if seen[n] {
			return fmt.Errorf("%w: value %d at position %d", ErrDuplicateNumber, n, i)
		}
		seen[n] = true
	}
	return nil
}
