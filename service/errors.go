package service

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset is returned when statistics are requested over zero records
var ErrEmptyDataset = errors.New("dataset contains no draw records")

// ErrInvalidTrialCount is returned when a simulation is asked to run zero or fewer trials
var ErrInvalidTrialCount = errors.New("trial count must be positive")

// MalformedRecordError reports a draw record that failed validation
type MalformedRecordError struct {
	Source string // name of the record source
	Index  int    // zero-based record position within the source
	Err    error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed draw record %d in %s: %v", e.Index, e.Source, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// InvalidPickCountError reports a pick count outside [MinPicks, MaxPicks]
type InvalidPickCountError struct {
	Picks int
}

func (e *InvalidPickCountError) Error() string {
	return fmt.Sprintf("invalid pick count %d: must be between %d and %d", e.Picks, MinPicks, MaxPicks)
}
