package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sequentialRecord(start int) DrawRecord {
	record := make(DrawRecord, DrawSize)
	for i := range record {
		record[i] = start + i
	}
	return record
}

func TestDrawRecord_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		record  func() DrawRecord
		wantErr error
	}{
		{
			name:   "valid record",
			record: func() DrawRecord { return sequentialRecord(1) },
		},
		{
			name:   "valid record at top of range",
			record: func() DrawRecord { return sequentialRecord(61) },
		},
		{
			name:    "too few values",
			record:  func() DrawRecord { return sequentialRecord(1)[:19] },
			wantErr: ErrWrongDrawSize,
		},
		{
			name:    "too many values",
			record:  func() DrawRecord { return append(sequentialRecord(1), 21) },
			wantErr: ErrWrongDrawSize,
		},
		{
			name: "zero is out of range",
			record: func() DrawRecord {
				r := sequentialRecord(1)
				r[5] = 0
				return r
			},
			wantErr: ErrNumberOutOfRange,
		},
		{
			name: "81 is out of range",
			record: func() DrawRecord {
				r := sequentialRecord(1)
				r[19] = 81
				return r
			},
			wantErr: ErrNumberOutOfRange,
		},
		{
			name: "duplicate value",
			record: func() DrawRecord {
				r := sequentialRecord(1)
				r[10] = r[3]
				return r
			},
			wantErr: ErrDuplicateNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.record().Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
