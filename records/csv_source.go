package records

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"kenoanalyzer/models"

	log "github.com/sirupsen/logrus"
)

const (
	// FirstDrawColumn is the zero-based column holding the first drawn number
	FirstDrawColumn = 4

	// LastDrawColumn is the exclusive end of the drawn-number columns
	LastDrawColumn = FirstDrawColumn + models.DrawSize
)

// CSVSource reads draw records from one CSV export. The first row is a header;
// every following row carries the 20 drawn numbers in columns 4 through 23.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source for a single file
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Name returns the file path
func (s *CSVSource) Name() string {
	return s.path
}

// Each streams the file's records to fn
func (s *CSVSource) Each(ctx context.Context, fn func(models.DrawRecord) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	return readRecords(ctx, f, fn)
}

func readRecords(ctx context.Context, r io.Reader, fn func(models.DrawRecord) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to read header: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		record, err := parseRow(row)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		if err := fn(record); err != nil {
			return err
		}
	}
}

// parseRow extracts the drawn numbers without range checks; validation belongs to the aggregator
func parseRow(row []string) (models.DrawRecord, error) {
	if len(row) < LastDrawColumn {
		return nil, fmt.Errorf("row has %d fields, need at least %d", len(row), LastDrawColumn)
	}

	record := make(models.DrawRecord, 0, models.DrawSize)
	for i := FirstDrawColumn; i < LastDrawColumn; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(row[i]))
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		record = append(record, n)
	}
	return record, nil
}

// Discover returns one source per regular file under root, searching subdirectories.
// Files are returned in lexical path order.
func Discover(root string) ([]*CSVSource, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan data root %s: %w", root, err)
	}

	sort.Strings(paths)

	sources := make([]*CSVSource, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, NewCSVSource(p))
	}

	log.WithFields(log.Fields{
		"root":  root,
		"files": len(sources),
	}).Info("Discovered draw record files")

	return sources, nil
}
