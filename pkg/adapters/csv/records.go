package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/schema"
)

// ReadRecords parses an input table. Every malformed row is reported, not
// only the first, as a *schema.AggregateError.
func ReadRecords(r io.Reader) ([]domain.SampleRecord, error) {
	reader := stdcsv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	in := schema.Input()
	if err := in.ValidateHeader(header); err != nil {
		return nil, err
	}

	var records []domain.SampleRecord
	var errs []error
	for row := 1; ; row++ {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if isBlank(cells) {
			continue
		}
		rec, err := in.Record(header, cells, row)
		if err != nil {
			errs = append(errs, schema.ValidationErrors(err)...)
			continue
		}
		records = append(records, rec)
	}
	if len(errs) > 0 {
		return nil, &schema.AggregateError{Errors: errs}
	}
	return records, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// RecordFile implements ports.RecordSource over an input table on disk.
type RecordFile struct {
	Path string
}

// Records reads and parses the file.
func (f RecordFile) Records(_ context.Context) ([]domain.SampleRecord, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := ReadRecords(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return records, nil
}
