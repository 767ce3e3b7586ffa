package csv

import (
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/stagegen/pkg/domain"
)

// ReadTable parses a stage table. Rows must match the header width.
func ReadTable(stage string, r io.Reader) (*domain.Table, error) {
	reader := stdcsv.NewReader(r)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return domain.NewTable(stage, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := domain.NewTable(stage, header)
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, cells)
	}
}

// WriteTable writes the header and every row of t.
// A table without columns produces an empty file.
func WriteTable(w io.Writer, t *domain.Table) error {
	if len(t.Columns) == 0 {
		return nil
	}
	writer := stdcsv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}
