package legacy

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/aretw0/stagegen/pkg/domain"
)

// row accumulates cells and keeps the first error, so generators can set
// columns without checking every call.
type row struct {
	out *domain.OutputRow
	err error
}

func newRow() *row { return &row{out: domain.NewOutputRow()} }

func (r *row) set(column string, value any) {
	if r.err != nil {
		return
	}
	r.err = r.out.Set(column, format(value))
}

func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case *int:
		if x == nil {
			return ""
		}
		return strconv.Itoa(*x)
	default:
		return fmt.Sprint(x)
	}
}

// builder collects rows into a table whose header is fixed by the first row.
type builder struct {
	table *domain.Table
	err   error
}

func newBuilder(stage string) *builder {
	return &builder{table: domain.NewTable(stage, nil)}
}

func (b *builder) add(r *row) {
	if b.err != nil {
		return
	}
	if r.err != nil {
		b.err = fmt.Errorf("stage %s: %w", b.table.Stage, r.err)
		return
	}
	if b.table.Columns == nil {
		b.table.Columns = slices.Clone(r.out.Columns())
	}
	if err := b.table.AppendRow(r.out); err != nil {
		b.err = fmt.Errorf("stage %s: %w", b.table.Stage, err)
	}
}

func (b *builder) result() (*domain.Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.table, nil
}

func byArm(records []domain.SampleRecord, arm domain.Arm) []domain.SampleRecord {
	var out []domain.SampleRecord
	for _, r := range records {
		if r.Arm == arm {
			out = append(out, r)
		}
	}
	return out
}
