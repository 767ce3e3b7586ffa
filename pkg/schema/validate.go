package schema

import (
	"strings"

	"github.com/aretw0/stagegen/pkg/domain"
)

// Column declares one input table column.
type Column struct {
	Name     string
	Type     Type
	Optional bool // Empty cells are allowed and mean "absent"
}

// Schema is the ordered list of columns of a table.
type Schema []Column

// Input returns the schema of the narrow sample table.
// n_frames is optional and defaults to the channel count.
func Input() Schema {
	arm := Custom("arm", KindString, func(raw string) (any, error) {
		a, err := domain.ParseArm(raw)
		if err != nil {
			return nil, err
		}
		return string(a), nil
	})
	return Schema{
		{Name: domain.FieldPath, Type: String()},
		{Name: domain.FieldArm, Type: arm},
		{Name: domain.FieldBatch, Type: String()},
		{Name: domain.FieldPlate, Type: String()},
		{Name: domain.FieldWell, Type: String()},
		{Name: domain.FieldChannels, Type: List(",")},
		{Name: domain.FieldSite, Type: Int(), Optional: true},
		{Name: domain.FieldCycle, Type: Int(), Optional: true},
		{Name: domain.FieldNFrames, Type: Int(), Optional: true},
	}
}

// Lookup finds a column by name.
func (s Schema) Lookup(name string) (Column, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Names returns the column names in declared order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// ValidateHeader checks that every column of the schema is present in header.
// Optional columns may be omitted entirely. Unknown extra columns are ignored.
func (s Schema) ValidateHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}

	var errs []error
	for _, c := range s {
		if !c.Optional && !present[c.Name] {
			errs = append(errs, &ValidationError{Key: c.Name, Reason: "required column missing"})
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// Parse converts one data row into typed values keyed by column name.
// Empty optional cells are left out of the result. row is the 1-based
// data row number used in error reports.
func (s Schema) Parse(header, cells []string, row int) (map[string]any, error) {
	raw := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(cells) {
			raw[strings.TrimSpace(h)] = strings.TrimSpace(cells[i])
		}
	}

	var errs []error
	values := make(map[string]any, len(s))
	for _, c := range s {
		cell := raw[c.Name]
		if cell == "" {
			if !c.Optional {
				errs = append(errs, &ValidationError{Key: c.Name, Row: row, Reason: "required"})
			}
			continue
		}
		v, err := c.Type.Parse(cell)
		if err != nil {
			errs = append(errs, &ValidationError{Key: c.Name, Row: row, Reason: err.Error(), Value: cell})
			continue
		}
		values[c.Name] = v
	}

	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return values, nil
}

// Record builds a SampleRecord from one data row.
func (s Schema) Record(header, cells []string, row int) (domain.SampleRecord, error) {
	values, err := s.Parse(header, cells, row)
	if err != nil {
		return domain.SampleRecord{}, err
	}
	return RecordFromValues(values), nil
}

// RecordFromValues assembles a SampleRecord from typed values as produced by Parse.
func RecordFromValues(values map[string]any) domain.SampleRecord {
	str := func(k string) string {
		v, _ := values[k].(string)
		return v
	}
	optInt := func(k string) *int {
		if v, ok := values[k].(int); ok {
			return domain.IntPtr(v)
		}
		return nil
	}

	rec := domain.SampleRecord{
		Path:  str(domain.FieldPath),
		Arm:   domain.Arm(str(domain.FieldArm)),
		Batch: str(domain.FieldBatch),
		Plate: str(domain.FieldPlate),
		Well:  str(domain.FieldWell),
		Site:  optInt(domain.FieldSite),
		Cycle: optInt(domain.FieldCycle),
	}
	if ch, ok := values[domain.FieldChannels].([]string); ok {
		rec.Channels = ch
	}
	rec.NFrames = len(rec.Channels)
	if n := optInt(domain.FieldNFrames); n != nil {
		rec.NFrames = *n
	}
	return rec
}
