// Package schema describes the typed columns of the narrow input table.
//
// Every cell of the input table arrives as text. A Schema maps column names to
// a Type that knows how to parse that text into a typed value (string, int or
// list of strings) and reports failures as ValidationError values collected
// into an AggregateError.
//
// Basic usage:
//
//	s := schema.Input()
//	if err := s.ValidateHeader(header); err != nil {
//	    // Missing required columns
//	}
//	rec, err := s.Record(header, cells)
//
// Custom types can be registered for domain-specific parsing:
//
//	arm := schema.Custom("arm", schema.KindString, func(raw string) (any, error) {
//	    return domain.ParseArm(raw)
//	})
//
// The Kind of each type is also what the filter compiler uses to type-check
// literals against field references.
package schema
