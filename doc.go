/*
Package stagegen generates the per-stage load tables of an image-analysis
workflow from a flat sample sheet and a declarative rule document.

Each stage of the workflow consumes a table (one row per image group, with
PathName_/FileName_/Frame_ columns per channel). The rule document says which
records a stage reads, how they are grouped and which columns each group
emits; the engine turns it into deterministic, reproducible tables.

# Concept

  - Rule document: YAML or JSON (or a directory of per-stage documents) with
    a filter expression, grouping keys and column templates per stage.
  - Records: the input sample sheet, one image per row.
  - Stages: generated concurrently, emitted in natural id order.
  - Validation: generated tables can be diffed against reference tables.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/stagegen"
		"github.com/aretw0/stagegen/pkg/adapters/csv"
	)

	func main() {
		ctx := context.Background()

		// Empty path: the embedded pcpip rule document
		eng, err := stagegen.New(ctx, "")
		if err != nil {
			log.Fatal(err)
		}

		records, err := csv.RecordFile{Path: "samplesheet.csv"}.Records(ctx)
		if err != nil {
			log.Fatal(err)
		}

		results, err := eng.Generate(ctx, records)
		if err != nil {
			log.Fatal(err)
		}

		out := csv.NewDir("out", eng.Document().Output.Filename)
		for _, res := range results {
			if res.OK() {
				_ = out.Write(ctx, res.Table)
			}
		}
	}
*/
package stagegen
