package tests

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/ports"
	"github.com/aretw0/stagegen/pkg/spec"
)

// SpecLoaderContractTest verifies that a loader complies with ports.SpecLoader.
// wantStages lists the stage ids the loaded document must declare.
func SpecLoaderContractTest(t *testing.T, loader ports.SpecLoader, wantStages []string) {
	t.Helper()
	ctx := context.Background()

	// 1. Load yields a valid document
	t.Run("Load_Valid", func(t *testing.T) {
		doc, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading spec: %v", err)
		}
		if err := spec.Validate(doc); err != nil {
			t.Fatalf("loaded document is invalid: %v", err)
		}

		got := doc.StageIDs()
		if len(got) != len(wantStages) {
			t.Fatalf("expected stages %v, got %v", wantStages, got)
		}
		for i := range got {
			if got[i] != wantStages[i] {
				t.Errorf("stage %d: expected %q, got %q", i, wantStages[i], got[i])
			}
		}
	})

	// 2. Stage ids are filled in
	t.Run("Load_StageIDs", func(t *testing.T) {
		doc, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading spec: %v", err)
		}
		for id, st := range doc.Stages {
			if st.ID != id {
				t.Errorf("stage %q has ID %q", id, st.ID)
			}
		}
	})

	// 3. Source is descriptive
	t.Run("Source", func(t *testing.T) {
		if loader.Source() == "" {
			t.Error("expected a non-empty source description")
		}
	})
}

// TableStoreContractTest verifies that tables written to sink are served back
// by refs, and that a missing reference wraps fs.ErrNotExist.
func TableStoreContractTest(t *testing.T, sink ports.TableSink, refs ports.ReferenceSource) {
	t.Helper()
	ctx := context.Background()

	table := domain.NewTable("7", []string{"Metadata_Plate", "Metadata_Well", "PathName_Cycle01_A", "FileName_Cycle01_A"})
	table.Rows = [][]string{
		{"Plate1", "A1", "/app/data/images_aligned/Plate1-A1-0", "Cycle01_A.tiff"},
		{"Plate1", "A2", "/app/data/images_aligned/Plate1-A2-0", "Cycle01_A.tiff"},
	}

	// 1. Round trip
	t.Run("Write_Reference", func(t *testing.T) {
		if err := sink.Write(ctx, table); err != nil {
			t.Fatalf("unexpected error writing table: %v", err)
		}
		got, err := refs.Reference(ctx, "7")
		if err != nil {
			t.Fatalf("unexpected error reading reference: %v", err)
		}
		if len(got.Columns) != len(table.Columns) {
			t.Fatalf("expected columns %v, got %v", table.Columns, got.Columns)
		}
		for i, c := range table.Columns {
			if got.Columns[i] != c {
				t.Errorf("column %d: expected %q, got %q", i, c, got.Columns[i])
			}
		}
		if diff := domain.DiffTables(got, table, 1); !diff.IsEmpty() {
			t.Errorf("round trip changed the table: %+v", diff)
		}
	})

	// 2. Missing reference
	t.Run("Reference_NotFound", func(t *testing.T) {
		_, err := refs.Reference(ctx, "non-existent-stage")
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected fs.ErrNotExist, got %v", err)
		}
	})
}
