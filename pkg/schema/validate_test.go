package schema

import (
	"errors"
	"testing"

	"github.com/aretw0/stagegen/pkg/domain"
)

var header = []string{"path", "arm", "batch", "plate", "well", "channels", "site", "cycle", "n_frames"}

func TestValidateHeader_MissingColumn(t *testing.T) {
	err := Input().ValidateHeader([]string{"path", "arm", "plate", "well", "channels"})
	if err == nil {
		t.Fatal("ValidateHeader() should fail without batch")
	}

	errs := ValidationErrors(err)
	if len(errs) != 1 {
		t.Fatalf("ValidateHeader() = %d errors, want 1", len(errs))
	}

	var vErr *ValidationError
	if !errors.As(errs[0], &vErr) {
		t.Fatalf("error should be *ValidationError, got %T", errs[0])
	}
	if vErr.Key != "batch" {
		t.Errorf("error Key = %q, want batch", vErr.Key)
	}
}

func TestValidateHeader_OptionalColumnsMayBeOmitted(t *testing.T) {
	err := Input().ValidateHeader([]string{"path", "arm", "batch", "plate", "well", "channels"})
	if err != nil {
		t.Errorf("ValidateHeader() error = %v, want nil", err)
	}
}

func TestRecord_Barcoding(t *testing.T) {
	cells := []string{"data/P1/c1/a.tiff", "barcode", "Batch1", "Plate1", "A1", "DNA,A,C,T,G", "3", "1", ""}

	rec, err := Input().Record(header, cells, 1)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if rec.Arm != domain.ArmBarcoding {
		t.Errorf("Arm = %q, want barcoding", rec.Arm)
	}
	if rec.Site == nil || *rec.Site != 3 {
		t.Errorf("Site = %v, want 3", rec.Site)
	}
	if rec.Cycle == nil || *rec.Cycle != 1 {
		t.Errorf("Cycle = %v, want 1", rec.Cycle)
	}
	if rec.NFrames != 5 {
		t.Errorf("NFrames = %d, want channel count 5", rec.NFrames)
	}
}

func TestRecord_PaintingWithoutCycle(t *testing.T) {
	cells := []string{"data/P1/cp/a.tiff", "painting", "Batch1", "Plate1", "B2", "DNA,CHN2,Phalloidin", "0", "", "3"}

	rec, err := Input().Record(header, cells, 2)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if rec.Cycle != nil {
		t.Errorf("Cycle = %v, want absent", *rec.Cycle)
	}
	if rec.Site == nil || *rec.Site != 0 {
		t.Errorf("Site = %v, want 0", rec.Site)
	}
}

func TestRecord_CollectsAllErrors(t *testing.T) {
	cells := []string{"", "confocal", "Batch1", "Plate1", "A1", "DNA", "x", "", ""}

	_, err := Input().Record(header, cells, 7)
	if err == nil {
		t.Fatal("Record() should fail")
	}

	errs := ValidationErrors(err)
	if len(errs) != 3 {
		t.Fatalf("Record() = %d errors, want 3 (path, arm, site): %v", len(errs), err)
	}
	var vErr *ValidationError
	if errors.As(errs[0], &vErr) && vErr.Row != 7 {
		t.Errorf("error Row = %d, want 7", vErr.Row)
	}
}
