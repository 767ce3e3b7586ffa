package domain

import (
	"fmt"
	"path"
	"strings"
)

// Arm identifies the acquisition track a sample belongs to.
type Arm string

const (
	ArmPainting  Arm = "painting"  // Primary-stain (cell painting) imaging
	ArmBarcoding Arm = "barcoding" // Sequencing-by-synthesis barcode imaging
)

// ParseArm normalizes an arm label.
// Accepts the canonical names plus the aliases "primary-stain"/"cp" and "barcode"/"sbs".
func ParseArm(s string) (Arm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "painting", "primary-stain", "cp":
		return ArmPainting, nil
	case "barcoding", "barcode", "sbs":
		return ArmBarcoding, nil
	default:
		return "", fmt.Errorf("unknown arm %q", s)
	}
}

// SampleRecord is one acquired multi-channel file-set.
// Records are immutable once loaded.
type SampleRecord struct {
	Path     string
	Arm      Arm
	Batch    string
	Plate    string
	Well     string
	Site     *int // nil for batch-level data
	Cycle    *int // nil outside the barcoding arm
	Channels []string
	NFrames  int
}

// ChannelIndex returns the zero-based position of channel in the record's own
// channel list, or -1 when the record does not carry it.
func (r SampleRecord) ChannelIndex(channel string) int {
	for i, c := range r.Channels {
		if c == channel {
			return i
		}
	}
	return -1
}

// HasChannel reports whether the record carries channel.
func (r SampleRecord) HasChannel(channel string) bool {
	return r.ChannelIndex(channel) >= 0
}

// Filename is the base name of the record's file.
func (r SampleRecord) Filename() string {
	return path.Base(toSlash(r.Path))
}

// Dir is the directory holding the record's file, without trailing slash.
func (r SampleRecord) Dir() string {
	return path.Dir(toSlash(r.Path))
}

// AcquisitionFolder is the name of the directory holding the record's file.
func (r SampleRecord) AcquisitionFolder() string {
	return path.Base(r.Dir())
}

// Field returns the value of an input field by name.
// Values are string, int or []string. The boolean is false when the field is
// unknown or absent on this record (e.g. site for batch-level data).
func (r SampleRecord) Field(name string) (any, bool) {
	switch name {
	case FieldPath:
		return r.Path, true
	case FieldArm:
		return string(r.Arm), true
	case FieldBatch:
		return r.Batch, true
	case FieldPlate:
		return r.Plate, true
	case FieldWell:
		return r.Well, true
	case FieldSite:
		if r.Site == nil {
			return nil, false
		}
		return *r.Site, true
	case FieldCycle:
		if r.Cycle == nil {
			return nil, false
		}
		return *r.Cycle, true
	case FieldChannels:
		return r.Channels, true
	case FieldNFrames:
		return r.NFrames, true
	default:
		return nil, false
	}
}

// IntPtr is a helper for populating optional integer fields.
func IntPtr(v int) *int {
	return &v
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
