package domain

// Input table field names. They double as filter field references and
// template placeholders.
const (
	FieldPath     = "path"
	FieldArm      = "arm"
	FieldBatch    = "batch"
	FieldPlate    = "plate"
	FieldWell     = "well"
	FieldSite     = "site"
	FieldCycle    = "cycle"
	FieldChannels = "channels"
	FieldNFrames  = "n_frames"
)

// KeyTile is the synthetic grouping axis enumerated for not-yet-produced tiles.
const KeyTile = "tile"

// Column prefixes understood by the downstream batch processor.
const (
	PrefixMetadata = "Metadata_"
	PrefixPathName = "PathName_"
	PrefixFileName = "FileName_"
	PrefixFrame    = "Frame_"
)

// InputFields lists the input table columns in their canonical order.
var InputFields = []string{
	FieldPath, FieldArm, FieldBatch, FieldPlate, FieldWell,
	FieldChannels, FieldSite, FieldCycle, FieldNFrames,
}

// GroupingKeys is the closed set of keys a stage may group by.
var GroupingKeys = []string{FieldPlate, FieldWell, FieldSite, FieldCycle, KeyTile}

// IsGroupingKey reports whether key may appear in a stage grouping.
func IsGroupingKey(key string) bool {
	for _, k := range GroupingKeys {
		if k == key {
			return true
		}
	}
	return false
}
