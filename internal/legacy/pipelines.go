package legacy

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/spec"
)

// BasePath is the container root every predicted path starts from.
const BasePath = "/app/data/Source1/images/Batch1"

// TilesPerWell is the stitching grid size (2x2) assumed by stage 9.
const TilesPerWell = 4

// Generator produces the table of one stage.
type Generator func(records []domain.SampleRecord) (*domain.Table, error)

var generators = map[string]Generator{
	"1": pipeline1,
	"2": pipeline2,
	"3": pipeline3,
	"5": pipeline5,
	"6": pipeline6,
	"7": pipeline7,
	"9": pipeline9,
}

// Stages lists the stages with a hand-written generator.
func Stages() []string {
	ids := make([]string, 0, len(generators))
	for id := range generators {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, spec.NaturalCompare)
	return ids
}

// Generate runs the hand-written generator of stage.
func Generate(stage string, records []domain.SampleRecord) (*domain.Table, error) {
	gen, ok := generators[stage]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrStageNotFound, stage)
	}
	return gen(records)
}

// Cell painting illumination calculation: one row per painting file.
func pipeline1(records []domain.SampleRecord) (*domain.Table, error) {
	b := newBuilder("1")
	for _, r := range byArm(records, domain.ArmPainting) {
		w := newRow()
		w.set("Metadata_Plate", r.Plate)
		w.set("Metadata_Site", r.Site)
		w.set("Metadata_Well", r.Well)

		dir := fmt.Sprintf("%s/images/%s/%s/", BasePath, r.Plate, r.AcquisitionFolder())
		for _, ch := range r.Channels {
			w.set("PathName_Orig"+ch, dir)
			w.set("FileName_Orig"+ch, r.Filename())
			w.set("Frame_Orig"+ch, r.ChannelIndex(ch))
		}
		b.add(w)
	}
	return b.result()
}

// Cell painting illumination correction: raw images plus the per-plate
// illumination functions.
func pipeline2(records []domain.SampleRecord) (*domain.Table, error) {
	b := newBuilder("2")
	for _, r := range byArm(records, domain.ArmPainting) {
		w := newRow()
		w.set("Metadata_Plate", r.Plate)
		w.set("Metadata_Site", r.Site)
		w.set("Metadata_Well", r.Well)

		dir := fmt.Sprintf("%s/images/%s/%s/", BasePath, r.Plate, r.AcquisitionFolder())
		illum := fmt.Sprintf("%s/illum/%s", BasePath, r.Plate)
		for _, ch := range r.Channels {
			w.set("PathName_Orig"+ch, dir)
			w.set("FileName_Orig"+ch, r.Filename())
			w.set("Frame_Orig"+ch, r.ChannelIndex(ch))
			w.set("PathName_Illum"+ch, illum)
			w.set("FileName_Illum"+ch, fmt.Sprintf("%s_Illum%s.npy", r.Plate, ch))
		}
		b.add(w)
	}
	return b.result()
}

// Cell painting segmentation check over the QC sites.
func pipeline3(records []domain.SampleRecord) (*domain.Table, error) {
	qcSites := []int{0, 2}

	b := newBuilder("3")
	for _, r := range byArm(records, domain.ArmPainting) {
		if r.Site == nil || !slices.Contains(qcSites, *r.Site) {
			continue
		}
		site := *r.Site
		w := newRow()
		w.set("Metadata_Plate", r.Plate)
		w.set("Metadata_Site", site)
		w.set("Metadata_Well", r.Well)
		w.set("Metadata_Well_Value", r.Well)

		dir := fmt.Sprintf("%s/images_corrected/painting/%s/%s-%s-%d/", BasePath, r.Plate, r.Plate, r.Well, site)
		for _, ch := range r.Channels {
			w.set("PathName_"+ch, dir)
			w.set("FileName_"+ch, fmt.Sprintf("Plate_%s_Well_%s_Site_%d_Corr%s.tiff", r.Plate, r.Well, site, ch))
		}
		b.add(w)
	}
	return b.result()
}

// Barcoding illumination calculation: one row per barcoding file.
func pipeline5(records []domain.SampleRecord) (*domain.Table, error) {
	b := newBuilder("5")
	for _, r := range byArm(records, domain.ArmBarcoding) {
		w := newRow()
		w.set("Metadata_Plate", r.Plate)
		w.set("Metadata_Site", r.Site)
		w.set("Metadata_Cycle", r.Cycle)
		w.set("Metadata_Well", r.Well)

		dir := fmt.Sprintf("%s/images/%s/20X_c%s_SBS-%s/", BasePath, r.Plate, format(r.Cycle), format(r.Cycle))
		for _, ch := range r.Channels {
			w.set("PathName_Orig"+ch, dir)
			w.set("FileName_Orig"+ch, r.Filename())
			w.set("Frame_Orig"+ch, r.ChannelIndex(ch))
		}
		b.add(w)
	}
	return b.result()
}

// Barcoding illumination correction: every cycle of a site pivoted into one row.
func pipeline6(records []domain.SampleRecord) (*domain.Table, error) {
	b := newBuilder("6")
	for _, g := range wellSiteGroups(byArm(records, domain.ArmBarcoding)) {
		first := g.members[0]
		w := newRow()
		w.set("Metadata_Plate", first.Plate)
		w.set("Metadata_Site", g.site)
		w.set("Metadata_Well", g.well)
		w.set("Metadata_Well_Value", g.well)

		illum := fmt.Sprintf("%s/illum/%s", BasePath, first.Plate)
		for _, cycle := range distinctCycles(g.members) {
			cycleRow := firstInCycle(g.members, cycle)
			dir := fmt.Sprintf("%s/images/%s/20X_c%d_SBS-%d/", BasePath, first.Plate, cycle, cycle)
			for _, ch := range first.Channels {
				orig := fmt.Sprintf("Cycle%02d_Orig%s", cycle, ch)
				w.set("PathName_"+orig, dir)
				w.set("FileName_"+orig, cycleRow.Filename())
				w.set("Frame_"+orig, first.ChannelIndex(ch))

				il := fmt.Sprintf("Cycle%02d_Illum%s", cycle, ch)
				w.set("PathName_"+il, illum)
				w.set("FileName_"+il, fmt.Sprintf("%s_Cycle%d_Illum%s.npy", first.Plate, cycle, ch))
				w.set("Frame_"+il, 0)
			}
		}
		b.add(w)
	}
	return b.result()
}

// Barcode preprocessing: aligned images of every cycle; DNA only from cycle 1.
func pipeline7(records []domain.SampleRecord) (*domain.Table, error) {
	b := newBuilder("7")
	for _, g := range wellSiteGroups(byArm(records, domain.ArmBarcoding)) {
		first := g.members[0]
		plate := first.Plate
		w := newRow()
		w.set("Metadata_Plate", plate)
		w.set("Metadata_Site", g.site)
		w.set("Metadata_Well", g.well)
		w.set("Metadata_Well_Value", g.well)

		dir := fmt.Sprintf("%s/images_aligned/barcoding/%s/%s-%s-%d/", BasePath, plate, plate, g.well, g.site)
		for _, cycle := range distinctCycles(g.members) {
			for _, ch := range first.Channels {
				if ch == "DNA" && cycle != 1 {
					continue
				}
				col := fmt.Sprintf("Cycle%02d_%s", cycle, ch)
				w.set("PathName_"+col, dir)
				w.set("FileName_"+col, fmt.Sprintf("Plate_%s_Well_%s_Site_%d_%s.tiff", plate, g.well, g.site, col))
			}
		}
		b.add(w)
	}
	return b.result()
}

// Combined analysis over the stitched and cropped tiles of each well.
func pipeline9(records []domain.SampleRecord) (*domain.Table, error) {
	barcodes := byArm(records, domain.ArmBarcoding)
	b := newBuilder("9")
	if len(barcodes) == 0 {
		return b.result()
	}

	plate := barcodes[0].Plate
	bases := []string{"A", "C", "T", "G"}
	painting := []string{"DNA", "CHN2", "Phalloidin"}

	var wells []string
	for _, r := range barcodes {
		if !slices.Contains(wells, r.Well) {
			wells = append(wells, r.Well)
		}
	}

	for _, well := range wells {
		root := fmt.Sprintf("%s/images_corrected_cropped", BasePath)
		for tile := 1; tile <= TilesPerWell; tile++ {
			w := newRow()
			w.set("Metadata_Plate", plate)
			w.set("Metadata_Site", tile)
			w.set("Metadata_Well", well)
			w.set("Metadata_Well_Value", well)

			for cycle := 1; cycle <= 3; cycle++ {
				for _, ch := range bases {
					col := fmt.Sprintf("Cycle%02d_%s", cycle, ch)
					w.set("PathName_"+col, fmt.Sprintf("%s/barcoding/%s/%s-%s/%s/", root, plate, plate, well, col))
					w.set("FileName_"+col, fmt.Sprintf("%s_Site_%d.tiff", col, tile))
				}
			}
			w.set("PathName_Cycle01_DNA", fmt.Sprintf("%s/barcoding/%s/%s-%s/Cycle01_DNA/", root, plate, plate, well))
			w.set("FileName_Cycle01_DNA", fmt.Sprintf("Cycle01_DNA_Site_%d.tiff", tile))

			for _, ch := range painting {
				w.set("PathName_Corr"+ch, fmt.Sprintf("%s/painting/%s/%s-%s/Corr%s/", root, plate, plate, well, ch))
				w.set("FileName_Corr"+ch, fmt.Sprintf("Corr%s_Site_%d.tiff", ch, tile))
			}
			b.add(w)
		}
	}
	return b.result()
}

type wellSite struct {
	well    string
	site    int
	members []domain.SampleRecord
}

// wellSiteGroups groups records by (well, site), sorted by well then site.
// Records without a site or cycle are skipped. Members keep input order.
func wellSiteGroups(records []domain.SampleRecord) []*wellSite {
	index := make(map[string]*wellSite)
	var groups []*wellSite
	for _, r := range records {
		if r.Site == nil || r.Cycle == nil {
			continue
		}
		key := fmt.Sprintf("%s\x00%d", r.Well, *r.Site)
		g, ok := index[key]
		if !ok {
			g = &wellSite{well: r.Well, site: *r.Site}
			index[key] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, r)
	}
	slices.SortFunc(groups, func(a, b *wellSite) int {
		return cmp.Or(cmp.Compare(a.well, b.well), cmp.Compare(a.site, b.site))
	})
	return groups
}

func distinctCycles(records []domain.SampleRecord) []int {
	var out []int
	for _, r := range records {
		if !slices.Contains(out, *r.Cycle) {
			out = append(out, *r.Cycle)
		}
	}
	slices.Sort(out)
	return out
}

func firstInCycle(records []domain.SampleRecord, cycle int) domain.SampleRecord {
	for _, r := range records {
		if *r.Cycle == cycle {
			return r
		}
	}
	return domain.SampleRecord{}
}
