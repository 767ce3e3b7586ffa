package testutils

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/stagegen/pkg/domain"
)

// ImagesRoot is the host-relative plate directory of Samplesheet.
const ImagesRoot = "pcpip/data/Source1/images/Batch1/images/Plate1"

// Samplesheet mirrors the trimmed test plate: 3 wells, 4 sites, 3 barcoding cycles.
func Samplesheet() []domain.SampleRecord {
	var out []domain.SampleRecord
	wells := []string{"A1", "A2", "B1"}
	for _, well := range wells {
		for site := range 4 {
			out = append(out, domain.SampleRecord{
				Path:     fmt.Sprintf("%s/20X_CP_Plate1_20240319_122800_179/Well%s_PointA1_%04d_ChannelPhalloAF750_ZO1-AF488_DAPI_Seq%04d.ome.tiff", ImagesRoot, well, site, site),
				Arm:      domain.ArmPainting,
				Batch:    "Batch1",
				Plate:    "Plate1",
				Well:     well,
				Site:     domain.IntPtr(site),
				Channels: []string{"Phalloidin", "CHN2", "DNA"},
				NFrames:  3,
			})
		}
	}
	for cycle := 1; cycle <= 3; cycle++ {
		for _, well := range wells {
			for site := range 4 {
				out = append(out, domain.SampleRecord{
					Path:     fmt.Sprintf("%s/20X_c%d_SBS-%d/Well%s_PointA1_%04d_ChannelC_A_T_G_DAPI_Seq%04d.ome.tiff", ImagesRoot, cycle, cycle, well, site, site),
					Arm:      domain.ArmBarcoding,
					Batch:    "Batch1",
					Plate:    "Plate1",
					Well:     well,
					Site:     domain.IntPtr(site),
					Cycle:    domain.IntPtr(cycle),
					Channels: []string{"DNA", "A", "C", "T", "G"},
					NFrames:  5,
				})
			}
		}
	}
	return out
}

// SamplesheetCSV renders Samplesheet as an input table.
func SamplesheetCSV() string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"path", "arm", "batch", "plate", "well", "channels", "site", "cycle", "n_frames"})
	for _, r := range Samplesheet() {
		_ = w.Write([]string{
			r.Path, string(r.Arm), r.Batch, r.Plate, r.Well,
			strings.Join(r.Channels, ","), optional(r.Site), optional(r.Cycle), strconv.Itoa(r.NFrames),
		})
	}
	w.Flush()
	return b.String()
}

func optional(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
