package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/stagegen/internal/defaults"
	"github.com/aretw0/stagegen/internal/presentation/graph"
	"github.com/aretw0/stagegen/pkg/spec"
)

func TestGenerateMermaid(t *testing.T) {
	doc, err := defaults.Document()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		doc      *spec.Document
		overlay  *graph.Overlay
		contains []string
	}{
		{
			name: "Record Stages",
			doc:  doc,
			contains: []string{
				"samples((\"sample sheet\"))",
				"stage_1[\"stage 1 <br/> Cell painting illumination calculation\"]",
				"samples -- \"arm == 'painting'\" --> stage_1",
			},
		},
		{
			name: "Synthetic Stage",
			doc:  doc,
			contains: []string{
				"stage_9[[\"stage 9",
				"stage_7 -. \"4 tile\" .-> stage_9",
			},
		},
		{
			name: "ID Sanitization",
			doc: &spec.Document{Stages: map[string]*spec.Stage{
				"qc-1.b": {Filter: "arm == \"painting\""},
			}},
			contains: []string{
				"stage_qc_1_b[\"stage qc-1.b\"]",
				"-- \"arm == 'painting'\" -->",
			},
		},
		{
			name:    "Overlay",
			doc:     doc,
			overlay: &graph.Overlay{Passed: []string{"1"}, Failed: []string{"9"}},
			contains: []string{
				"classDef passed",
				"class stage_1 passed;",
				"class stage_9 failed;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.doc, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, got)
				}
			}
		})
	}
}
