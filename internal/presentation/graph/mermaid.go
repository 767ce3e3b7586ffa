package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/stagegen/pkg/spec"
)

// Overlay carries run outcomes to visualize on the graph.
type Overlay struct {
	Passed []string
	Failed []string
}

// GenerateMermaid produces a Mermaid flowchart of the stages of doc.
// It applies semantic styling:
// - Sample sheet: ((Circle))
// - Synthetic stage: [[Subroutine]], with a dotted edge from its upstream stage
// - Record stage: [Rectangle], fed by the sample sheet with its filter as label
func GenerateMermaid(doc *spec.Document, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    samples((\"sample sheet\"))\n")

	for _, id := range doc.StageIDs() {
		st := doc.Stages[id]
		safeID := stageID(id)

		label := "stage " + id
		if st.Name != "" {
			label += " <br/> " + quote(st.Name)
		}

		if st.IsSynthetic() {
			fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", safeID, label)
			fmt.Fprintf(&sb, "    %s -. \"%d %s\" .-> %s\n",
				stageID(st.Synthetic.From), st.Synthetic.Count, st.Synthetic.Axis, safeID)
			continue
		}
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", safeID, label)
		fmt.Fprintf(&sb, "    samples -- \"%s\" --> %s\n", quote(st.Filter), safeID)
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light and dark themes
		sb.WriteString("    classDef passed fill:#dcfce7,stroke:#15803d,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#fee2e2,stroke:#b91c1c,stroke-width:4px,color:#000;\n")
		for _, id := range overlay.Passed {
			fmt.Fprintf(&sb, "    class %s passed;\n", stageID(id))
		}
		for _, id := range overlay.Failed {
			fmt.Fprintf(&sb, "    class %s failed;\n", stageID(id))
		}
	}

	return sb.String()
}

// stageID prefixes ids so numeric stage ids are valid Mermaid node ids.
func stageID(id string) string {
	return "stage_" + sanitizeMermaidID(id)
}

// quote escapes double quotes for Mermaid labels.
func quote(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
