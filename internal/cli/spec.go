package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/stagegen"
	"github.com/aretw0/stagegen/internal/presentation/graph"
	"github.com/aretw0/stagegen/internal/presentation/tui"
	"github.com/aretw0/stagegen/pkg/adapters/csv"
)

// ValidateSpec loads and compiles a rule document without generating anything.
// Every problem is reported at once through the returned *domain.SpecError.
func ValidateSpec(ctx context.Context, specPath string, stdout io.Writer, logger *slog.Logger) error {
	engine, err := stagegen.New(ctx, specPath, stagegen.WithLogger(logger))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d stages valid (%s)\n",
		engine.Source(), len(engine.Stages()), strings.Join(engine.Stages(), ", "))
	return nil
}

// DescribeSpec prints every stage as markdown. With an input table, the
// generated column header of each stage is listed too.
func DescribeSpec(ctx context.Context, specPath, input string, stdout io.Writer, logger *slog.Logger) error {
	engine, err := stagegen.New(ctx, specPath, stagegen.WithLogger(logger))
	if err != nil {
		return err
	}

	headers := map[string][]string{}
	var overlay *graph.Overlay
	if input != "" {
		records, err := csv.RecordFile{Path: input}.Records(ctx)
		if err != nil {
			return fmt.Errorf("reading %s: %w", input, err)
		}
		results, err := engine.Generate(ctx, records)
		if err != nil {
			return err
		}
		overlay = &graph.Overlay{}
		for _, res := range results {
			if !res.OK() {
				overlay.Failed = append(overlay.Failed, res.Stage)
				continue
			}
			headers[res.Stage] = res.Table.Columns
			overlay.Passed = append(overlay.Passed, res.Stage)
		}
	}

	md := describeMarkdown(engine, headers)
	md += "## Stage graph\n\n```mermaid\n" + graph.GenerateMermaid(engine.Document(), overlay) + "```\n"
	return tui.WriteMarkdown(stdout, md)
}

func describeMarkdown(engine *stagegen.Engine, headers map[string][]string) string {
	doc := engine.Document()
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", engine.Source())
	if doc.Metadata.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", doc.Metadata.Description)
	}

	for _, id := range engine.Stages() {
		st := doc.Stages[id]
		fmt.Fprintf(&b, "## Stage %s", id)
		if st.Name != "" {
			fmt.Fprintf(&b, ": %s", st.Name)
		}
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "- filter: `%s`\n", st.Filter)
		fmt.Fprintf(&b, "- grouping: %s\n", strings.Join(st.Grouping, ", "))
		if st.Synthetic != nil {
			fmt.Fprintf(&b, "- synthetic: %d %s per group of stage %s\n", st.Synthetic.Count, st.Synthetic.Axis, st.Synthetic.From)
		}
		fmt.Fprintf(&b, "- output: `%s`\n\n", doc.Output.FilenameFor(id))

		for _, g := range st.Columns {
			fmt.Fprintf(&b, "1. %s\n", g.Describe())
		}
		if cols, ok := headers[id]; ok {
			fmt.Fprintf(&b, "\n%d columns: `%s`\n", len(cols), strings.Join(cols, "`, `"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
