package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aretw0/stagegen"
	"github.com/aretw0/stagegen/internal/presentation/tui"
	"github.com/aretw0/stagegen/pkg/domain"
)

// StageSummary is one generated stage in the run report.
type StageSummary struct {
	Stage    string        `json:"stage"`
	Name     string        `json:"name,omitempty"`
	Rows     int           `json:"rows"`
	Columns  int           `json:"columns"`
	Duration time.Duration `json:"duration_ns"`
	File     string        `json:"file,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// OK reports whether the stage generated.
func (s StageSummary) OK() bool { return s.Error == "" }

// RunReport describes a generate run.
type RunReport struct {
	Source     string                  `json:"source"`
	Records    int                     `json:"records"`
	Wells      string                  `json:"wells,omitempty"`
	Stages     []StageSummary          `json:"stages"`
	Validation []stagegen.Report       `json:"validation,omitempty"`
	Summary    map[stagegen.Status]int `json:"validation_summary,omitempty"`
}

func summarize(res domain.StageResult, file string) StageSummary {
	s := StageSummary{Stage: res.Stage, Name: res.Name, Duration: res.Duration}
	if res.Err != nil {
		s.Error = res.Err.Error()
		return s
	}
	s.Rows = res.Table.Len()
	s.Columns = len(res.Table.Columns)
	s.File = file
	return s
}

// Render writes the report in the requested format.
func Render(w io.Writer, r *RunReport, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatMarkdown:
		return tui.WriteMarkdown(w, Markdown(r))
	default:
		_, err := io.WriteString(w, Text(r, tui.NewStyler(w)))
		return err
	}
}

// Text renders the report as aligned lines.
func Text(r *RunReport, s tui.Styler) string {
	var b strings.Builder
	fmt.Fprintf(&b, "rules: %s, records: %d", r.Source, r.Records)
	if r.Wells != "" {
		fmt.Fprintf(&b, ", wells: %s", r.Wells)
	}
	b.WriteString("\n")

	for _, st := range r.Stages {
		if !st.OK() {
			fmt.Fprintf(&b, "  stage %-4s %s %s\n", st.Stage, s.Fail("FAILED"), st.Error)
			continue
		}
		fmt.Fprintf(&b, "  stage %-4s %s %4d rows %3d columns %s\n",
			st.Stage, s.Pass("ok"), st.Rows, st.Columns, s.Faint(st.File))
	}

	if len(r.Validation) == 0 {
		return b.String()
	}
	b.WriteString("validation:\n")
	for _, rep := range r.Validation {
		fmt.Fprintf(&b, "  stage %-4s %s", rep.Stage, statusWord(s, rep.Status))
		switch {
		case rep.Error != "":
			fmt.Fprintf(&b, " %s", rep.Error)
		case rep.Diff != nil && !rep.Passed():
			fmt.Fprintf(&b, " %s", diffLine(rep.Diff))
		}
		b.WriteString("\n")
		if rep.Diff != nil {
			for _, m := range rep.Diff.Mismatches {
				fmt.Fprintf(&b, "      row %d %s: got %q want %q\n", m.Row, m.Column, m.Generated, m.Reference)
			}
		}
	}
	return b.String()
}

func statusWord(s tui.Styler, st stagegen.Status) string {
	switch st {
	case stagegen.StatusPass:
		return s.Pass(string(st))
	case stagegen.StatusFail, stagegen.StatusError:
		return s.Fail(string(st))
	default:
		return s.Warn(string(st))
	}
}

func diffLine(d *domain.TableDiff) string {
	var parts []string
	if len(d.MissingColumns) > 0 {
		parts = append(parts, "missing columns "+strings.Join(d.MissingColumns, ","))
	}
	if len(d.ExtraColumns) > 0 {
		parts = append(parts, "extra columns "+strings.Join(d.ExtraColumns, ","))
	}
	if d.GeneratedRows != d.ReferenceRows {
		parts = append(parts, fmt.Sprintf("rows %d vs %d", d.GeneratedRows, d.ReferenceRows))
	}
	if d.TotalMismatches > 0 {
		parts = append(parts, fmt.Sprintf("%d cell mismatches", d.TotalMismatches))
	}
	return strings.Join(parts, "; ")
}

// Markdown renders the report as markdown tables.
func Markdown(r *RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Generation report\n\nRules: `%s`, records: %d\n\n", r.Source, r.Records)
	b.WriteString("| Stage | Name | Rows | Columns | Result |\n|---|---|---:|---:|---|\n")
	for _, st := range r.Stages {
		result := "ok"
		if !st.OK() {
			result = "**failed**: " + escapeCell(st.Error)
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %s |\n", st.Stage, escapeCell(st.Name), st.Rows, st.Columns, result)
	}

	if len(r.Validation) > 0 {
		b.WriteString("\n## Validation\n\n| Stage | Status | Details |\n|---|---|---|\n")
		for _, rep := range r.Validation {
			details := rep.Error
			if details == "" && rep.Diff != nil && !rep.Passed() {
				details = diffLine(rep.Diff)
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", rep.Stage, rep.Status, escapeCell(details))
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
