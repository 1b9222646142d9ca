package output

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/siteaudit/pkg/audit"
	"github.com/olekukonko/tablewriter"
)

type tableStyles struct {
	title lipgloss.Style
	label lipgloss.Style
	pass  lipgloss.Style
	fail  lipgloss.Style
	muted lipgloss.Style
}

// newTableStyles binds styles to w so color is only emitted to terminals.
func newTableStyles(w io.Writer) tableStyles {
	r := lipgloss.NewRenderer(w)
	return tableStyles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		label: r.NewStyle().Bold(true),
		pass:  r.NewStyle().Foreground(lipgloss.Color("42")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("203")),
		muted: r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

func writeTable(w io.Writer, report *audit.BatchReport) error {
	st := newTableStyles(w)

	if len(report.Reports) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header("URL", "Score", "Grade", "Certificate", "Violations", "Status")
		for _, r := range report.Reports {
			if err := table.Append(
				r.URL,
				fmt.Sprintf("%.1f", r.Score),
				r.Grade,
				r.Certificate,
				strconv.Itoa(r.ViolationCount()),
				status(r),
			); err != nil {
				return fmt.Errorf("failed to add table row: %w", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render results table: %w", err)
		}
	}

	if len(report.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.fail.Render(fmt.Sprintf("%d URL(s) could not be audited:", len(report.Errors))))
		table := tablewriter.NewWriter(w)
		table.Header("URL", "Error")
		for _, e := range report.Errors {
			if err := table.Append(e.URL, e.Message); err != nil {
				return fmt.Errorf("failed to add table row: %w", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render error table: %w", err)
		}
	}

	s := report.Summary
	fmt.Fprintln(w)
	fmt.Fprintln(w, st.title.Render("Summary"))
	fmt.Fprintf(w, "%s %d\n", st.label.Render("Pages:       "), s.Total)
	fmt.Fprintf(w, "%s %s\n", st.label.Render("Passed:      "), st.pass.Render(strconv.Itoa(s.Passed)))
	fmt.Fprintf(w, "%s %s\n", st.label.Render("Failed:      "), st.fail.Render(strconv.Itoa(s.Failed)))
	if s.Errored > 0 {
		fmt.Fprintf(w, "%s %s\n", st.label.Render("Errors:      "), st.fail.Render(strconv.Itoa(s.Errored)))
	}
	if s.Skipped > 0 {
		fmt.Fprintf(w, "%s %d\n", st.label.Render("Skipped:     "), s.Skipped)
	}
	fmt.Fprintf(w, "%s %.1f\n", st.label.Render("Avg score:   "), s.AverageScore)
	fmt.Fprintf(w, "%s %d\n", st.label.Render("Violations:  "), s.TotalViolations)
	fmt.Fprintf(w, "%s %s\n", st.label.Render("Duration:    "), report.Duration.Round(time.Millisecond))
	if report.RunID != "" {
		fmt.Fprintln(w, st.muted.Render("Run "+report.RunID))
	}
	return nil
}
