package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/entrhq/siteaudit/pkg/audit"
)

func writeMarkdown(w io.Writer, report *audit.BatchReport) error {
	var md strings.Builder
	s := report.Summary

	md.WriteString("# Site Audit Report\n\n")
	if report.RunID != "" {
		md.WriteString(fmt.Sprintf("**Run:** `%s`\n\n", report.RunID))
	}
	if !report.StartedAt.IsZero() {
		md.WriteString(fmt.Sprintf("**Started:** %s\n\n", report.StartedAt.Format(time.RFC3339)))
	}
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", report.Duration.Round(time.Millisecond)))

	md.WriteString("## Summary\n\n")
	md.WriteString(fmt.Sprintf("- **Pages:** %d\n", s.Total))
	md.WriteString(fmt.Sprintf("- **Passed:** %d\n", s.Passed))
	md.WriteString(fmt.Sprintf("- **Failed:** %d\n", s.Failed))
	md.WriteString(fmt.Sprintf("- **Errors:** %d\n", s.Errored))
	if s.Skipped > 0 {
		md.WriteString(fmt.Sprintf("- **Skipped:** %d\n", s.Skipped))
	}
	md.WriteString(fmt.Sprintf("- **Average score:** %.1f\n", s.AverageScore))
	md.WriteString(fmt.Sprintf("- **Total violations:** %d\n\n", s.TotalViolations))

	if len(report.Reports) > 0 {
		md.WriteString("## Results\n\n")
		md.WriteString("| URL | Score | Grade | Certificate | Violations | Status |\n")
		md.WriteString("|-----|------:|:-----:|-------------|-----------:|--------|\n")
		for _, r := range report.Reports {
			icon := "✅"
			if !r.Passed() {
				icon = "❌"
			}
			md.WriteString(fmt.Sprintf("| %s | %.1f | %s | %s | %d | %s %s |\n",
				escapeCell(r.URL), r.Score, r.Grade, r.Certificate, r.ViolationCount(), icon, status(r)))
		}
		md.WriteString("\n")

		for _, r := range report.Reports {
			if r.ViolationCount() == 0 {
				continue
			}
			md.WriteString(fmt.Sprintf("### %s\n\n", r.URL))
			for _, v := range r.Wcag.Violations {
				md.WriteString(fmt.Sprintf("- **%s %s** (%s): %s", v.Rule, v.RuleName, v.Severity, v.Message))
				if v.Selector != "" {
					md.WriteString(fmt.Sprintf(" `%s`", v.Selector))
				}
				md.WriteString("\n")
			}
			md.WriteString("\n")
		}
	}

	if len(report.Errors) > 0 {
		md.WriteString("## Failures\n\n")
		for _, e := range report.Errors {
			md.WriteString(fmt.Sprintf("- `%s`: %s\n", e.URL, e.Message))
		}
		md.WriteString("\n")
	}

	if _, err := io.WriteString(w, md.String()); err != nil {
		return fmt.Errorf("failed to write markdown report: %w", err)
	}
	return nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
