package output

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/entrhq/siteaudit/pkg/audit"
)

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"status": status,
	"score":  func(f float64) string { return fmt.Sprintf("%.1f", f) },
	"round":  func(d time.Duration) time.Duration { return d.Round(time.Millisecond) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Site Audit Report</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 72rem; color: #1f2933; }
table { border-collapse: collapse; width: 100%; margin-bottom: 2rem; }
th, td { border-bottom: 1px solid #d9e2ec; padding: .5rem; text-align: left; }
.PASS { color: #0b7a3e; font-weight: bold; }
.FAIL { color: #c53030; font-weight: bold; }
.summary li { margin: .25rem 0; }
code { background: #f0f4f8; padding: 0 .25rem; }
</style>
</head>
<body>
<main>
<h1>Site Audit Report</h1>
<section class="summary">
<h2>Summary</h2>
<ul>
<li>Pages: {{.Summary.Total}}</li>
<li>Passed: {{.Summary.Passed}}</li>
<li>Failed: {{.Summary.Failed}}</li>
<li>Errors: {{.Summary.Errored}}</li>
{{- if .Summary.Skipped}}
<li>Skipped: {{.Summary.Skipped}}</li>
{{- end}}
<li>Average score: {{score .Summary.AverageScore}}</li>
<li>Total violations: {{.Summary.TotalViolations}}</li>
<li>Duration: {{round .Duration}}</li>
</ul>
</section>
{{- if .Reports}}
<section>
<h2>Results</h2>
<table>
<thead><tr><th scope="col">URL</th><th scope="col">Score</th><th scope="col">Grade</th><th scope="col">Certificate</th><th scope="col">Violations</th><th scope="col">Status</th></tr></thead>
<tbody>
{{- range .Reports}}
<tr><td><a href="{{.URL}}">{{.URL}}</a></td><td>{{score .Score}}</td><td>{{.Grade}}</td><td>{{.Certificate}}</td><td>{{.ViolationCount}}</td><td class="{{status .}}">{{status .}}</td></tr>
{{- end}}
</tbody>
</table>
{{- range .Reports}}
{{- if .Wcag.Violations}}
<h3>{{.URL}}</h3>
<ul>
{{- range .Wcag.Violations}}
<li><strong>{{.Rule}} {{.RuleName}}</strong> ({{.Severity}}): {{.Message}}{{if .Selector}} <code>{{.Selector}}</code>{{end}}</li>
{{- end}}
</ul>
{{- end}}
{{- end}}
</section>
{{- end}}
{{- if .Errors}}
<section>
<h2>Failures</h2>
<ul>
{{- range .Errors}}
<li><code>{{.URL}}</code>: {{.Message}}</li>
{{- end}}
</ul>
</section>
{{- end}}
</main>
</body>
</html>
`))

func writeHTML(w io.Writer, report *audit.BatchReport) error {
	if err := htmlReport.Execute(w, report); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}
