package audit

import (
	"time"

	"github.com/entrhq/siteaudit/pkg/analysis"
	"github.com/entrhq/siteaudit/pkg/wcag"
)

// Report is the audit of one page.
type Report struct {
	URL           string        `json:"url"`
	FinalURL      string        `json:"final_url"`
	StatusCode    int           `json:"status_code"`
	Timestamp     time.Time     `json:"timestamp"`
	Level         wcag.Level    `json:"wcag_level"`
	Score         float64       `json:"score"`
	Grade         string        `json:"grade"`
	Certificate   string        `json:"certificate"`
	PassScore     float64       `json:"pass_score"`
	Statistics    Statistics    `json:"statistics"`
	Wcag          wcag.Results  `json:"wcag"`
	NodesAnalyzed int           `json:"nodes_analyzed"`
	LoadTime      time.Duration `json:"load_time"`
	Duration      time.Duration `json:"duration"`

	Performance *analysis.PerformanceResult `json:"performance,omitempty"`
	SEO         *analysis.SEOResult         `json:"seo,omitempty"`
	Security    *analysis.SecurityResult    `json:"security,omitempty"`
	Mobile      *analysis.MobileResult      `json:"mobile,omitempty"`

	ContentWeight *analysis.ContentWeight `json:"content_weight,omitempty"`
}

// Passed reports whether the accessibility score reaches the pass score
// with no critical violation.
func (r *Report) Passed() bool {
	return r.Score >= r.PassScore && !r.Wcag.HasCritical()
}

// ViolationCount returns the number of WCAG violations.
func (r *Report) ViolationCount() int {
	return len(r.Wcag.Violations)
}

// OverallScore is the integer mean of the accessibility score and the score
// of each scored analyzer that ran. Content weight is not scored.
func (r *Report) OverallScore() int {
	total := r.Score
	n := 1.0
	if r.Performance != nil {
		total += float64(r.Performance.Score)
		n++
	}
	if r.SEO != nil {
		total += float64(r.SEO.Score)
		n++
	}
	if r.Security != nil {
		total += float64(r.Security.Score)
		n++
	}
	if r.Mobile != nil {
		total += float64(r.Mobile.Score)
		n++
	}
	return int(total / n)
}
