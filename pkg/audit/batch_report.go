package audit

import (
	"time"

	"github.com/entrhq/siteaudit/pkg/batch"
)

// BatchSummary aggregates a batch for output.
type BatchSummary struct {
	Total           int     `json:"total"`
	Passed          int     `json:"passed"`
	Failed          int     `json:"failed"`
	Errored         int     `json:"errored"`
	Skipped         int     `json:"skipped"`
	AverageScore    float64 `json:"average_score"`
	TotalViolations int     `json:"total_violations"`
}

// BatchReport is the output document of one batch run.
type BatchReport struct {
	RunID     string            `json:"run_id"`
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
	Summary   BatchSummary      `json:"summary"`
	Reports   []*Report         `json:"reports"`
	Errors    []batch.ItemError `json:"errors"`
}

// NewBatchReport builds the output document from a scheduler result.
// Reports and errors keep input order.
func NewBatchReport(res *batch.Result[*Report]) *BatchReport {
	reports := res.Reports()
	errs := res.Errors()
	if errs == nil {
		errs = []batch.ItemError{}
	}

	br := &BatchReport{
		RunID:     res.RunID,
		StartedAt: res.StartedAt,
		Duration:  res.Duration,
		Reports:   reports,
		Errors:    errs,
		Summary: BatchSummary{
			Total:           res.Summary.Total,
			Passed:          res.Summary.Passed,
			Failed:          res.Summary.Failed,
			Errored:         res.Summary.Errored,
			Skipped:         res.Summary.Skipped,
			TotalViolations: res.Summary.TotalViolations,
		},
	}

	if len(reports) > 0 {
		var total float64
		for _, r := range reports {
			total += r.Score
		}
		br.Summary.AverageScore = total / float64(len(reports))
	}
	return br
}

// OK reports whether every URL produced a passing report.
func (b *BatchReport) OK() bool {
	return b.Summary.Total == b.Summary.Passed
}
