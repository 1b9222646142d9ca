package batch

import (
	"errors"
	"time"
)

// Report is what a pipeline produces for one URL.
type Report interface {
	Passed() bool
	ViolationCount() int
}

// State is where an item is in its lifecycle.
type State int

const (
	StatePending State = iota
	StateAdmitted
	StateRunning
	StateCompleted
	StateSkipped
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAdmitted:
		return "admitted"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Outcome is the settled result of one item. Exactly one of Report and Err
// is meaningful: Err is nil when the pipeline produced a report.
type Outcome[R Report] struct {
	Index    int
	URL      string
	Report   R
	Err      error
	State    State
	Duration time.Duration
}

// Succeeded reports whether the pipeline returned a report.
func (o Outcome[R]) Succeeded() bool {
	return o.State == StateCompleted && o.Err == nil
}

// Summary aggregates outcomes. It depends only on the set of outcomes,
// not on their order.
type Summary struct {
	Total           int           `json:"total"`
	Succeeded       int           `json:"succeeded"`
	Passed          int           `json:"passed"`
	Failed          int           `json:"failed"`
	Errored         int           `json:"errored"`
	Skipped         int           `json:"skipped"`
	Panicked        int           `json:"panicked"`
	TotalViolations int           `json:"total_violations"`
	Duration        time.Duration `json:"duration"`
}

// Summarize folds outcomes into a Summary. Failed counts reports that did
// not pass; Errored counts items whose pipeline or acquire returned an error.
func Summarize[R Report](outcomes []Outcome[R], duration time.Duration) Summary {
	s := Summary{Total: len(outcomes), Duration: duration}
	for _, o := range outcomes {
		switch {
		case o.State == StateSkipped:
			s.Skipped++
		case o.Err != nil:
			s.Errored++
			if errors.Is(o.Err, ErrTaskPanic) {
				s.Panicked++
			}
		default:
			s.Succeeded++
			s.TotalViolations += o.Report.ViolationCount()
			if o.Report.Passed() {
				s.Passed++
			} else {
				s.Failed++
			}
		}
	}
	return s
}

// OK reports whether every item produced a passing report.
func (s Summary) OK() bool {
	return s.Total == s.Passed
}

// ItemError names a URL whose item did not produce a report.
type ItemError struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// Result is everything a Run produced.
type Result[R Report] struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Outcomes  []Outcome[R]
	Summary   Summary
}

// Reports returns the successful reports in input order.
func (r *Result[R]) Reports() []R {
	reports := make([]R, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			reports = append(reports, o.Report)
		}
	}
	return reports
}

// Errors returns one entry per item without a report, in input order.
func (r *Result[R]) Errors() []ItemError {
	var errs []ItemError
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, ItemError{URL: o.URL, Message: o.Err.Error()})
		}
	}
	return errs
}
