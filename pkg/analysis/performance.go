package analysis

import (
	"encoding/json"
	"fmt"
	"math"
)

// TimingScript is evaluated in the page after load. It returns the
// navigation timing entry, first contentful paint and resource totals as a
// JSON string.
const TimingScript = `() => {
  const nav = performance.getEntriesByType('navigation')[0] || {};
  const paint = performance.getEntriesByType('paint').find(e => e.name === 'first-contentful-paint');
  const resources = performance.getEntriesByType('resource');
  const transfer = resources.reduce((sum, r) => sum + (r.transferSize || 0), nav.transferSize || 0);
  return JSON.stringify({
    ttfb: nav.responseStart ? nav.responseStart - (nav.requestStart || 0) : 0,
    fcp: paint ? paint.startTime : 0,
    dom_content_loaded: nav.domContentLoadedEventEnd || 0,
    load: nav.loadEventEnd || 0,
    transfer_size: transfer,
    resource_count: resources.length
  });
}`

// Timing is the navigation timing of one page, in milliseconds. A zero
// value means the browser did not report the metric.
type Timing struct {
	TTFB             float64 `json:"ttfb"`
	FCP              float64 `json:"fcp"`
	DOMContentLoaded float64 `json:"dom_content_loaded"`
	Load             float64 `json:"load"`
	TransferSize     int64   `json:"transfer_size"`
	ResourceCount    int     `json:"resource_count"`
}

// ParseTiming decodes the value TimingScript returns. raw may be the JSON
// string itself or an already decoded object.
func ParseTiming(raw any) (Timing, error) {
	var t Timing
	if err := decodeScriptResult(raw, "timing", &t); err != nil {
		return Timing{}, err
	}
	return t, nil
}

// decodeScriptResult unmarshals the result of an in-page script into v.
func decodeScriptResult(raw any, what string, v any) error {
	var data []byte
	switch r := raw.(type) {
	case nil:
		return fmt.Errorf("no %s data", what)
	case string:
		data = []byte(r)
	case []byte:
		data = r
	default:
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode %s data: %w", what, err)
		}
		data = b
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", what, err)
	}
	return nil
}

// Ratings for a measured metric.
const (
	RatingGood             = "good"
	RatingNeedsImprovement = "needs-improvement"
	RatingPoor             = "poor"
)

// Metric is one rated timing value.
type Metric struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Rating string  `json:"rating"`
	Target float64 `json:"target"`
	Score  int     `json:"score"`
}

// PerformanceResult is the timing analysis of one page.
type PerformanceResult struct {
	Timing  Timing   `json:"timing"`
	Metrics []Metric `json:"metrics"`
	Score   int      `json:"score"`
}

// Metric returns the metric named name, if it was measured.
func (r *PerformanceResult) Metric(name string) (Metric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

type threshold struct {
	name       string
	good, poor float64
	value      func(Timing) float64
}

var thresholds = []threshold{
	{"ttfb", 800, 1800, func(t Timing) float64 { return t.TTFB }},
	{"fcp", 1800, 3000, func(t Timing) float64 { return t.FCP }},
	{"dom_content_loaded", 1500, 3000, func(t Timing) float64 { return t.DOMContentLoaded }},
	{"load", 2500, 4000, func(t Timing) float64 { return t.Load }},
}

// AnalyzePerformance rates each reported metric and averages the metric
// scores. With no metrics reported the score is zero.
func AnalyzePerformance(t Timing) *PerformanceResult {
	res := &PerformanceResult{Timing: t, Metrics: []Metric{}}

	total := 0
	for _, th := range thresholds {
		v := th.value(t)
		if v <= 0 {
			continue
		}
		m := Metric{Name: th.name, Value: v, Target: th.good, Rating: rate(v, th.good, th.poor), Score: metricScore(v, th.good, th.poor)}
		res.Metrics = append(res.Metrics, m)
		total += m.Score
	}
	if len(res.Metrics) > 0 {
		res.Score = total / len(res.Metrics)
	}
	return res
}

func rate(v, good, poor float64) string {
	switch {
	case v <= good:
		return RatingGood
	case v <= poor:
		return RatingNeedsImprovement
	default:
		return RatingPoor
	}
}

// metricScore is 100 up to the good threshold, falls linearly to 50 at the
// poor threshold, then to 0 at twice the poor threshold.
func metricScore(v, good, poor float64) int {
	var s float64
	switch {
	case v <= good:
		s = 100
	case v <= poor:
		s = 100 - 50*(v-good)/(poor-good)
	default:
		s = 50 - 50*(v-poor)/poor
	}
	return int(math.Max(0, math.Round(s)))
}
