package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTiming(t *testing.T) {
	want := Timing{TTFB: 120.5, FCP: 900, DOMContentLoaded: 1100, Load: 1800, TransferSize: 52000, ResourceCount: 14}
	raw := `{"ttfb":120.5,"fcp":900,"dom_content_loaded":1100,"load":1800,"transfer_size":52000,"resource_count":14}`

	got, err := ParseTiming(raw)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = ParseTiming([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = ParseTiming(map[string]any{"ttfb": 120.5, "fcp": 900, "dom_content_loaded": 1100, "load": 1800, "transfer_size": 52000, "resource_count": 14})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseTimingErrors(t *testing.T) {
	_, err := ParseTiming(nil)
	assert.Error(t, err)

	_, err = ParseTiming("not json")
	assert.ErrorContains(t, err, "failed to parse timing data")
}

func TestAnalyzePerformanceRatings(t *testing.T) {
	res := AnalyzePerformance(Timing{TTFB: 500, FCP: 2400, DOMContentLoaded: 6000, Load: 2500})

	tests := []struct {
		name   string
		rating string
		score  int
	}{
		{"ttfb", RatingGood, 100},
		{"fcp", RatingNeedsImprovement, 75},
		{"dom_content_loaded", RatingPoor, 0},
		{"load", RatingGood, 100},
	}
	for _, tt := range tests {
		m, ok := res.Metric(tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.rating, m.Rating, tt.name)
		assert.Equal(t, tt.score, m.Score, tt.name)
	}
	assert.Equal(t, (100+75+0+100)/4, res.Score)
}

func TestAnalyzePerformanceMissingMetrics(t *testing.T) {
	res := AnalyzePerformance(Timing{TTFB: 1800})
	require.Len(t, res.Metrics, 1)
	assert.Equal(t, RatingNeedsImprovement, res.Metrics[0].Rating)
	assert.Equal(t, 50, res.Score)

	_, ok := res.Metric("fcp")
	assert.False(t, ok)

	empty := AnalyzePerformance(Timing{})
	assert.Empty(t, empty.Metrics)
	assert.Equal(t, 0, empty.Score)
}
