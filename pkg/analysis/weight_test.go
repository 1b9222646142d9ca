package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResources(t *testing.T) {
	raw := `[{"name":"https://example.com/app.js","type":"script","transfer_size":1200,"decoded_size":4000},
		{"name":"https://example.com/logo.png","type":"img","transfer_size":900,"decoded_size":900}]`

	rs, err := ParseResources(raw)
	require.NoError(t, err)
	assert.Equal(t, []Resource{
		{URL: "https://example.com/app.js", Initiator: "script", TransferSize: 1200, DecodedSize: 4000},
		{URL: "https://example.com/logo.png", Initiator: "img", TransferSize: 900, DecodedSize: 900},
	}, rs)

	_, err = ParseResources(nil)
	assert.ErrorContains(t, err, "no resource data")
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		url       string
		initiator string
		want      string
	}{
		{"https://example.com/site.css", "link", CategoryCSS},
		{"https://fonts.example.com/css2?family=Inter", "css", CategoryCSS},
		{"https://example.com/app.js?v=3", "script", CategoryJS},
		{"https://cdn.example.com/chunk", "script", CategoryJS},
		{"https://example.com/frame.html", "iframe", CategoryHTML},
		{"https://example.com/inter.woff2", "css", CategoryFont},
		{"https://example.com/bg.webp", "css", CategoryImage},
		{"https://example.com/inter.woff2", "link", CategoryFont},
		{"https://example.com/hero.JPG", "img", CategoryImage},
		{"https://example.com/pixel", "img", CategoryImage},
		{"https://example.com/intro.mp4", "video", CategoryMedia},
		{"https://example.com/api/items", "fetch", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.url+"/"+tt.initiator, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.url, tt.initiator))
		})
	}
}

func TestAnalyzeContentWeight(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("a", 100) + ".png"
	w := AnalyzeContentWeight([]Resource{
		{URL: "https://example.com/app.js", Initiator: "script", TransferSize: 30_000, DecodedSize: 100_000},
		{URL: "https://example.com/vendor.js", Initiator: "script", TransferSize: 60_000, DecodedSize: 200_000},
		{URL: "https://example.com/site.css", Initiator: "link", TransferSize: 5_000, DecodedSize: 20_000},
		{URL: long, Initiator: "img", TransferSize: 50_000, DecodedSize: 50_000},
	})

	assert.Equal(t, 4, w.ResourceCount)
	assert.Equal(t, int64(370_000), w.TotalBytes)
	assert.Equal(t, int64(145_000), w.TransferBytes)
	assert.InDelta(t, 145.0/370.0, w.CompressionRatio(), 1e-9)
	assert.False(t, w.IsHeavy())
	assert.Empty(t, w.Recommendations)

	js := w.Category(CategoryJS)
	assert.Equal(t, 2, js.Count)
	assert.Equal(t, int64(300_000), js.Bytes)
	assert.Equal(t, int64(200_000), js.LargestBytes)
	assert.Equal(t, "https://example.com/vendor.js", js.LargestURL)

	img := w.Category(CategoryImage)
	assert.Len(t, img.LargestURL, 80)
	assert.True(t, strings.HasSuffix(img.LargestURL, "..."))

	assert.Equal(t, []string{CategoryJS, CategoryImage, CategoryCSS}, w.Categories())
	assert.Zero(t, w.Category(CategoryMedia).Count)
}

func TestAnalyzeContentWeightRecommendations(t *testing.T) {
	var rs []Resource
	rs = append(rs, Resource{URL: "https://example.com/bundle.js", Initiator: "script", TransferSize: 1_500_000, DecodedSize: 1_500_000})
	rs = append(rs, Resource{URL: "https://example.com/hero.png", Initiator: "img", TransferSize: 3_000_000, DecodedSize: 3_000_000})
	rs = append(rs, Resource{URL: "https://example.com/all.css", Initiator: "link", TransferSize: 600_000, DecodedSize: 600_000})
	for i := 0; i < 4; i++ {
		rs = append(rs, Resource{URL: "https://example.com/f.woff2", Initiator: "link", TransferSize: 10_000, DecodedSize: 10_000})
	}
	for i := 0; i < 19; i++ {
		rs = append(rs, Resource{URL: "https://example.com/m.js", Initiator: "script", TransferSize: 1_000, DecodedSize: 1_000})
	}

	w := AnalyzeContentWeight(rs)
	assert.True(t, w.IsHeavy())
	require.Len(t, w.Recommendations, 7)
	assert.Equal(t, "Page weight of 5.2 MB exceeds 5MB; reduce it for mobile users", w.Recommendations[0])
	assert.Contains(t, w.Recommendations[1], "compression")
	assert.Contains(t, w.Recommendations[2], "JavaScript totals")
	assert.Contains(t, w.Recommendations[3], "Images total")
	assert.Contains(t, w.Recommendations[4], "CSS totals")
	assert.Equal(t, "4 font files loaded; limit font families and weights", w.Recommendations[5])
	assert.Equal(t, "21 script and stylesheet requests; bundle them", w.Recommendations[6])
}

func TestAnalyzeContentWeightEmpty(t *testing.T) {
	w := AnalyzeContentWeight(nil)
	assert.Equal(t, 1.0, w.CompressionRatio())
	assert.Empty(t, w.Recommendations)
	assert.Empty(t, w.Categories())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 kB", FormatBytes(1_500))
	assert.Equal(t, "3.2 MB", FormatBytes(3_200_000))
	assert.Equal(t, "0 B", FormatBytes(-1))
}
