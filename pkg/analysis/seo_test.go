package analysis

import (
	"strings"
	"testing"

	"github.com/entrhq/siteaudit/pkg/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	goodTitle       = "Pricing plans for teams of every size | Example"
	goodDescription = strings.Repeat("Compare plans and features for small and large teams. ", 3)[:140]
)

func seoPage(t *testing.T, head, body string) *SEOResult {
	t.Helper()
	doc, err := dom.Parse(`<!DOCTYPE html><html lang="en"><head>` + head + `</head><body>` + body + `</body></html>`)
	require.NoError(t, err)
	return AnalyzeSEO(doc, "https://example.com/pricing")
}

func completeHead() string {
	return `<title>` + goodTitle + `</title>
		<meta name="description" content="` + goodDescription + `">
		<meta name="viewport" content="width=device-width, initial-scale=1">
		<link rel="canonical" href="https://example.com/pricing">
		<meta property="og:title" content="Pricing">
		<meta property="og:image" content="https://example.com/og.png">
		<meta name="twitter:card" content="summary">
		<script type="application/ld+json">{"@context":"https://schema.org","@type":"Product"}</script>`
}

func TestAnalyzeSEOComplete(t *testing.T) {
	res := seoPage(t, completeHead(), `<h1>Pricing</h1>`)

	assert.Empty(t, res.Issues)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, goodTitle, res.Title)
	assert.Equal(t, "https://example.com/pricing", res.Canonical)
	assert.Equal(t, "summary", res.TwitterCard)
	assert.Equal(t, "Pricing", res.OpenGraph["og:title"])
	assert.Equal(t, []string{"Product"}, res.StructuredData)
	assert.True(t, res.Indexable)
	assert.True(t, res.HTTPS)
	assert.Equal(t, 1, res.H1Count)
}

func TestAnalyzeSEOEmptyPage(t *testing.T) {
	doc, err := dom.Parse(`<html><body><p>hi</p></body></html>`)
	require.NoError(t, err)
	res := AnalyzeSEO(doc, "http://example.com/")

	fields := map[string]string{}
	for _, i := range res.Issues {
		fields[i.Field] = i.Severity
	}
	assert.Equal(t, SeverityError, fields["title"])
	assert.Equal(t, SeverityError, fields["description"])
	assert.Equal(t, SeverityError, fields["viewport"])
	assert.Equal(t, SeverityWarning, fields["lang"])
	assert.Equal(t, SeverityInfo, fields["canonical"])

	// 3 errors, 1 warning, 1 info, then no h1, OG, twitter, https, canonical, lang.
	assert.Equal(t, 100-30-5-2-15-5-5-10-5-3, res.Score)
	assert.False(t, res.HTTPS)
}

func TestAnalyzeSEOLengths(t *testing.T) {
	short := seoPage(t, `<title>Home</title><meta name="description" content="Too short.">`, `<h1>x</h1>`)
	assert.Contains(t, short.Issues, SEOIssue{
		Field: "title", Severity: SeverityWarning,
		Message:    "Title is too short (4 chars, recommended: 30-60)",
		Suggestion: "Expand the title to 30-60 characters",
	})

	long := seoPage(t, `<title>`+strings.Repeat("a", 61)+`</title><meta name="description" content="`+strings.Repeat("b", 161)+`">`, `<h1>x</h1>`)
	var msgs []string
	for _, i := range long.Issues {
		msgs = append(msgs, i.Message)
	}
	assert.Contains(t, msgs, "Title is too long (61 chars, recommended: 30-60)")
	assert.Contains(t, msgs, "Description is too long (161 chars, recommended: 120-160)")
}

func TestAnalyzeSEONoindexAndHeadings(t *testing.T) {
	res := seoPage(t, completeHead()+`<meta name="robots" content="noindex, follow">`, `<h1>a</h1><h1>b</h1>`)

	assert.False(t, res.Indexable)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "robots", res.Issues[0].Field)
	assert.Equal(t, 2, res.H1Count)
	assert.Equal(t, 100-5-5, res.Score)
}

func TestStructuredData(t *testing.T) {
	res := seoPage(t, completeHead()+
		`<script type="application/ld+json">{"@graph":[{"@type":"WebSite"},{"@type":["Organization","Brand"]}]}</script>
		<script type="application/ld+json">{not json</script>`, `<h1>x</h1>`)

	assert.Equal(t, []string{"Product", "WebSite", "Organization", "Brand"}, res.StructuredData)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "structured_data", res.Issues[0].Field)
}
