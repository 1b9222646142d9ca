package sources

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func urlset(locs ...string) string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, l := range locs {
		fmt.Fprintf(&b, "<url><loc>%s</loc></url>", l)
	}
	b.WriteString(`</urlset>`)
	return b.String()
}

func index(locs ...string) string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, l := range locs {
		fmt.Fprintf(&b, "<sitemap><loc>%s</loc></sitemap>", l)
	}
	b.WriteString(`</sitemapindex>`)
	return b.String()
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var b bytes.Buffer
	gz := gzip.NewWriter(&b)
	_, err := gz.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return b.Bytes()
}

// sitemapServer serves path -> body; unknown paths are 404.
func sitemapServer(t *testing.T, routes map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseSitemap(t *testing.T) {
	sm, err := ParseSitemap([]byte(urlset("https://example.com/a", "https://example.com/b")))
	require.NoError(t, err)
	assert.False(t, sm.Index)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, sm.URLs)

	idx, err := ParseSitemap([]byte(index("https://example.com/s1.xml")))
	require.NoError(t, err)
	assert.True(t, idx.Index)
	assert.Equal(t, []string{"https://example.com/s1.xml"}, idx.Sitemaps)

	_, err = ParseSitemap([]byte(`<html><body/></html>`))
	assert.ErrorContains(t, err, "unexpected root element <html>")

	_, err = ParseSitemap([]byte(`<not valid xml<<<`))
	assert.Error(t, err)
}

func TestFetchSitemap(t *testing.T) {
	srv := sitemapServer(t, map[string][]byte{
		"/sitemap.xml": []byte(urlset("https://example.com/", "https://example.com/about", "https://example.com/")),
	})

	urls, err := FetchSitemap(context.Background(), srv.Client(), srv.URL+"/sitemap.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/", "https://example.com/about"}, urls)
}

func TestFetchSitemapIndex(t *testing.T) {
	srv := sitemapServer(t, map[string][]byte{
		"/sitemap.xml":  []byte(index("/pages.xml", "/posts.xml.gz", "/missing.xml", "/sitemap.xml")),
		"/pages.xml":    []byte(urlset("https://example.com/a", "https://example.com/b")),
		"/posts.xml.gz": gzipped(t, urlset("https://example.com/b", "/relative")),
	})

	urls, err := FetchSitemap(context.Background(), srv.Client(), srv.URL+"/sitemap.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/a",
		"https://example.com/b",
		srv.URL + "/relative",
	}, urls)
}

func TestFetchSitemapDepthLimit(t *testing.T) {
	// level3.xml sits at the depth limit; level4.xml is one past it.
	srv := sitemapServer(t, map[string][]byte{
		"/level0.xml":  []byte(index("/level1.xml")),
		"/level1.xml":  []byte(index("/level2.xml")),
		"/level2.xml":  []byte(index("/level3.xml", "/level3b.xml")),
		"/level3.xml":  []byte(urlset("https://example.com/deep")),
		"/level3b.xml": []byte(index("/level4.xml")),
		"/level4.xml":  []byte(urlset("https://example.com/too-deep")),
	})

	urls, err := FetchSitemap(context.Background(), srv.Client(), srv.URL+"/level0.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/deep"}, urls)
}

func TestFetchSitemapRootErrors(t *testing.T) {
	srv := sitemapServer(t, map[string][]byte{"/broken.xml": []byte("<<<")})

	_, err := FetchSitemap(context.Background(), srv.Client(), srv.URL+"/missing.xml")
	require.ErrorIs(t, err, ErrSitemap)
	assert.ErrorContains(t, err, "unexpected status 404")

	_, err = FetchSitemap(context.Background(), srv.Client(), srv.URL+"/broken.xml")
	require.ErrorIs(t, err, ErrSitemap)

	var smErr *SitemapError
	require.ErrorAs(t, err, &smErr)
	assert.Equal(t, srv.URL+"/broken.xml", smErr.URL)
}

func TestFetchSitemapCancelled(t *testing.T) {
	srv := sitemapServer(t, map[string][]byte{"/sitemap.xml": []byte(urlset("https://example.com/"))})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FetchSitemap(ctx, srv.Client(), srv.URL+"/sitemap.xml")
	assert.ErrorIs(t, err, ErrSitemap)
	assert.ErrorIs(t, err, context.Canceled)
}
