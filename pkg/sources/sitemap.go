// Package sources produces the URL lists a batch audits: sitemaps, URL list
// files, and include/exclude filtering.
package sources

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/entrhq/siteaudit/pkg/logging"
)

const (
	// MaxSitemapDepth bounds sitemap index recursion. The root is depth 0.
	MaxSitemapDepth = 3

	// maxSitemapBytes is the protocol's uncompressed size limit.
	maxSitemapBytes = 50 << 20

	defaultFetchTimeout = 30 * time.Second
	userAgent           = "siteaudit (+https://github.com/entrhq/siteaudit)"
)

// ErrSitemap matches every sitemap failure.
var ErrSitemap = errors.New("sitemap")

// SitemapError reports a sitemap that could not be fetched or parsed.
type SitemapError struct {
	URL string
	Err error
}

func (e *SitemapError) Error() string {
	return fmt.Sprintf("sitemap %s: %v", e.URL, e.Err)
}

func (e *SitemapError) Unwrap() error {
	return e.Err
}

func (e *SitemapError) Is(target error) bool {
	return target == ErrSitemap
}

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("sources")
	if err != nil {
		debugLog.Warnf("Failed to initialize sources logger, using stderr fallback: %v", err)
	}
}

// xmlDocument decodes either a <urlset> or a <sitemapindex>.
type xmlDocument struct {
	XMLName  xml.Name
	URLs     []xmlLoc `xml:"url"`
	Sitemaps []xmlLoc `xml:"sitemap"`
}

type xmlLoc struct {
	Loc string `xml:"loc"`
}

// Sitemap is a decoded sitemap document. An index lists child sitemaps; a
// urlset lists pages.
type Sitemap struct {
	Index    bool
	URLs     []string
	Sitemaps []string
}

// FetchSitemap returns the page URLs listed by the sitemap at sitemapURL,
// following sitemap indexes up to MaxSitemapDepth. A failing nested sitemap
// is logged and skipped; a failing root is an error. A nil client uses a
// client with a 30s timeout. URLs are returned in document order without
// duplicates.
func FetchSitemap(ctx context.Context, client *http.Client, sitemapURL string) ([]string, error) {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	w := &sitemapWalker{client: client, visited: make(map[string]bool), seen: make(map[string]bool)}
	if err := w.walk(ctx, sitemapURL, 0); err != nil {
		return nil, err
	}
	debugLog.Infof("Sitemap %s listed %d URLs across %d sitemaps", sitemapURL, len(w.urls), len(w.visited))
	return w.urls, nil
}

type sitemapWalker struct {
	client  *http.Client
	visited map[string]bool
	seen    map[string]bool
	urls    []string
}

func (w *sitemapWalker) walk(ctx context.Context, sitemapURL string, depth int) error {
	w.visited[sitemapURL] = true

	body, err := fetch(ctx, w.client, sitemapURL)
	if err != nil {
		return &SitemapError{URL: sitemapURL, Err: err}
	}

	doc, err := ParseSitemap(body)
	if err != nil {
		return &SitemapError{URL: sitemapURL, Err: err}
	}

	base, _ := url.Parse(sitemapURL)
	for _, u := range doc.URLs {
		loc := resolve(base, u)
		if loc == "" || w.seen[loc] {
			continue
		}
		w.seen[loc] = true
		w.urls = append(w.urls, loc)
	}

	for _, s := range doc.Sitemaps {
		child := resolve(base, s)
		if child == "" || w.visited[child] {
			continue
		}
		if depth+1 > MaxSitemapDepth {
			debugLog.Warnf("Skipping nested sitemap %s: depth limit %d reached", child, MaxSitemapDepth)
			continue
		}
		if err := ctx.Err(); err != nil {
			return &SitemapError{URL: sitemapURL, Err: err}
		}
		if err := w.walk(ctx, child, depth+1); err != nil {
			debugLog.Warnf("Failed to read nested sitemap %s: %v", child, err)
		}
	}
	return nil
}

// ParseSitemap decodes a sitemap or sitemap index document.
func ParseSitemap(body []byte) (*Sitemap, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	out := &Sitemap{}
	switch doc.XMLName.Local {
	case "urlset":
		for _, u := range doc.URLs {
			out.URLs = append(out.URLs, u.Loc)
		}
	case "sitemapindex":
		out.Index = true
		for _, s := range doc.Sitemaps {
			out.Sitemaps = append(out.Sitemaps, s.Loc)
		}
	default:
		return nil, fmt.Errorf("unexpected root element <%s>", doc.XMLName.Local)
	}
	return out, nil
}

func fetch(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	br := bufio.NewReader(resp.Body)
	var r io.Reader = br
	if magic, _ := br.Peek(2); bytes.Equal(magic, []byte{0x1f, 0x8b}) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip body: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	body, err := io.ReadAll(io.LimitReader(r, maxSitemapBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxSitemapBytes {
		return nil, fmt.Errorf("sitemap exceeds %d bytes", maxSitemapBytes)
	}
	return body, nil
}

func resolve(base *url.URL, loc string) string {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return ""
	}
	u, err := url.Parse(loc)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	return u.String()
}
