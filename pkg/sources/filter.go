package sources

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Filter selects URLs by glob pattern. '*' matches within a path segment,
// '**' across segments.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewFilter compiles the include and exclude patterns.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}

	for _, pattern := range include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern '%s': %w", pattern, err)
		}
		f.include = append(f.include, g)
	}

	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
		f.exclude = append(f.exclude, g)
	}

	return f, nil
}

// Match reports whether u passes the filter. Exclude patterns take
// precedence; with no include patterns every URL is included.
func (f *Filter) Match(u string) bool {
	if f == nil {
		return true
	}
	for _, g := range f.exclude {
		if g.Match(u) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}

	for _, g := range f.include {
		if g.Match(u) {
			return true
		}
	}

	return false
}

// Apply normalizes urls, drops invalid ones and those the filter rejects,
// and removes duplicates keeping the first occurrence. If limit is positive
// at most limit URLs are returned.
func (f *Filter) Apply(urls []string, limit int) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))

	for _, raw := range urls {
		u, err := Normalize(raw)
		if err != nil {
			debugLog.Warnf("Dropping URL: %v", err)
			continue
		}
		if seen[u] || !f.Match(u) {
			continue
		}
		seen[u] = true
		out = append(out, u)
		if limit > 0 && len(out) == limit {
			break
		}
	}

	if len(out) < len(urls) {
		debugLog.Debugf("Filter kept %d of %d URLs", len(out), len(urls))
	}
	return out
}
