package sources

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ErrInvalidURL is returned by Normalize for URLs that cannot be audited.
var ErrInvalidURL = errors.New("invalid URL")

// ReadURLFile reads one URL per line from path. Blank lines and lines that
// start with # are skipped, as are lines that are not http or https URLs.
func ReadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "http://") && !strings.HasPrefix(line, "https://") {
			debugLog.Warnf("Skipping %s:%d: not an http(s) URL: %q", path, lineNo, line)
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL file: %w", err)
	}

	debugLog.Infof("Read %d URLs from %s", len(urls), path)
	return urls, nil
}

// Normalize trims raw and adds https:// when it has no scheme. Schemes
// other than http and https, and URLs without a host, are rejected.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if !strings.Contains(s, "://") {
		if scheme, rest, ok := strings.Cut(s, ":"); ok && isSchemeWord(scheme) && !startsWithDigit(rest) {
			return "", fmt.Errorf("%w: unsupported scheme %q in %s", ErrInvalidURL, scheme, raw)
		}
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q in %s", ErrInvalidURL, u.Scheme, raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %s", ErrInvalidURL, raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Fragment = ""
	return u.String(), nil
}

// isSchemeWord reports whether s could be an opaque scheme such as mailto.
func isSchemeWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
