// Package output renders a batch report as JSON, a terminal table,
// Markdown or a standalone HTML page.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/entrhq/siteaudit/pkg/audit"
)

// Format names an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTable, FormatJSON, FormatMarkdown, FormatHTML}

// ParseFormat accepts a format name in any case; "md" is an alias for
// markdown. An empty name is the table format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json, markdown or html)", s)
	}
}

// Write renders report to w in format f.
func Write(w io.Writer, f Format, report *audit.BatchReport) error {
	switch f {
	case FormatTable, "":
		return writeTable(w, report)
	case FormatJSON:
		return writeJSON(w, report)
	case FormatMarkdown:
		return writeMarkdown(w, report)
	case FormatHTML:
		return writeHTML(w, report)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

// WriteFile renders report into path, creating parent directories.
func WriteFile(path string, f Format, report *audit.BatchReport) error {
	var buf bytes.Buffer
	if err := Write(&buf, f, report); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, report *audit.BatchReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func status(r *audit.Report) string {
	if r.Passed() {
		return "PASS"
	}
	return "FAIL"
}
