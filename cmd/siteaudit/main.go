// Package main provides the siteaudit command: it audits one page, a URL
// list or a whole sitemap for accessibility with a pool of headless
// browser tabs, and prints a report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

var version = "0.1.0"

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

// errUsage marks configuration and pre-flight failures (exit code 2).
var errUsage = errors.New("usage error")

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// CLIConfig holds command-line configuration
type CLIConfig struct {
	URL            string
	Sitemap        string
	URLFile        string
	ConfigFile     string
	Level          string
	Format         string
	OutputFile     string
	ChromePath     string
	MaxPages       int
	Concurrency    int
	Timeout        int
	AcquireTimeout int
	NoSandbox      bool
	DisableImages  bool
	Include        stringList
	Exclude        stringList
	Rate           float64
	Verbose        bool
	Quiet          bool
	ShowVersion    bool

	// set records the flags given explicitly on the command line
	set map[string]bool
}

func main() {
	cli, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		printError("%v", err)
		os.Exit(exitConfig)
	}

	if cli.ShowVersion {
		fmt.Printf("siteaudit v%s\n", version)
		return
	}

	// Interrupts stop admission; pages already loading are drained
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code, err := run(ctx, cli)
	stop()
	if err != nil {
		printError("%v", err)
	}
	os.Exit(code)
}

// parseFlags parses command line flags
func parseFlags(args []string) (*CLIConfig, error) {
	cli := &CLIConfig{}
	fs := flag.NewFlagSet("siteaudit", flag.ContinueOnError)

	fs.StringVar(&cli.Sitemap, "sitemap", "", "Audit every URL in this sitemap (sitemap indexes are followed)")
	fs.StringVar(&cli.URLFile, "url-file", "", "Audit the URLs in this file, one per line")
	fs.StringVar(&cli.ConfigFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&cli.Level, "level", "", "WCAG conformance level: a, aa or aaa (default aa)")
	fs.StringVar(&cli.Format, "format", "", "Report format: table, json, markdown or html (default table)")
	fs.StringVar(&cli.OutputFile, "output", "", "Write the report to this file instead of stdout")
	fs.StringVar(&cli.ChromePath, "chrome-path", os.Getenv("CHROME_PATH"), "Chromium executable (default: the Playwright build)")
	fs.IntVar(&cli.MaxPages, "max-pages", 0, "Audit at most this many pages (0 means no limit)")
	fs.IntVar(&cli.Concurrency, "concurrency", 0, "Number of browser tabs auditing at once")
	fs.IntVar(&cli.Timeout, "timeout", 0, "Page load timeout in seconds")
	fs.IntVar(&cli.AcquireTimeout, "acquire-timeout", 0, "Seconds to wait for a free browser tab")
	fs.BoolVar(&cli.NoSandbox, "no-sandbox", false, "Disable the Chromium sandbox (needed in most containers)")
	fs.BoolVar(&cli.DisableImages, "disable-images", false, "Do not load images")
	fs.Var(&cli.Include, "include", "Only audit URLs matching this glob (repeatable)")
	fs.Var(&cli.Exclude, "exclude", "Skip URLs matching this glob (repeatable)")
	fs.Float64Var(&cli.Rate, "rate", 0, "Start at most this many pages per second (0 means unlimited)")
	fs.BoolVar(&cli.Verbose, "verbose", false, "Mirror debug logs to stderr")
	fs.BoolVar(&cli.Quiet, "quiet", false, "Suppress progress output and informational logs")
	fs.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "siteaudit - accessibility audits with a pool of headless browsers\n\n")
		fmt.Fprintf(out, "Usage: siteaudit [options] [URL]\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  # Audit a single page\n")
		fmt.Fprintf(out, "  siteaudit https://example.com\n\n")
		fmt.Fprintf(out, "  # Audit a sitemap with 8 tabs and write an HTML report\n")
		fmt.Fprintf(out, "  siteaudit -sitemap https://example.com/sitemap.xml -concurrency 8 -format html -output report.html\n\n")
		fmt.Fprintf(out, "  # Audit a URL list at AAA, skipping the blog\n")
		fmt.Fprintf(out, "  siteaudit -url-file urls.txt -level aaa -exclude 'https://example.com/blog/**'\n\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		cli.URL = fs.Arg(0)
	default:
		return nil, fmt.Errorf("%w: expected at most one URL argument, got %d", errUsage, fs.NArg())
	}

	cli.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		cli.set[f.Name] = true
	})
	if os.Getenv("CHROME_PATH") != "" {
		cli.set["chrome-path"] = true
	}

	if cli.Verbose && cli.Quiet {
		return nil, fmt.Errorf("%w: -verbose and -quiet are mutually exclusive", errUsage)
	}
	return cli, nil
}
