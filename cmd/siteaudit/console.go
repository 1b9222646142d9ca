package main

import (
	"os"

	"github.com/fatih/color"
)

// Styles for messages written to stderr
var (
	errorColor  = color.New(color.FgRed, color.Bold)
	warnColor   = color.New(color.FgYellow)
	noticeColor = color.New(color.FgCyan)
)

func printError(format string, a ...any) {
	_, _ = errorColor.Fprintf(os.Stderr, "Error: "+format+"\n", a...)
}

func printWarning(format string, a ...any) {
	_, _ = warnColor.Fprintf(os.Stderr, "Warning: "+format+"\n", a...)
}

func printNotice(format string, a ...any) {
	_, _ = noticeColor.Fprintf(os.Stderr, format+"\n", a...)
}
