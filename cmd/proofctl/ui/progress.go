// Package ui provides terminal output helpers for proofctl.
package ui

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar counts processed files.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar draws to w, which should be stderr so stdout stays parseable.
func NewProgressBar(w io.Writer, total int, description string) *ProgressBar {
	bar := progressbar.NewOptions(
		total,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &ProgressBar{bar: bar}
}

// Add advances the bar by one.
func (p *ProgressBar) Add() {
	_ = p.bar.Add(1)
}

func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}

// Success prints a check-marked line.
func Success(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Warning prints a warning line.
func Warning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "⚠ %s\n", fmt.Sprintf(format, args...))
}
