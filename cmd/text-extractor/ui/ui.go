// Package ui provides terminal output helpers for the text-extractor CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

var (
	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr

	successColor = color.New(color.FgGreen).SprintFunc()
	errorColor   = color.New(color.FgRed).SprintFunc()
	warnColor    = color.New(color.FgYellow).SprintFunc()
	infoColor    = color.New(color.FgCyan).SprintFunc()
	headerColor  = color.New(color.Bold).SprintFunc()
)

// Init applies the global color setting.
func Init(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

// SetOutput redirects standard and error output, mainly for tests.
func SetOutput(stdout, stderr io.Writer) {
	out = stdout
	errOut = stderr
}

// Pages shows rasterization progress as a bar over the page count.
type Pages struct {
	bar *progressbar.ProgressBar
}

// NewPages creates a progress bar for total pages.
func NewPages(total int, description string) *Pages {
	bar := progressbar.NewOptions(
		total,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(errOut),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(errOut, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &Pages{bar: bar}
}

// Describe replaces the text shown next to the bar.
func (p *Pages) Describe(description string) {
	p.bar.Describe(description)
}

// Set moves the bar to the given number of completed pages.
func (p *Pages) Set(done int) {
	_ = p.bar.Set(done)
}

// Finish completes the bar.
func (p *Pages) Finish() {
	_ = p.bar.Finish()
}

// Spinner shows indeterminate progress.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(errOut))
	s.Suffix = " " + message
	return &Spinner{spinner: s}
}

func (s *Spinner) Start() { s.spinner.Start() }

func (s *Spinner) Stop() { s.spinner.Stop() }

// Message prints a plain line.
func Message(format string, args ...interface{}) {
	fmt.Fprintf(out, format+"\n", args...)
}

// Success prints a success line.
func Success(format string, args ...interface{}) {
	fmt.Fprintf(out, "%s %s\n", successColor("✓"), fmt.Sprintf(format, args...))
}

// Error prints an error line to stderr.
func Error(format string, args ...interface{}) {
	fmt.Fprintf(errOut, "%s %s\n", errorColor("✗"), fmt.Sprintf(format, args...))
}

// Warning prints a warning line.
func Warning(format string, args ...interface{}) {
	fmt.Fprintf(out, "%s %s\n", warnColor("⚠"), fmt.Sprintf(format, args...))
}

// Info prints an informational line.
func Info(format string, args ...interface{}) {
	fmt.Fprintf(out, "%s %s\n", infoColor("ℹ"), fmt.Sprintf(format, args...))
}

// Section prints a bold heading.
func Section(title string) {
	fmt.Fprintf(out, "\n%s\n%s\n", headerColor(title), strings.Repeat("─", len([]rune(title))))
}

// Table prints rows under headers in aligned columns.
func Table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(headers, "\t"))
	separator := make([]string, len(headers))
	for i := range separator {
		separator[i] = strings.Repeat("-", len(headers[i]))
	}
	fmt.Fprintln(w, strings.Join(separator, "\t"))

	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}
