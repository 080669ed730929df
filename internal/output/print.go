// Package output provides terminal output utilities for phpswitch.
//
// This package includes:
//   - Severity-tagged printers (info, success, warning, error)
//   - Table rendering for installed versions and switch history
//   - A spinner for indeterminate waits
//
// Colors degrade to plain text when stdout is not a TTY or NO_COLOR is set.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Severity glyphs shared by all commands.
const (
	glyphOK   = "✓"
	glyphWarn = "⚠"
	glyphFail = "✗"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// DisableColor forces plain output regardless of TTY detection. Used by the
// --no-color flag.
func DisableColor() {
	color.NoColor = true
}

// Printer writes severity-tagged lines. Informational, success, and warning
// lines go to out; error lines go to err.
type Printer struct {
	out io.Writer
	err io.Writer
}

// New returns a Printer bound to os.Stdout and os.Stderr.
func New() *Printer {
	return &Printer{out: os.Stdout, err: os.Stderr}
}

// NewPrinter returns a Printer bound to the given writers.
func NewPrinter(out, err io.Writer) *Printer {
	return &Printer{out: out, err: err}
}

// Infof prints an untagged informational line.
func (p *Printer) Infof(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Successf prints a green check-tagged line.
func (p *Printer) Successf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s %s\n", color.GreenString(glyphOK), fmt.Sprintf(format, args...))
}

// Warnf prints a yellow warning-tagged line. Warnings never abort a switch.
func (p *Printer) Warnf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s %s\n", color.YellowString(glyphWarn), fmt.Sprintf(format, args...))
}

// Errorf prints a red error-tagged line to the error writer.
func (p *Printer) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(p.err, "%s %s\n", color.RedString(glyphFail), fmt.Sprintf(format, args...))
}

// Out returns the informational writer, for callers that need to emit raw
// blocks (tables, usage text) alongside tagged lines.
func (p *Printer) Out() io.Writer {
	return p.out
}
