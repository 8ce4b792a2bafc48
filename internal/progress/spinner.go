// Package progress reports build-phase progress to the terminal.
package progress

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/rybkr/arkindex/internal/termcolor"
)

// Spinner wraps pterm's spinner printer, disabling itself outright when
// stderr isn't a TTY so piped/CI output stays clean.
type Spinner struct {
	msg      string
	active   bool
	delegate *pterm.SpinnerPrinter
}

// New creates a Spinner that will display msg alongside the animation.
func New(msg string) *Spinner {
	return &Spinner{msg: msg, active: termcolor.IsTerminal(os.Stderr.Fd())}
}

// Start begins the spinner animation, writing to stderr.
func (s *Spinner) Start() {
	if !s.active {
		return
	}
	printer := pterm.DefaultSpinner.WithWriter(os.Stderr)
	sp, err := printer.Start(s.msg)
	if err != nil {
		s.active = false
		return
	}
	s.delegate = sp
}

// Stop halts the spinner animation and clears the line.
func (s *Spinner) Stop() {
	if s.delegate != nil {
		_ = s.delegate.Stop()
		s.delegate = nil
	}
}

// Success stops the spinner, leaving a success-marked message behind.
func (s *Spinner) Success(msg string) {
	if s.delegate != nil {
		s.delegate.Success(msg)
		s.delegate = nil
		return
	}
}

// Fail stops the spinner, leaving a failure-marked message behind.
func (s *Spinner) Fail(msg string) {
	if s.delegate != nil {
		s.delegate.Fail(msg)
		s.delegate = nil
		return
	}
}
