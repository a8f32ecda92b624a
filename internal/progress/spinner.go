package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows an animated status line while work is in flight. On
// terminals without TTY support it degrades to one line per completed step.
type Spinner struct {
	mu      sync.Mutex
	w       io.Writer
	symbols ProgressSymbols
	spin    *spinner.Spinner
	message string
}

// NewSpinner creates a spinner writing to w. The animation is only used
// when caps.IsTTY is set.
func NewSpinner(w io.Writer, caps TerminalCapabilities) *Spinner {
	s := &Spinner{w: w, symbols: SelectSymbols(caps)}
	if caps.IsTTY {
		opt := spinner.WithWriter(w)
		if f, ok := w.(*os.File); ok {
			opt = spinner.WithWriterFile(f)
		}
		s.spin = spinner.New(spinner.CharSets[s.symbols.SpinnerSet], 100*time.Millisecond, opt)
	}
	return s
}

// Start begins a step with the given message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if s.spin == nil {
		return
	}
	s.spin.Suffix = " " + message
	s.spin.Start()
}

// Update replaces the message of the running step.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if s.spin != nil {
		s.spin.Lock()
		s.spin.Suffix = " " + message
		s.spin.Unlock()
	}
}

// Success ends the step with a checkmark.
func (s *Spinner) Success() { s.finish(s.symbols.Checkmark) }

// Fail ends the step with a failure marker.
func (s *Spinner) Fail() { s.finish(s.symbols.Failure) }

// Stop ends the step without printing a status line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spin != nil {
		s.spin.Stop()
	}
}

func (s *Spinner) finish(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spin != nil {
		s.spin.Stop()
	}
	fmt.Fprintf(s.w, "%s %s\n", symbol, s.message)
}
