// Package progress reports the fetch-and-convert steps on stderr, keeping
// stdout clean for the Markdown output.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const tickInterval = 80 * time.Millisecond

// clearLine rewinds to the start of the line and erases it.
const clearLine = "\r\x1b[2K"

var (
	spinnerColor = color.New(color.FgCyan)
	checkColor   = color.New(color.FgGreen)
)

// Progress shows a spinner for the step in flight. When stderr is not a
// terminal the animation is skipped and step messages are printed as plain
// lines. All output is suppressed when disabled (quiet mode).
type Progress struct {
	enabled bool
	tty     bool
	out     io.Writer

	mu      sync.Mutex
	message string
	active  bool
	stop    chan struct{}
	done    chan struct{}
}

// New creates a Progress writing to stderr. Pass enabled=false for quiet mode.
func New(enabled bool) *Progress {
	return &Progress{
		enabled: enabled,
		tty:     isatty.IsTerminal(os.Stderr.Fd()),
		out:     os.Stderr,
	}
}

// Spinner starts a new spinner with the given message, replacing any
// spinner already running.
func (p *Progress) Spinner(message string) {
	if !p.enabled {
		return
	}
	p.stopSpinner()

	p.mu.Lock()
	p.message = message
	p.active = true
	if p.tty {
		p.stop = make(chan struct{})
		p.done = make(chan struct{})
		go p.spin(p.stop, p.done)
	}
	p.mu.Unlock()

	if !p.tty {
		fmt.Fprintln(p.out, message)
	}
}

// SetMessage updates the message on the running spinner. No-op when no
// spinner is active.
func (p *Progress) SetMessage(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		p.message = message
	}
}

// Finish stops the running spinner and replaces it with the final message.
// No-op when no spinner is active.
func (p *Progress) Finish(message string) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	wasActive := p.active
	p.mu.Unlock()
	if !wasActive {
		return
	}
	p.stopSpinner()
	fmt.Fprintln(p.out, message)
}

// FinishAndClear stops the running spinner leaving nothing behind.
func (p *Progress) FinishAndClear() {
	p.stopSpinner()
}

// Complete prints a green check mark with the message.
func (p *Progress) Complete(message string) {
	if !p.enabled {
		return
	}
	p.stopSpinner()
	fmt.Fprintf(p.out, "%s %s\n", checkColor.Sprint("✔"), message)
}

// spinning reports whether a spinner is currently active (for tests).
func (p *Progress) spinning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// stopSpinner halts the animation goroutine, waits for it to exit and
// erases the spinner line.
func (p *Progress) stopSpinner() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.active = false
	p.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	fmt.Fprint(p.out, clearLine)
}

func (p *Progress) spin(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			msg := p.message
			p.mu.Unlock()
			fmt.Fprintf(p.out, "%s%s %s", clearLine, spinnerColor.Sprint(spinnerFrames[frame%len(spinnerFrames)]), msg)
			frame++
		}
	}
}
