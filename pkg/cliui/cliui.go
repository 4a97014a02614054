// Package cliui holds the terminal helpers shared by pilotlight commands:
// styles, a wait spinner, and markdown rendering for assistant replies.
package cliui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Spinner animates a single status line until Stop is called.
type Spinner struct {
	w     io.Writer
	msg   string
	start time.Time

	mu      sync.Mutex
	done    chan struct{}
	stopped chan struct{}
}

// StartSpinner draws msg with an animated frame on w.
func StartSpinner(w io.Writer, msg string) *Spinner {
	s := &Spinner{
		w:       w,
		msg:     msg,
		start:   time.Now(),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Spinner) run() {
	defer close(s.stopped)

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		s.mu.Lock()
		fmt.Fprintf(s.w, "\r  %s %s", spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]), s.msg)
		s.mu.Unlock()

		select {
		case <-s.done:
			return
		case <-ticker.C:
		}
	}
}

// Stop ends the animation and replaces the line with a mark for err and the
// elapsed time. It returns the elapsed time.
func (s *Spinner) Stop(err error) time.Duration {
	elapsed := time.Since(s.start)

	close(s.done)
	<-s.stopped

	fmt.Fprintf(s.w, "\r  %s %s %s\n", Mark(err), s.msg, StepStyle.Render("("+FormatDuration(elapsed)+")"))
	return elapsed
}

// Step runs fn behind a spinner and returns its error.
func Step(w io.Writer, msg string, fn func() error) error {
	s := StartSpinner(w, msg)
	err := fn()
	s.Stop(err)
	return err
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Width returns the column count of w, or DefaultWidth when w is not a terminal.
func Width(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return DefaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// Markdown renders markdown for the terminal, reusing one glamour renderer
// per wrap width.
type Markdown struct {
	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

func NewMarkdown() *Markdown {
	return &Markdown{renderers: make(map[int]*glamour.TermRenderer)}
}

// Render wraps content at width columns. On error the content is returned
// unchanged along with the error.
func (m *Markdown) Render(content string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content, err
		}
		m.renderers[width] = r
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}
	return rendered, nil
}

var defaultMarkdown = NewMarkdown()

// RenderMarkdown renders content at DefaultWidth.
func RenderMarkdown(content string) (string, error) {
	return defaultMarkdown.Render(content, DefaultWidth)
}
