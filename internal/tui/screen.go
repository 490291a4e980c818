// Package tui draws the tracker status screen and listens for the quit key.
package tui

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/1broseidon/winrestore/internal/daemon"
)

// MinRedrawInterval caps the status screen at two redraws per second.
const MinRedrawInterval = 500 * time.Millisecond

const notAvailable = "not available"

// Screen renders tracked window state. It implements daemon.Observer.
type Screen struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	configPath  string
	styles      styles

	lastDraw  time.Time
	lastSaved time.Time
	windows   []daemon.Snapshot

	// now is swapped out in tests.
	now func() time.Time
}

var _ daemon.Observer = (*Screen)(nil)

// NewScreen creates a status screen writing to out. The screen is cleared
// before each redraw only when out is a terminal.
func NewScreen(out io.Writer, configPath string) *Screen {
	return &Screen{
		out:         out,
		interactive: isTerminal(out),
		configPath:  configPath,
		styles:      newStyles(out),
		now:         time.Now,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Tick records the latest window state and redraws unless the screen was
// drawn less than MinRedrawInterval ago.
func (s *Screen) Tick(windows []daemon.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.windows = windows
	now := s.now()
	if !s.lastDraw.IsZero() && now.Sub(s.lastDraw) < MinRedrawInterval {
		return
	}
	s.lastDraw = now
	s.draw(now)
}

// Saved records the time of the last successful save.
func (s *Screen) Saved(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSaved = at
}

// Close leaves the terminal in a usable state and prints a final line.
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interactive {
		fmt.Fprint(s.out, escReset+escShowCursor)
	}
	fmt.Fprint(s.out, s.newline()+"winrestore stopped"+s.newline())
}

func (s *Screen) draw(now time.Time) {
	var sb strings.Builder
	if s.interactive {
		sb.WriteString(escHideCursor)
		sb.WriteString(escReset)
		sb.WriteString(escClear)
		sb.WriteString(escHome)
	}
	sb.WriteString(s.render(now))
	fmt.Fprint(s.out, sb.String())
}

// newline returns the line terminator. Stdin may be in raw mode, which also
// turns off output newline translation on the shared terminal.
func (s *Screen) newline() string {
	if s.interactive {
		return "\r\n"
	}
	return "\n"
}

func (s *Screen) render(now time.Time) string {
	st := s.styles
	var lines []string

	lines = append(lines, st.title.Render("winrestore is running"))
	if s.configPath != "" {
		lines = append(lines, st.footer.Render(s.configPath))
	}
	lines = append(lines, "")

	for _, w := range s.windows {
		lines = append(lines, st.section.Render("["+w.Alias+"]"))
		lines = append(lines, s.row("title", s.text(w.Title)))
		handle := st.missing.Render(notAvailable)
		if w.Handle != 0 {
			handle = st.value.Render(w.Handle.String())
		}
		lines = append(lines, s.row("handle", handle))
		lines = append(lines, s.row("active", s.flag(w.Active)))
		lines = append(lines, s.row("minimized", s.flag(w.Minimized)))
		position := st.missing.Render(notAvailable)
		if w.HasPosition() {
			position = st.value.Render(w.Rect.String())
		}
		lines = append(lines, s.row("position", position))
		lines = append(lines, "")
	}

	saved := "not saved yet"
	if !s.lastSaved.IsZero() {
		saved = "saved " + humanize.RelTime(s.lastSaved, now, "ago", "from now")
	}
	lines = append(lines, st.footer.Render(saved))
	lines = append(lines, st.footer.Render("Press ")+st.keyHint.Render("q")+st.footer.Render(" to exit"))

	nl := s.newline()
	return strings.Join(lines, nl) + nl
}

func (s *Screen) row(label, value string) string {
	return "  " + s.styles.label.Render(label) + value
}

func (s *Screen) text(v string) string {
	if v == "" {
		return s.styles.missing.Render(notAvailable)
	}
	return s.styles.value.Render(v)
}

func (s *Screen) flag(v bool) string {
	if v {
		return s.styles.yes.Render(strconv.FormatBool(v))
	}
	return s.styles.value.Render(strconv.FormatBool(v))
}
