package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/winrestore/internal/daemon"
	"github.com/1broseidon/winrestore/internal/platform"
)

func newTestScreen() (*Screen, *bytes.Buffer, *time.Time) {
	var buf bytes.Buffer
	s := NewScreen(&buf, "/home/me/config.ini")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &buf, &now
}

func TestScreen_RendersWindowState(t *testing.T) {
	s, buf, now := newTestScreen()
	s.Saved(now.Add(-3 * time.Second))

	s.Tick([]daemon.Snapshot{
		{
			Alias:  "Editor",
			Title:  "My Editor",
			Handle: 0x1a00003,
			Active: true,
			Rect:   platform.Rect{Left: 100, Top: 100, Right: 900, Bottom: 700},
			State:  daemon.ResolvedActive,
		},
		{Alias: "Term"},
	})

	out := buf.String()
	for _, want := range []string{
		"winrestore is running",
		"/home/me/config.ini",
		"[Editor]",
		"My Editor",
		"0x1a00003",
		"(100, 100, 900, 700)",
		"[Term]",
		"saved 3 seconds ago",
		"to exit",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if n := strings.Count(out, notAvailable); n != 3 {
		t.Fatalf("expected title, handle and position of Term not available, got %d:\n%s", n, out)
	}
	if strings.Contains(out, escClear) || strings.Contains(out, "\r\n") {
		t.Fatalf("expected no terminal control output for a plain writer:\n%q", out)
	}
}

func TestScreen_HidesPositionWhileMinimized(t *testing.T) {
	s, buf, _ := newTestScreen()
	s.Tick([]daemon.Snapshot{{
		Alias:     "Editor",
		Title:     "My Editor",
		Handle:    7,
		Active:    true,
		Minimized: true,
		Rect:      platform.Rect{Left: 100, Top: 100, Right: 900, Bottom: 700},
	}})

	out := buf.String()
	if strings.Contains(out, "(100, 100, 900, 700)") {
		t.Fatalf("expected position hidden while minimized:\n%s", out)
	}
	if !strings.Contains(out, "not saved yet") {
		t.Fatalf("expected unsaved notice:\n%s", out)
	}
}

func TestScreen_RateLimitsRedraws(t *testing.T) {
	s, buf, now := newTestScreen()
	draws := func() int { return strings.Count(buf.String(), "winrestore is running") }

	s.Tick(nil)
	*now = now.Add(100 * time.Millisecond)
	s.Tick(nil)
	*now = now.Add(100 * time.Millisecond)
	s.Tick(nil)
	if got := draws(); got != 1 {
		t.Fatalf("expected 1 draw within %v, got %d", MinRedrawInterval, got)
	}

	*now = now.Add(MinRedrawInterval)
	s.Tick([]daemon.Snapshot{{Alias: "Late"}})
	if got := draws(); got != 2 {
		t.Fatalf("expected redraw after interval, got %d", got)
	}
	if !strings.Contains(buf.String(), "[Late]") {
		t.Fatalf("expected latest state drawn")
	}
}

func TestScreen_Close(t *testing.T) {
	s, buf, _ := newTestScreen()
	s.Close()
	if !strings.Contains(buf.String(), "winrestore stopped") {
		t.Fatalf("expected stop notice, got %q", buf.String())
	}
}
