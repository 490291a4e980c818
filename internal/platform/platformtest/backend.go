// Package platformtest provides an in-memory platform.Backend for tests.
package platformtest

import (
	"errors"
	"iter"
	"sync"

	"github.com/1broseidon/winrestore/internal/platform"
)

// Window is one simulated window.
type Window struct {
	ID        platform.WindowID
	Title     string
	Rect      platform.Rect
	Minimized bool
	Disabled  bool
	Children  []*Window

	// InspectErr is returned when the window is enumerated or queried.
	InspectErr error
}

// Move records one MoveResize call.
type Move struct {
	ID     platform.WindowID
	Rect   platform.Rect
	ZOrder platform.ZOrder
}

// Backend implements platform.Backend against a list of fake windows.
type Backend struct {
	mu        sync.Mutex
	windows   []*Window
	screen    platform.Rect
	screenErr error
	moves     []Move

	// Settle, when set, decides where a window ends up after a MoveResize
	// request. attempt counts requests for that window, starting at 1.
	Settle func(w *Window, requested platform.Rect, attempt int) platform.Rect

	attempts map[platform.WindowID]int
}

var _ platform.Backend = (*Backend)(nil)

// New returns a backend with a single 1920x1080 screen.
func New(windows ...*Window) *Backend {
	return &Backend{
		windows:  windows,
		screen:   platform.Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080},
		attempts: make(map[platform.WindowID]int),
	}
}

// SetWindows replaces the simulated top-level windows.
func (b *Backend) SetWindows(windows ...*Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows = windows
}

// SetScreen sets the virtual screen bounds and the error VirtualScreen returns.
func (b *Backend) SetScreen(r platform.Rect, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.screen = r
	b.screenErr = err
}

// Moves returns every MoveResize call made so far.
func (b *Backend) Moves() []Move {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Move, len(b.moves))
	copy(out, b.moves)
	return out
}

// ResetMoves clears the recorded MoveResize calls.
func (b *Backend) ResetMoves() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moves = nil
	b.attempts = make(map[platform.WindowID]int)
}

func (b *Backend) Windows() iter.Seq2[platform.Window, error] {
	b.mu.Lock()
	windows := append([]*Window(nil), b.windows...)
	b.mu.Unlock()

	return func(yield func(platform.Window, error) bool) {
		for _, w := range windows {
			if !yield(describe(w)) {
				return
			}
		}
	}
}

func (b *Backend) Children(parent platform.WindowID) iter.Seq2[platform.Window, error] {
	return func(yield func(platform.Window, error) bool) {
		w := b.find(parent)
		if w == nil {
			yield(platform.Window{ID: parent}, platform.ErrWindowGone)
			return
		}
		walk(w.Children, yield)
	}
}

func walk(children []*Window, yield func(platform.Window, error) bool) bool {
	for _, c := range children {
		if !yield(describe(c)) {
			return false
		}
		if !walk(c.Children, yield) {
			return false
		}
	}
	return true
}

func describe(w *Window) (platform.Window, error) {
	if w.InspectErr != nil {
		return platform.Window{ID: w.ID}, w.InspectErr
	}
	return platform.Window{ID: w.ID, Title: w.Title}, nil
}

func (b *Backend) WindowRect(id platform.WindowID) (platform.Rect, error) {
	w, err := b.lookup(id)
	if err != nil {
		return platform.Rect{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return w.Rect, nil
}

func (b *Backend) IsMinimized(id platform.WindowID) (bool, error) {
	w, err := b.lookup(id)
	if err != nil {
		return false, err
	}
	return w.Minimized, nil
}

func (b *Backend) IsEnabled(id platform.WindowID) (bool, error) {
	w, err := b.lookup(id)
	if err != nil {
		return false, err
	}
	return !w.Disabled, nil
}

func (b *Backend) MoveResize(id platform.WindowID, r platform.Rect, z platform.ZOrder) error {
	w, err := b.lookup(id)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.moves = append(b.moves, Move{ID: id, Rect: r, ZOrder: z})
	b.attempts[id]++
	if b.Settle != nil {
		w.Rect = b.Settle(w, r, b.attempts[id])
	} else {
		w.Rect = r
	}
	return nil
}

func (b *Backend) VirtualScreen() (platform.Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.screen, b.screenErr
}

func (b *Backend) Close() {}

func (b *Backend) lookup(id platform.WindowID) (*Window, error) {
	w := b.find(id)
	if w == nil {
		return nil, platform.ErrWindowGone
	}
	if w.InspectErr != nil {
		return nil, w.InspectErr
	}
	return w, nil
}

func (b *Backend) find(id platform.WindowID) *Window {
	b.mu.Lock()
	defer b.mu.Unlock()
	var search func([]*Window) *Window
	search = func(ws []*Window) *Window {
		for _, w := range ws {
			if w.ID == id {
				return w
			}
			if found := search(w.Children); found != nil {
				return found
			}
		}
		return nil
	}
	return search(b.windows)
}

// ErrUnexpected is a stand-in for an enumeration failure nobody anticipated.
var ErrUnexpected = errors.New("platformtest: unexpected failure")
