package platform

import (
	"errors"
	"fmt"
	"iter"
)

// WindowID is a platform-neutral window identifier (an X11 window or a Win32 HWND).
type WindowID uint64

// String renders the ID the way the native tooling does (xwininfo, Spy++).
func (id WindowID) String() string {
	return fmt.Sprintf("0x%x", uint64(id))
}

// Rect describes a window rectangle in virtual-screen coordinates.
// Right and Bottom are exclusive edges, matching GetWindowRect.
type Rect struct {
	Left   int `yaml:"left" json:"left"`
	Top    int `yaml:"top" json:"top"`
	Right  int `yaml:"right" json:"right"`
	Bottom int `yaml:"bottom" json:"bottom"`
}

// UnknownRect is the "never observed" sentinel stored for new windows.
var UnknownRect = Rect{Left: -1, Top: -1, Right: -1, Bottom: -1}

// Width returns the horizontal extent of r.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical extent of r.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Delta returns the total absolute coordinate difference between r and o.
func (r Rect) Delta(o Rect) int {
	return abs(r.Left-o.Left) + abs(r.Top-o.Top) + abs(r.Right-o.Right) + abs(r.Bottom-o.Bottom)
}

// Union returns the smallest rectangle covering both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Left:   min(r.Left, o.Left),
		Top:    min(r.Top, o.Top),
		Right:  max(r.Right, o.Right),
		Bottom: max(r.Bottom, o.Bottom),
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", r.Left, r.Top, r.Right, r.Bottom)
}

// Window is one enumerated window.
type Window struct {
	ID    WindowID
	Title string
}

// ZOrder selects how MoveResize restacks a window.
type ZOrder int

const (
	// ZOrderKeep leaves stacking untouched.
	ZOrderKeep ZOrder = iota
	// ZOrderTopmost pins the window above normal windows and shows it.
	ZOrderTopmost
)

var (
	// ErrAccessDenied marks windows owned by processes we may not inspect.
	ErrAccessDenied = errors.New("access denied")
	// ErrWindowGone marks a window destroyed between enumeration and query.
	ErrWindowGone = errors.New("window no longer exists")
	// ErrUnsupported is returned by New on platforms without a backend.
	ErrUnsupported = errors.New("window management is not supported on this platform")
)

// Expected reports whether err is one of the races that window enumeration
// runs into routinely against other processes.
func Expected(err error) bool {
	return errors.Is(err, ErrAccessDenied) || errors.Is(err, ErrWindowGone)
}

// Backend abstracts window-system operations across platforms.
//
// Windows and Children are lazy, finite sequences. A window that could not be
// inspected is yielded with a non-nil error and an ID but no title; consumers
// skip it and keep ranging. Stopping the range stops enumeration.
type Backend interface {
	Windows() iter.Seq2[Window, error]
	Children(parent WindowID) iter.Seq2[Window, error]
	WindowRect(id WindowID) (Rect, error)
	IsMinimized(id WindowID) (bool, error)
	IsEnabled(id WindowID) (bool, error)
	MoveResize(id WindowID, r Rect, z ZOrder) error
	VirtualScreen() (Rect, error)
	Close()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
