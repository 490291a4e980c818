//go:build linux

package platform

import (
	"errors"
	"fmt"
	"iter"

	"github.com/1broseidon/winrestore/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// New opens the native backend for this platform.
func New() (Backend, error) {
	b, err := NewLinuxBackendFromDisplay()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Close closes the underlying X11 connection.
func (b *LinuxBackend) Close() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Windows yields the EWMH client list in window-manager order.
func (b *LinuxBackend) Windows() iter.Seq2[Window, error] {
	return func(yield func(Window, error) bool) {
		conn, err := b.connection()
		if err != nil {
			yield(Window{}, err)
			return
		}

		clients, err := conn.ClientList()
		if err != nil {
			yield(Window{}, err)
			return
		}

		for _, windowID := range clients {
			if !yield(b.describe(windowID)) {
				return
			}
		}
	}
}

// Children yields every descendant of parent, depth-first.
func (b *LinuxBackend) Children(parent WindowID) iter.Seq2[Window, error] {
	return func(yield func(Window, error) bool) {
		conn, err := b.connection()
		if err != nil {
			yield(Window{ID: parent}, err)
			return
		}
		b.walk(conn, xproto.Window(parent), yield)
	}
}

func (b *LinuxBackend) walk(conn *x11.Connection, parent xproto.Window, yield func(Window, error) bool) bool {
	children, err := conn.Children(parent)
	if err != nil {
		return yield(Window{ID: WindowID(parent)}, mapError(err))
	}
	for _, child := range children {
		if !yield(b.describe(child)) {
			return false
		}
		if !b.walk(conn, child, yield) {
			return false
		}
	}
	return true
}

func (b *LinuxBackend) describe(windowID xproto.Window) (Window, error) {
	title, err := b.conn.WindowTitle(windowID)
	if err != nil {
		return Window{ID: WindowID(windowID)}, mapError(err)
	}
	return Window{ID: WindowID(windowID), Title: title}, nil
}

// WindowRect returns the outer rectangle in root coordinates.
func (b *LinuxBackend) WindowRect(id WindowID) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}
	geom, err := conn.WindowGeometry(xproto.Window(id))
	if err != nil {
		return Rect{}, mapError(err)
	}
	return Rect{
		Left:   geom.X,
		Top:    geom.Y,
		Right:  geom.X + geom.Width,
		Bottom: geom.Y + geom.Height,
	}, nil
}

// IsMinimized reports the hidden/iconic state.
func (b *LinuxBackend) IsMinimized(id WindowID) (bool, error) {
	conn, err := b.connection()
	if err != nil {
		return false, err
	}
	iconic, err := conn.IsIconified(xproto.Window(id))
	return iconic, mapError(err)
}

// IsEnabled reports whether the window is mapped.
func (b *LinuxBackend) IsEnabled(id WindowID) (bool, error) {
	conn, err := b.connection()
	if err != nil {
		return false, err
	}
	mapped, err := conn.IsMapped(xproto.Window(id))
	return mapped, mapError(err)
}

// MoveResize moves and resizes a window and optionally keeps it above others.
func (b *LinuxBackend) MoveResize(id WindowID, r Rect, z ZOrder) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	if z == ZOrderTopmost {
		if err := conn.KeepAbove(xproto.Window(id)); err != nil {
			return mapError(err)
		}
	}

	return mapError(conn.MoveResizeWindow(xproto.Window(id), x11.Geometry{
		X:      r.Left,
		Y:      r.Top,
		Width:  r.Width(),
		Height: r.Height(),
	}))
}

// VirtualScreen returns the bounding box of all active RandR monitors.
// Without RandR it falls back to the root window size.
func (b *LinuxBackend) VirtualScreen() (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}
	monitors, err := conn.GetMonitors()
	if err == nil && len(monitors) > 0 {
		return monitorBounds(monitors), nil
	}
	width, height, err := conn.RootSize()
	if err != nil {
		return Rect{}, err
	}
	return Rect{Right: width, Bottom: height}, nil
}

func monitorBounds(monitors []x11.Monitor) Rect {
	var bounds Rect
	for i, m := range monitors {
		r := Rect{Left: m.X, Top: m.Y, Right: m.X + m.Width, Bottom: m.Y + m.Height}
		if i == 0 {
			bounds = r
			continue
		}
		bounds = bounds.Union(r)
	}
	return bounds
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, x11.ErrBadWindow):
		return fmt.Errorf("%w: %v", ErrWindowGone, err)
	case errors.Is(err, x11.ErrBadAccess):
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	return err
}
