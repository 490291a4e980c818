package x11

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ErrBadWindow is returned when the server no longer knows a window.
var ErrBadWindow = errors.New("x11: bad window")

// ErrBadAccess is returned when the server refuses a request on a window.
var ErrBadAccess = errors.New("x11: bad access")

// Geometry is a window's outer position on the root window.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// ClientList returns the managed top-level windows in EWMH stacking-agnostic
// (mapping) order.
func (c *Connection) ClientList() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return clients, nil
}

// Children returns the direct children of a window.
func (c *Connection) Children(windowID xproto.Window) ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return nil, classify(err)
	}
	return tree.Children, nil
}

// WindowTitle returns _NET_WM_NAME, falling back to WM_NAME. An empty title is
// not an error.
func (c *Connection) WindowTitle(windowID xproto.Window) (string, error) {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title, nil
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title), nil
	}

	// Neither property set: distinguish "no title" from "no window".
	if _, gerr := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply(); gerr != nil {
		return "", classify(gerr)
	}
	return "", nil
}

// FrameExtents are the window manager decoration sizes around a client.
type FrameExtents struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// GetFrameExtents returns _NET_FRAME_EXTENTS, or zeros when the window manager
// does not publish them.
func (c *Connection) GetFrameExtents(windowID xproto.Window) FrameExtents {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return FrameExtents{}
	}
	return FrameExtents{
		Left:   int(extents.Left),
		Right:  int(extents.Right),
		Top:    int(extents.Top),
		Bottom: int(extents.Bottom),
	}
}

// Outer grows a client geometry by the frame extents.
func (e FrameExtents) Outer(client Geometry) Geometry {
	return Geometry{
		X:      client.X - e.Left,
		Y:      client.Y - e.Top,
		Width:  client.Width + e.Left + e.Right,
		Height: client.Height + e.Top + e.Bottom,
	}
}

// ClientSize returns the client width and height inside an outer geometry.
func (e FrameExtents) ClientSize(outer Geometry) (width, height int) {
	return max(1, outer.Width-e.Left-e.Right), max(1, outer.Height-e.Top-e.Bottom)
}

// WindowGeometry returns the window's outer (frame) rectangle in root
// coordinates, the same reference MoveResizeWindow positions.
func (c *Connection) WindowGeometry(windowID xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, classify(err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return Geometry{}, classify(err)
	}

	client := Geometry{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}
	return c.GetFrameExtents(windowID).Outer(client), nil
}

// IsIconified reports whether the window is minimized, either through
// _NET_WM_STATE_HIDDEN or the ICCCM IconicState.
func (c *Connection) IsIconified(windowID xproto.Window) (bool, error) {
	if states, err := ewmh.WmStateGet(c.XUtil, windowID); err == nil {
		for _, state := range states {
			if state == "_NET_WM_STATE_HIDDEN" {
				return true, nil
			}
		}
	}

	if st, err := icccm.WmStateGet(c.XUtil, windowID); err == nil {
		return st.State == icccm.StateIconic, nil
	}

	// No state properties at all; make sure the window still exists.
	if _, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply(); err != nil {
		return false, classify(err)
	}
	return false, nil
}

// IsMapped reports whether the window is mapped. X11 has no notion of a
// disabled window, so an unmapped window is the closest equivalent.
func (c *Connection) IsMapped(windowID xproto.Window) (bool, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return false, classify(err)
	}
	return attrs.MapState != xproto.MapStateUnmapped, nil
}

// MoveResizeWindow places the window's outer (frame) rectangle at the given
// geometry. _NET_MOVERESIZE_WINDOW takes the frame position but the client
// size, so the decorations are subtracted first.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, outer Geometry) error {
	// Maximized windows ignore geometry requests under most WMs.
	_ = c.unmaximizeWindow(windowID)

	width, height := c.GetFrameExtents(windowID).ClientSize(outer)
	err := ewmh.MoveresizeWindow(
		c.XUtil,
		windowID,
		outer.X, outer.Y, width, height,
	)
	if err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(outer.X, outer.Y, width, height)
	}
	return nil
}

// KeepAbove requests _NET_WM_STATE_ABOVE, maps the window and raises it.
func (c *Connection) KeepAbove(windowID xproto.Window) error {
	if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateAdd, "_NET_WM_STATE_ABOVE"); err != nil {
		return fmt.Errorf("failed to request above state: %w", err)
	}

	win := xwindow.New(c.XUtil, windowID)
	win.Map()
	return xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		windowID,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	).Check()
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state)
		}
	}
	return nil
}

// classify maps protocol errors onto the package sentinels so callers can
// test them with errors.Is.
func classify(err error) error {
	switch err.(type) {
	case xproto.WindowError, xproto.DrawableError:
		return fmt.Errorf("%w: %v", ErrBadWindow, err)
	case xproto.AccessError:
		return fmt.Errorf("%w: %v", ErrBadAccess, err)
	}
	return err
}
