//go:build windows

package platform

import (
	"errors"
	"fmt"
	"iter"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetWindowRect    = user32.NewProc("GetWindowRect")
	procIsIconic         = user32.NewProc("IsIconic")
	procSetWindowPos     = user32.NewProc("SetWindowPos")
	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
)

const (
	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79

	swpNoZOrder    = 0x0004
	swpShowWindow  = 0x0040
	hwndTop        = uintptr(0)
	hwndTopmost    = ^uintptr(0) // (HWND)-1
	maxTitleLength = 512
)

// EnumWindows callbacks are a scarce resource (the runtime caps them), so one
// of each is created for the process and fed a *[]windows.HWND through lParam.
var (
	collectOnce     sync.Once
	collectCallback uintptr
)

func collector() uintptr {
	collectOnce.Do(func() {
		collectCallback = windows.NewCallback(func(hwnd windows.HWND, lparam uintptr) uintptr {
			list := (*[]windows.HWND)(unsafe.Pointer(lparam))
			*list = append(*list, hwnd)
			return 1
		})
	})
	return collectCallback
}

// WindowsBackend implements Backend on top of user32.
type WindowsBackend struct{}

var _ Backend = (*WindowsBackend)(nil)

// New opens the native backend for this platform.
func New() (Backend, error) {
	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("failed to load user32.dll: %w", err)
	}
	return &WindowsBackend{}, nil
}

// Close is a no-op; user32 holds no per-client connection.
func (b *WindowsBackend) Close() {}

// Windows yields top-level windows in EnumWindows (z) order.
func (b *WindowsBackend) Windows() iter.Seq2[Window, error] {
	return func(yield func(Window, error) bool) {
		var handles []windows.HWND
		if err := windows.EnumWindows(collector(), unsafe.Pointer(&handles)); err != nil && len(handles) == 0 {
			yield(Window{}, fmt.Errorf("EnumWindows: %w", mapErrno(err)))
			return
		}
		for _, hwnd := range handles {
			if !yield(describe(hwnd)) {
				return
			}
		}
	}
}

// Children yields all descendants of parent. EnumChildWindows already recurses.
func (b *WindowsBackend) Children(parent WindowID) iter.Seq2[Window, error] {
	return func(yield func(Window, error) bool) {
		var handles []windows.HWND
		windows.EnumChildWindows(windows.HWND(parent), collector(), unsafe.Pointer(&handles))
		for _, hwnd := range handles {
			if !yield(describe(hwnd)) {
				return
			}
		}
	}
}

func describe(hwnd windows.HWND) (Window, error) {
	title, err := windowText(hwnd)
	if err != nil {
		return Window{ID: WindowID(hwnd)}, err
	}
	return Window{ID: WindowID(hwnd), Title: title}, nil
}

func windowText(hwnd windows.HWND) (string, error) {
	buf := make([]uint16, maxTitleLength)
	n, err := windows.GetWindowText(hwnd, &buf[0], int32(len(buf)))
	if n == 0 && err != nil {
		var errno syscall.Errno
		if errors.As(err, &errno) && errno == 0 {
			return "", nil
		}
		return "", mapErrno(err)
	}
	return windows.UTF16ToString(buf[:n]), nil
}

// WindowRect returns GetWindowRect. Minimized windows report the
// (-32000, -32000) parking position.
func (b *WindowsBackend) WindowRect(id WindowID) (Rect, error) {
	var r windows.Rect
	ret, _, err := procGetWindowRect.Call(uintptr(id), uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return Rect{}, fmt.Errorf("GetWindowRect: %w", mapErrno(err))
	}
	return Rect{Left: int(r.Left), Top: int(r.Top), Right: int(r.Right), Bottom: int(r.Bottom)}, nil
}

// IsMinimized reports IsIconic.
func (b *WindowsBackend) IsMinimized(id WindowID) (bool, error) {
	if !windows.IsWindow(windows.HWND(id)) {
		return false, ErrWindowGone
	}
	ret, _, _ := procIsIconic.Call(uintptr(id))
	return ret != 0, nil
}

// IsEnabled reports IsWindowEnabled (false while a modal dialog owns it).
func (b *WindowsBackend) IsEnabled(id WindowID) (bool, error) {
	if !windows.IsWindow(windows.HWND(id)) {
		return false, ErrWindowGone
	}
	return windows.IsWindowEnabled(windows.HWND(id)), nil
}

// MoveResize issues SetWindowPos.
func (b *WindowsBackend) MoveResize(id WindowID, r Rect, z ZOrder) error {
	insertAfter, flags := hwndTop, uintptr(swpNoZOrder)
	if z == ZOrderTopmost {
		insertAfter, flags = hwndTopmost, uintptr(swpShowWindow)
	}

	ret, _, err := procSetWindowPos.Call(
		uintptr(id),
		insertAfter,
		uintptr(int32(r.Left)),
		uintptr(int32(r.Top)),
		uintptr(int32(r.Width())),
		uintptr(int32(r.Height())),
		flags,
	)
	if ret == 0 {
		return fmt.Errorf("SetWindowPos: %w", mapErrno(err))
	}
	return nil
}

// VirtualScreen returns the bounding rectangle of all monitors.
func (b *WindowsBackend) VirtualScreen() (Rect, error) {
	x := systemMetric(smXVirtualScreen)
	y := systemMetric(smYVirtualScreen)
	w := systemMetric(smCXVirtualScreen)
	h := systemMetric(smCYVirtualScreen)
	if w == 0 || h == 0 {
		return Rect{}, errors.New("GetSystemMetrics: virtual screen unavailable")
	}
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}, nil
}

func systemMetric(index int) int {
	ret, _, _ := procGetSystemMetrics.Call(uintptr(index))
	return int(int32(ret))
}

func mapErrno(err error) error {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return err
	}
	switch errno {
	case windows.ERROR_ACCESS_DENIED:
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	case windows.ERROR_INVALID_WINDOW_HANDLE:
		return fmt.Errorf("%w: %v", ErrWindowGone, err)
	}
	return err
}
