// Package geometry decides which window rectangles can be trusted.
package geometry

import (
	"log/slog"

	"github.com/1broseidon/winrestore/internal/platform"
)

// ScreenSource reports the current virtual screen bounds.
type ScreenSource interface {
	VirtualScreen() (platform.Rect, error)
}

// Validator checks rectangles against the live virtual screen.
type Validator struct {
	screen ScreenSource
	logger *slog.Logger
}

// NewValidator creates a validator. Bounds are queried on every call because
// monitors can be plugged and unplugged while we run.
func NewValidator(screen ScreenSource, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{screen: screen, logger: logger}
}

// IsValid reports whether r is a real, on-screen window rectangle.
func (v *Validator) IsValid(r platform.Rect) bool {
	if IsSentinel(r) {
		return false
	}

	bounds, err := v.screen.VirtualScreen()
	if err != nil {
		v.logger.Warn("failed to query virtual screen", "error", err)
		return false
	}
	return Within(r, bounds)
}

// IsSentinel reports the all-negative rectangle that minimized or hidden
// windows report (Win32 parks them at -32000; the config default is -1).
func IsSentinel(r platform.Rect) bool {
	return r.Left < 0 && r.Top < 0 && r.Right < 0 && r.Bottom < 0
}

// Within reports whether every coordinate of r lies inside bounds, edges
// included.
func Within(r, bounds platform.Rect) bool {
	for _, x := range []int{r.Left, r.Right} {
		if x < bounds.Left || x > bounds.Right {
			return false
		}
	}
	for _, y := range []int{r.Top, r.Bottom} {
		if y < bounds.Top || y > bounds.Bottom {
			return false
		}
	}
	return true
}
