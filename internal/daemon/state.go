package daemon

import (
	"github.com/1broseidon/winrestore/internal/config"
	"github.com/1broseidon/winrestore/internal/platform"
)

// State is where a tracked window is in its appearance episode.
type State int

const (
	// Unresolved means no live window matches the alias.
	Unresolved State = iota
	// ResolvedInactive means a window was found but its rectangle has not
	// been restored yet.
	ResolvedInactive
	// ResolvedActive means the window was restored and is being followed.
	ResolvedActive
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case ResolvedInactive:
		return "inactive"
	case ResolvedActive:
		return "active"
	default:
		return "unknown"
	}
}

// TrackedWindow is the runtime record for one configured window. Only Rect
// is ever persisted.
type TrackedWindow struct {
	Spec      config.WindowSpec
	Handle    platform.WindowID
	Title     string
	Active    bool
	Minimized bool
	Rect      platform.Rect
	State     State
}

func newTrackedWindow(spec config.WindowSpec) *TrackedWindow {
	return &TrackedWindow{Spec: spec, Rect: spec.Rect}
}

// resolve records the handle found this tick. A different handle than last
// tick starts a new appearance episode.
func (t *TrackedWindow) resolve(handle platform.WindowID, title string) {
	if handle != t.Handle || t.State == Unresolved {
		t.Active = false
		t.Minimized = false
		t.State = ResolvedInactive
	}
	t.Handle = handle
	t.Title = title
}

func (t *TrackedWindow) unresolve() {
	t.Handle = 0
	t.Title = ""
	t.Active = false
	t.Minimized = false
	t.State = Unresolved
}

func (t *TrackedWindow) activate() {
	t.Active = true
	t.State = ResolvedActive
}

// Snapshot is a copy of a TrackedWindow handed to observers outside the
// reconciler goroutine.
type Snapshot struct {
	Alias     string
	Title     string
	Handle    platform.WindowID
	Active    bool
	Minimized bool
	Rect      platform.Rect
	State     State
}

// HasPosition reports whether Rect reflects the live window.
func (s Snapshot) HasPosition() bool {
	return s.Active && !s.Minimized
}

func (t *TrackedWindow) snapshot() Snapshot {
	return Snapshot{
		Alias:     t.Spec.Alias,
		Title:     t.Title,
		Handle:    t.Handle,
		Active:    t.Active,
		Minimized: t.Minimized,
		Rect:      t.Rect,
		State:     t.State,
	}
}
