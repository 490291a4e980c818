// Package daemon runs the tracking loop that restores and follows configured
// windows.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/winrestore/internal/config"
	"github.com/1broseidon/winrestore/internal/enforcer"
	"github.com/1broseidon/winrestore/internal/geometry"
	"github.com/1broseidon/winrestore/internal/locator"
	"github.com/1broseidon/winrestore/internal/platform"
)

// Locator resolves a window spec to a live window.
type Locator interface {
	Locate(spec config.WindowSpec) (locator.Match, bool)
}

// Inspector reads live window state.
type Inspector interface {
	WindowRect(id platform.WindowID) (platform.Rect, error)
	IsMinimized(id platform.WindowID) (bool, error)
	IsEnabled(id platform.WindowID) (bool, error)
}

// Enforcer applies a stored rectangle to a window.
type Enforcer interface {
	Enforce(id platform.WindowID, target platform.Rect, onTop bool) enforcer.Result
}

// Validator rejects rectangles that must not be stored or applied.
type Validator interface {
	IsValid(r platform.Rect) bool
}

// Persister writes rectangles to durable storage.
type Persister interface {
	SaveRects(rects map[string]platform.Rect) error
}

// Observer receives a copy of every tracked window after each tick and a
// notification after each successful save. It runs on the reconciler
// goroutine and must not block.
type Observer interface {
	Tick(windows []Snapshot)
	Saved(at time.Time)
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Settings config.Settings
	Logger   *slog.Logger
	Observer Observer
}

// Reconciler periodically resolves every configured window, restores it once
// per appearance and records where the user puts it.
type Reconciler struct {
	interval  time.Duration
	batchSize int
	windows   []*TrackedWindow

	locator   Locator
	inspector Inspector
	enforcer  Enforcer
	validator Validator
	store     Persister
	observer  Observer
	logger    *slog.Logger

	// now is swapped out in tests.
	now func() time.Time
}

// NewReconciler creates a reconciler tracking specs.
func NewReconciler(cfg ReconcilerConfig, specs []config.WindowSpec, loc Locator, inspector Inspector, enf Enforcer, validator Validator, store Persister) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	windows := make([]*TrackedWindow, 0, len(specs))
	for _, spec := range specs {
		windows = append(windows, newTrackedWindow(spec))
	}

	return &Reconciler{
		interval:  cfg.Settings.RefreshInterval(),
		batchSize: cfg.Settings.BatchSize(),
		windows:   windows,
		locator:   loc,
		inspector: inspector,
		enforcer:  enf,
		validator: validator,
		store:     store,
		observer:  cfg.Observer,
		logger:    logger,
		now:       time.Now,
	}
}

// Run ticks every refresh interval and flushes rectangles to the store after
// every batch of ticks. It blocks until ctx is cancelled, then flushes once
// more and returns the error of that final flush.
func (r *Reconciler) Run(ctx context.Context) error {
	r.logger.Info("reconciler started",
		"interval", r.interval,
		"batch", r.batchSize,
		"windows", len(r.windows))

	for ctx.Err() == nil {
		for i := 0; i < r.batchSize; i++ {
			if ctx.Err() != nil {
				break
			}
			r.Tick()
			if !sleep(ctx, r.interval) {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}
		if err := r.Flush(); err != nil {
			r.logger.Error("failed to save window positions", "error", err)
		}
	}

	r.logger.Info("reconciler stopping, saving window positions")
	if err := r.Flush(); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	r.logger.Info("reconciler stopped")
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Tick performs a single pass over every tracked window.
func (r *Reconciler) Tick() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	for _, w := range r.windows {
		r.reconcile(w)
	}

	if r.observer != nil {
		r.observer.Tick(r.Snapshots())
	}
}

func (r *Reconciler) reconcile(w *TrackedWindow) {
	match, ok := r.locator.Locate(w.Spec)
	if !ok {
		if w.State != Unresolved {
			r.logger.Info("window gone", "alias", w.Spec.Alias, "window_id", w.Handle)
		}
		w.unresolve()
		return
	}

	if match.ID != w.Handle && w.State != Unresolved {
		r.logger.Info("window identity changed",
			"alias", w.Spec.Alias,
			"old_window_id", w.Handle,
			"window_id", match.ID)
	}
	w.resolve(match.ID, match.Title)

	if w.State == ResolvedInactive && !r.restore(w) {
		return
	}
	r.follow(w)
}

// restore applies the stored rectangle to a freshly resolved window. It
// returns false while the window is not ready to be restored.
func (r *Reconciler) restore(w *TrackedWindow) bool {
	enabled, err := r.inspector.IsEnabled(w.Handle)
	if err != nil {
		r.logger.Debug("failed to query window state", "alias", w.Spec.Alias, "window_id", w.Handle, "error", err)
		return false
	}
	minimized, err := r.inspector.IsMinimized(w.Handle)
	if err != nil {
		r.logger.Debug("failed to query window state", "alias", w.Spec.Alias, "window_id", w.Handle, "error", err)
		return false
	}
	if !enabled || minimized {
		w.Minimized = minimized
		return false
	}

	r.logger.Info("window appeared",
		"alias", w.Spec.Alias,
		"window_id", w.Handle,
		"title", w.Title,
		"rect", w.Rect)

	if r.validator.IsValid(w.Rect) {
		res := r.enforcer.Enforce(w.Handle, w.Rect, w.Spec.OnTop)
		r.logger.Debug("restored window",
			"alias", w.Spec.Alias,
			"window_id", w.Handle,
			"attempts", res.Attempts,
			"converged", res.Converged)
	}
	w.activate()
	return true
}

// follow records the current rectangle of an active window.
func (r *Reconciler) follow(w *TrackedWindow) {
	minimized, err := r.inspector.IsMinimized(w.Handle)
	if err != nil {
		r.logger.Debug("failed to query window state", "alias", w.Spec.Alias, "window_id", w.Handle, "error", err)
		return
	}
	rect, err := r.inspector.WindowRect(w.Handle)
	if err != nil {
		r.logger.Debug("failed to query window rectangle", "alias", w.Spec.Alias, "window_id", w.Handle, "error", err)
		return
	}

	// Some windows park at the sentinel position before reporting iconic.
	w.Minimized = minimized || geometry.IsSentinel(rect)
	if w.Minimized {
		return
	}
	if r.validator.IsValid(rect) {
		w.Rect = rect
	}
}

// Flush writes the last valid rectangle of every tracked window to the store.
func (r *Reconciler) Flush() error {
	rects := make(map[string]platform.Rect, len(r.windows))
	for _, w := range r.windows {
		rects[w.Spec.Alias] = w.Rect
	}
	if err := r.store.SaveRects(rects); err != nil {
		return err
	}
	if r.observer != nil {
		r.observer.Saved(r.now())
	}
	return nil
}

// Snapshots returns a copy of every tracked window in configuration order.
func (r *Reconciler) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(r.windows))
	for _, w := range r.windows {
		out = append(out, w.snapshot())
	}
	return out
}
