// Package enforcer moves windows to a target rectangle and waits for them
// to stay there.
package enforcer

import (
	"log/slog"
	"time"

	"github.com/1broseidon/winrestore/internal/platform"
)

const (
	// MaxAttempts bounds how often a rectangle is re-applied to a window that
	// keeps repositioning itself after creation.
	MaxAttempts = 10
	// RetryDelay is the pause after each attempt before re-reading the window.
	RetryDelay = 50 * time.Millisecond
)

// Mover is the subset of platform.Backend the enforcer drives.
type Mover interface {
	MoveResize(id platform.WindowID, r platform.Rect, z platform.ZOrder) error
	WindowRect(id platform.WindowID) (platform.Rect, error)
}

// Validator rejects rectangles that must never be applied.
type Validator interface {
	IsValid(r platform.Rect) bool
}

// Result describes one Enforce call. Callers treat every outcome as done;
// the fields exist for logging and tests.
type Result struct {
	Skipped   bool // target rectangle was invalid, nothing was sent
	Attempts  int
	Converged bool
	Delta     int           // remaining total coordinate delta after the last attempt
	Observed  platform.Rect // last rectangle read back
	Err       error         // backend error that ended the attempts early
}

// Enforcer applies target rectangles with a bounded retry loop.
type Enforcer struct {
	mover     Mover
	validator Validator
	logger    *slog.Logger

	// Sleep is swapped out in tests.
	Sleep func(time.Duration)
}

// New creates an enforcer.
func New(mover Mover, validator Validator, logger *slog.Logger) *Enforcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enforcer{
		mover:     mover,
		validator: validator,
		logger:    logger,
		Sleep:     time.Sleep,
	}
}

// Enforce moves id to target. With onTop the window is also pinned above
// normal windows and shown; otherwise its stacking is left alone.
func (e *Enforcer) Enforce(id platform.WindowID, target platform.Rect, onTop bool) Result {
	if !e.validator.IsValid(target) {
		e.logger.Debug("not restoring to invalid rectangle", "window_id", id, "rect", target)
		return Result{Skipped: true}
	}

	z := platform.ZOrderKeep
	if onTop {
		z = platform.ZOrderTopmost
	}

	var res Result
	for res.Attempts < MaxAttempts {
		res.Attempts++

		if err := e.mover.MoveResize(id, target, z); err != nil {
			res.Err = err
			e.logger.Warn("move failed", "window_id", id, "rect", target, "attempt", res.Attempts, "error", err)
			return res
		}
		e.Sleep(RetryDelay)

		observed, err := e.mover.WindowRect(id)
		if err != nil {
			res.Err = err
			e.logger.Warn("failed to read back window rectangle", "window_id", id, "attempt", res.Attempts, "error", err)
			return res
		}
		res.Observed = observed
		res.Delta = target.Delta(observed)
		if res.Delta == 0 {
			res.Converged = true
			e.logger.Debug("window restored", "window_id", id, "rect", target, "attempts", res.Attempts)
			return res
		}
	}

	e.logger.Info("window did not settle at restored position",
		"window_id", id,
		"rect", target,
		"observed", res.Observed,
		"delta", res.Delta,
		"attempts", res.Attempts)
	return res
}
