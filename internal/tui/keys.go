package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

const keyCtrlC = 0x03

// WatchQuit reads single bytes from in and calls cancel on q, Q or Ctrl-C.
// It returns when a quit key was read, in fails, or ctx is done.
func WatchQuit(ctx context.Context, in io.Reader, cancel context.CancelFunc) {
	buf := make([]byte, 32)
	for ctx.Err() == nil {
		n, err := in.Read(buf)
		for _, b := range buf[:n] {
			if b == 'q' || b == 'Q' || b == keyCtrlC {
				cancel()
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// StartQuitListener puts stdin in raw mode and watches it for the quit key in
// the background. It returns a function that restores the terminal. When
// stdin is not a terminal no listener is started and only signals stop the
// program.
func StartQuitListener(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger) (restore func(), err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		logger.Info("stdin is not a terminal, quit key disabled")
		return func() {}, nil
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}

	// The reader stays blocked in Read after ctx is done; the process exits
	// right after shutdown so it is not joined.
	go WatchQuit(ctx, os.Stdin, cancel)

	return func() {
		if err := term.Restore(fd, oldState); err != nil {
			logger.Warn("failed to restore terminal", "error", err)
		}
	}, nil
}
