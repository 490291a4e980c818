package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/1broseidon/winrestore/internal/runtimepath"
)

// setupLogging builds the process logger. Logs go to a file by default
// because stdout belongs to the status screen.
func setupLogging(path, level string, stderr io.Writer) (*slog.Logger, func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: use debug, info, warn or error", level)
	}

	var (
		out     io.Writer = stderr
		closeFn           = func() {}
	)
	if path != "-" {
		if path == "" {
			var err error
			if path, err = runtimepath.LogPath(); err != nil {
				return nil, nil, err
			}
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
	return logger, closeFn, nil
}
