package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "winrestore"

// StateDir returns the directory winrestore keeps its log in, creating it
// if needed. Priority:
// 1) $XDG_STATE_HOME/winrestore (if set)
// 2) %LOCALAPPDATA%\winrestore (Windows only, if set)
// 3) ~/.local/state/winrestore (if the home directory is known)
// 4) <temp>/winrestore-<uid>
func StateDir() (string, error) {
	for _, dir := range candidates() {
		if err := os.MkdirAll(dir, 0700); err == nil {
			return dir, nil
		}
	}

	tmpDir := filepath.Join(os.TempDir(), fmt.Sprintf("%s-%d", appName, os.Getuid()))
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create state dir: %w", err)
	}
	return tmpDir, nil
}

func candidates() []string {
	var dirs []string
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		dirs = append(dirs, filepath.Join(stateHome, appName))
	}
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, appName))
		}
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, filepath.Join(home, ".local", "state", appName))
	}
	return dirs
}

// LogPath returns the default log file path.
func LogPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName+".log"), nil
}
