package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"sync"

	"gopkg.in/ini.v1"

	"github.com/1broseidon/winrestore/internal/platform"
)

// Store owns the parsed INI document and writes window rectangles back to it.
// Every key other than PosX0/PosY0/PosX1/PosY1 is written back untouched.
type Store struct {
	mu     sync.Mutex
	path   string
	mode   os.FileMode
	file   *ini.File
	config *Config
}

// Path returns the absolute path of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Config returns the configuration as it was loaded.
func (s *Store) Config() *Config {
	return s.config
}

// SaveRects updates the rectangle of every alias in rects and rewrites the
// file atomically. Aliases without a section are ignored.
func (s *Store) SaveRects(rects map[string]platform.Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for alias, r := range rects {
		sec, err := s.file.GetSection(alias)
		if err != nil || alias == ini.DefaultSection {
			continue
		}
		for _, kv := range rectKeys(r) {
			value := strconv.Itoa(kv.value)
			if k := lookup(sec, kv.name); k != nil {
				k.SetValue(value)
				continue
			}
			if _, err := sec.NewKey(kv.name, value); err != nil {
				return fmt.Errorf("failed to add %s.%s: %w", alias, kv.name, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := s.file.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.path, err)
	}

	mode := s.mode
	if mode == 0 {
		mode = 0o644
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), mode); err != nil {
		return fmt.Errorf("failed to write %q: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize %q: %w", s.path, err)
	}
	return nil
}
