package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/winrestore/internal/platform"
)

func writeConfig(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.ini")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadFromPath_MissingFileNamesAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := LoadFromPath("missing.ini")
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	want := filepath.Join(dir, "missing.ini")
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to include %q, got %v", want, err)
	}
}

func TestLoadFromPath_DefaultsApplied(t *testing.T) {
	path := writeConfig(t,
		"[Editor]",
		"WindowTitle = My Editor",
	)

	store, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := store.Config()
	if cfg.Settings != DefaultSettings() {
		t.Fatalf("expected default settings, got %+v", cfg.Settings)
	}
	if len(cfg.Windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(cfg.Windows))
	}

	w := cfg.Windows[0]
	want := NewWindowSpec("Editor", "My Editor")
	if w != want {
		t.Fatalf("got %+v, want %+v", w, want)
	}
	if w.Rect != platform.UnknownRect {
		t.Fatalf("expected unknown rect, got %v", w.Rect)
	}
}

func TestLoadFromPath_ParsesAllKeys(t *testing.T) {
	path := writeConfig(t,
		"[DEFAULT]",
		"RefreshRateInSec = 0.5",
		"SaveRateInMin = 2",
		"LiteralMatch = contains",
		"",
		"[Term]",
		`WindowTitle = "^bash.*"`,
		"UseRegEx = yes",
		"CaseSensitive = false",
		"SearchChildren = true",
		"OnTop = on",
		"PosX0 = 10",
		"PosY0 = 20",
		"PosX1 = 810",
		"PosY1 = 620",
	)

	store, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := store.Config()
	if cfg.Settings.RefreshSeconds != 0.5 || cfg.Settings.SaveMinutes != 2 {
		t.Fatalf("unexpected settings %+v", cfg.Settings)
	}
	if cfg.Settings.LiteralMatch != LiteralContains {
		t.Fatalf("expected contains, got %q", cfg.Settings.LiteralMatch)
	}

	w, ok := cfg.Window("Term")
	if !ok {
		t.Fatalf("expected Term section")
	}
	if w.Title != "^bash.*" {
		t.Fatalf("expected quotes stripped, got %q", w.Title)
	}
	if !w.UseRegex || w.CaseSensitive || !w.SearchChildren || !w.OnTop {
		t.Fatalf("unexpected flags %+v", w)
	}
	if w.Rect != (platform.Rect{Left: 10, Top: 20, Right: 810, Bottom: 620}) {
		t.Fatalf("unexpected rect %v", w.Rect)
	}
}

func TestLoadFromPath_DefaultSectionIsNotAWindow(t *testing.T) {
	path := writeConfig(t,
		"[DEFAULT]",
		"RefreshRateInSec = 1",
		"[A]",
		"WindowTitle = a",
		"[B]",
		"WindowTitle = b",
	)

	store, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var aliases []string
	for _, w := range store.Config().Windows {
		aliases = append(aliases, w.Alias)
	}
	if strings.Join(aliases, ",") != "A,B" {
		t.Fatalf("expected windows A,B in file order, got %v", aliases)
	}
}

func TestLoadFromPath_LowercaseKeysAccepted(t *testing.T) {
	path := writeConfig(t,
		"[Editor]",
		"windowtitle = My Editor",
		"posx0 = 1",
		"posy0 = 2",
		"posx1 = 3",
		"posy1 = 4",
	)

	store, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	w := store.Config().Windows[0]
	if w.Title != "My Editor" || w.Rect != (platform.Rect{Left: 1, Top: 2, Right: 3, Bottom: 4}) {
		t.Fatalf("unexpected spec %+v", w)
	}
}

func TestLoadFromPath_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		path  string
	}{
		{
			name:  "bad bool",
			lines: []string{"[A]", "WindowTitle = a", "UseRegEx = maybe"},
			path:  "A.UseRegEx",
		},
		{
			name:  "bad int",
			lines: []string{"[A]", "WindowTitle = a", "PosX0 = left"},
			path:  "A.PosX0",
		},
		{
			name:  "bad refresh",
			lines: []string{"[DEFAULT]", "RefreshRateInSec = 0"},
			path:  "DEFAULT.RefreshRateInSec",
		},
		{
			name:  "bad literal mode",
			lines: []string{"[DEFAULT]", "LiteralMatch = fuzzy"},
			path:  "DEFAULT.LiteralMatch",
		},
		{
			name:  "missing title",
			lines: []string{"[A]", "OnTop = true"},
			path:  "A.WindowTitle",
		},
		{
			name:  "bad regex",
			lines: []string{"[A]", "WindowTitle = ([", "UseRegEx = true"},
			path:  "A.WindowTitle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.lines...)
			_, err := LoadFromPath(path)
			if err == nil {
				t.Fatalf("expected error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
			if !strings.Contains(err.Error(), path) {
				t.Fatalf("expected error to include file path, got %v", err)
			}
		})
	}
}

func TestStripQuotes(t *testing.T) {
	tests := map[string]string{
		`"My Editor"`: "My Editor",
		`'My Editor'`: "My Editor",
		`"mixed'`:     `"mixed'`,
		`"`:           `"`,
		`""`:          "",
		`plain`:       "plain",
		`"'nested'"`:  `'nested'`,
	}
	for in, want := range tests {
		if got := StripQuotes(in); got != want {
			t.Errorf("StripQuotes(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSettings_BatchSize(t *testing.T) {
	tests := []struct {
		refresh float64
		save    float64
		want    int
	}{
		{refresh: 10, save: 1, want: 6},
		{refresh: 1, save: 1, want: 60},
		{refresh: 0.5, save: 1, want: 120},
		{refresh: 7, save: 1, want: 9}, // 8.57 rounds up
		{refresh: 120, save: 1, want: 1},
		{refresh: 1000, save: 1, want: 1},
	}
	for _, tt := range tests {
		s := Settings{RefreshSeconds: tt.refresh, SaveMinutes: tt.save}
		if got := s.BatchSize(); got != tt.want {
			t.Errorf("BatchSize(refresh=%v, save=%v) = %d, want %d", tt.refresh, tt.save, got, tt.want)
		}
	}
}

func TestStore_SaveRectsRoundTrip(t *testing.T) {
	path := writeConfig(t,
		"; my windows",
		"[DEFAULT]",
		"RefreshRateInSec = 2",
		"",
		"[Editor]",
		`WindowTitle = "My Editor"`,
		"OnTop = true",
		"PosX0 = -1",
		"PosY0 = -1",
		"PosX1 = -1",
		"PosY1 = -1",
		"",
		"[Other]",
		"WindowTitle = Slack | #general",
	)

	store, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	rects := map[string]platform.Rect{
		"Editor": {Left: 100, Top: 100, Right: 900, Bottom: 700},
		"Other":  {Left: -1920, Top: 0, Right: -10, Bottom: 1000},
	}
	if err := store.SaveRects(rects); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	for alias, want := range rects {
		w, ok := reloaded.Config().Window(alias)
		if !ok {
			t.Fatalf("missing %s after reload", alias)
		}
		if w.Rect != want {
			t.Fatalf("%s: rect %v, want %v", alias, w.Rect, want)
		}
	}

	editor, _ := reloaded.Config().Window("Editor")
	if editor.Title != "My Editor" || !editor.OnTop {
		t.Fatalf("expected authored keys preserved, got %+v", editor)
	}
	other, _ := reloaded.Config().Window("Other")
	if other.Title != "Slack | #general" {
		t.Fatalf("expected title with # kept whole, got %q", other.Title)
	}
	if reloaded.Config().Settings.RefreshSeconds != 2 {
		t.Fatalf("expected settings preserved, got %+v", reloaded.Config().Settings)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, line := range []string{`WindowTitle = "My Editor"`, "WindowTitle = Slack | #general", "; my windows"} {
		if !strings.Contains(string(data), line) {
			t.Fatalf("expected %q kept as authored, got:\n%s", line, data)
		}
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file removed, stat err = %v", err)
	}
}

func TestStore_SaveRectsIgnoresUnknownAlias(t *testing.T) {
	path := writeConfig(t, "[A]", "WindowTitle = a")
	store, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := store.SaveRects(map[string]platform.Rect{"Nope": {Left: 1}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	reloaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Config().Windows) != 1 {
		t.Fatalf("expected no section to be created, got %+v", reloaded.Config().Windows)
	}
}

func TestLoadFromPath_CaselessRegexKeepsClasses(t *testing.T) {
	path := writeConfig(t,
		"[Term]",
		`WindowTitle = \p{Lu}\S+`,
		"UseRegEx = true",
		"CaseSensitive = false",
	)

	store, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	w, _ := store.Config().Window("Term")
	if got, want := w.TitleRegexp(), `(?i)\A(?:\p{Lu}\S+)`; got != want {
		t.Fatalf("TitleRegexp() = %q, want %q", got, want)
	}
}

func TestLoadFromPath_CommentMarkersInsideTitles(t *testing.T) {
	path := writeConfig(t,
		"# whole-line comments still work",
		"[Slack]",
		"WindowTitle = Slack | #general",
		"[Issue]",
		`WindowTitle = "Issue #5 - Browser"`,
		"[Semi]",
		"WindowTitle = a ;b",
	)

	store, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[string]string{
		"Slack": "Slack | #general",
		"Issue": "Issue #5 - Browser",
		"Semi":  "a ;b",
	}
	for alias, title := range want {
		w, ok := store.Config().Window(alias)
		if !ok {
			t.Fatalf("missing %s", alias)
		}
		if w.Title != title {
			t.Errorf("%s: title %q, want %q", alias, w.Title, title)
		}
	}

	if err := store.SaveRects(map[string]platform.Rect{"Slack": {Left: 1, Top: 2, Right: 3, Bottom: 4}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	reloaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	for alias, title := range want {
		if w, _ := reloaded.Config().Window(alias); w.Title != title {
			t.Errorf("%s after save: title %q, want %q", alias, w.Title, title)
		}
	}
}
