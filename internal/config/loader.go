package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/1broseidon/winrestore/internal/platform"
)

// DefaultConfigName is looked up in the working directory when no path is given.
const DefaultConfigName = "config.ini"

// INI key names. Lookups are case-insensitive so files rewritten by tools that
// lower-case option names keep loading.
const (
	keyRefreshRate    = "RefreshRateInSec"
	keySaveRate       = "SaveRateInMin"
	keyLiteralMatch   = "LiteralMatch"
	keyWindowTitle    = "WindowTitle"
	keyUseRegex       = "UseRegEx"
	keyCaseSensitive  = "CaseSensitive"
	keySearchChildren = "SearchChildren"
	keyOnTop          = "OnTop"
	keyPosX0          = "PosX0"
	keyPosY0          = "PosY0"
	keyPosX1          = "PosX1"
	keyPosY1          = "PosY1"
)

// DefaultConfigPath returns config.ini in the current working directory.
func DefaultConfigPath() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(wd, DefaultConfigName), nil
}

// LoadFromPath opens and parses the INI file at path. The file must exist.
func LoadFromPath(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("unable to find config file: %s", abs)
		}
		return nil, fmt.Errorf("%s: failed to read: %w", abs, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", abs)
	}

	file, err := ini.LoadSources(ini.LoadOptions{
		// Quotes are stripped by parseWindow so that saving writes the
		// title back exactly as authored.
		PreserveSurroundedQuote: true,
		// Titles routinely contain " #" and " ;". Only whole-line comments
		// are comments.
		IgnoreInlineComment: true,
	}, abs)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse: %w", abs, err)
	}

	cfg, err := parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}

	return &Store{path: abs, mode: info.Mode().Perm(), file: file, config: cfg}, nil
}

func parse(file *ini.File) (*Config, error) {
	cfg := &Config{Settings: DefaultSettings()}

	def := file.Section(ini.DefaultSection)
	var err error
	if cfg.Settings.RefreshSeconds, err = floatKey(def, keyRefreshRate, DefaultRefreshSeconds); err != nil {
		return nil, err
	}
	if cfg.Settings.SaveMinutes, err = floatKey(def, keySaveRate, DefaultSaveMinutes); err != nil {
		return nil, err
	}
	if k := lookup(def, keyLiteralMatch); k != nil {
		cfg.Settings.LiteralMatch = LiteralMatch(strings.ToLower(strings.TrimSpace(StripQuotes(k.String()))))
	}

	for _, sec := range file.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		spec, err := parseWindow(sec)
		if err != nil {
			return nil, err
		}
		cfg.Windows = append(cfg.Windows, spec)
	}
	return cfg, nil
}

func parseWindow(sec *ini.Section) (WindowSpec, error) {
	spec := NewWindowSpec(sec.Name(), "")
	if k := lookup(sec, keyWindowTitle); k != nil {
		spec.Title = StripQuotes(k.String())
	}

	var err error
	if spec.UseRegex, err = boolKey(sec, keyUseRegex, false); err != nil {
		return spec, err
	}
	if spec.CaseSensitive, err = boolKey(sec, keyCaseSensitive, true); err != nil {
		return spec, err
	}
	if spec.SearchChildren, err = boolKey(sec, keySearchChildren, false); err != nil {
		return spec, err
	}
	if spec.OnTop, err = boolKey(sec, keyOnTop, false); err != nil {
		return spec, err
	}

	coords := []struct {
		name string
		dst  *int
	}{
		{keyPosX0, &spec.Rect.Left},
		{keyPosY0, &spec.Rect.Top},
		{keyPosX1, &spec.Rect.Right},
		{keyPosY1, &spec.Rect.Bottom},
	}
	for _, c := range coords {
		if *c.dst, err = intKey(sec, c.name, -1); err != nil {
			return spec, err
		}
	}
	return spec, nil
}

// StripQuotes removes one pair of matching surrounding single or double quotes.
func StripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func lookup(sec *ini.Section, name string) *ini.Key {
	if sec.HasKey(name) {
		return sec.Key(name)
	}
	for _, k := range sec.Keys() {
		if strings.EqualFold(k.Name(), name) {
			return k
		}
	}
	return nil
}

func boolKey(sec *ini.Section, name string, def bool) (bool, error) {
	k := lookup(sec, name)
	if k == nil || strings.TrimSpace(k.String()) == "" {
		return def, nil
	}
	v, err := k.Bool()
	if err != nil {
		return def, &ValidationError{Path: sec.Name() + "." + name, Err: fmt.Errorf("not a boolean: %q", k.String())}
	}
	return v, nil
}

func intKey(sec *ini.Section, name string, def int) (int, error) {
	k := lookup(sec, name)
	if k == nil || strings.TrimSpace(k.String()) == "" {
		return def, nil
	}
	v, err := k.Int()
	if err != nil {
		return def, &ValidationError{Path: sec.Name() + "." + name, Err: fmt.Errorf("not an integer: %q", k.String())}
	}
	return v, nil
}

func floatKey(sec *ini.Section, name string, def float64) (float64, error) {
	k := lookup(sec, name)
	if k == nil || strings.TrimSpace(k.String()) == "" {
		return def, nil
	}
	v, err := k.Float64()
	if err != nil {
		return def, &ValidationError{Path: sec.Name() + "." + name, Err: fmt.Errorf("not a number: %q", k.String())}
	}
	return v, nil
}

// rectKeys lists the four persisted coordinates of r in file order.
func rectKeys(r platform.Rect) [4]struct {
	name  string
	value int
} {
	return [4]struct {
		name  string
		value int
	}{
		{keyPosX0, r.Left},
		{keyPosY0, r.Top},
		{keyPosX1, r.Right},
		{keyPosY1, r.Bottom},
	}
}
