package config

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/1broseidon/winrestore/internal/platform"
)

// LiteralMatch selects how a non-regex WindowTitle is compared to a live title.
type LiteralMatch string

const (
	LiteralExact    LiteralMatch = "exact"    // Whole title must equal the pattern.
	LiteralContains LiteralMatch = "contains" // Pattern may appear anywhere in the title.
)

const (
	DefaultRefreshSeconds = 1.0
	DefaultSaveMinutes    = 1.0
)

// Settings holds the global tunables from the [DEFAULT] section.
type Settings struct {
	RefreshSeconds float64      `yaml:"refresh_rate_in_sec"`
	SaveMinutes    float64      `yaml:"save_rate_in_min"`
	LiteralMatch   LiteralMatch `yaml:"literal_match"`
}

// RefreshInterval is the pause between two reconciliation ticks.
func (s Settings) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshSeconds * float64(time.Second))
}

// BatchSize is the number of ticks between two saves:
// round(save minutes * 60 / refresh seconds), at least 1.
func (s Settings) BatchSize() int {
	if s.RefreshSeconds <= 0 {
		return 1
	}
	n := int(math.Round(s.SaveMinutes * 60 / s.RefreshSeconds))
	if n < 1 {
		return 1
	}
	return n
}

// WindowSpec identifies one tracked window. It is immutable for a run except
// for Rect, which holds the last persisted rectangle at load time.
type WindowSpec struct {
	Alias          string        `yaml:"alias"`
	Title          string        `yaml:"window_title"`
	UseRegex       bool          `yaml:"use_regex"`
	CaseSensitive  bool          `yaml:"case_sensitive"`
	SearchChildren bool          `yaml:"search_children"`
	OnTop          bool          `yaml:"on_top"`
	Rect           platform.Rect `yaml:"rect"`
}

// TitleRegexp is the expression a regex WindowTitle compiles to. It is
// anchored at the start of the title without having to consume all of it, and
// folds case with (?i) so classes like \S and \p{Lu} keep their meaning.
func (w WindowSpec) TitleRegexp() string {
	expr := `\A(?:` + w.Title + `)`
	if !w.CaseSensitive {
		expr = `(?i)` + expr
	}
	return expr
}

// Config is the typed view of the INI file.
type Config struct {
	Settings Settings     `yaml:"settings"`
	Windows  []WindowSpec `yaml:"windows"` // file order
}

// DefaultSettings returns the values used for keys missing from [DEFAULT].
func DefaultSettings() Settings {
	return Settings{
		RefreshSeconds: DefaultRefreshSeconds,
		SaveMinutes:    DefaultSaveMinutes,
		LiteralMatch:   LiteralExact,
	}
}

// NewWindowSpec returns a spec with the defaults applied to every optional key.
func NewWindowSpec(alias, title string) WindowSpec {
	return WindowSpec{
		Alias:         alias,
		Title:         title,
		CaseSensitive: true,
		Rect:          platform.UnknownRect,
	}
}

// ValidationError points at the offending section/key.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Validate checks values that parsed but cannot be used.
func (c *Config) Validate() error {
	if c.Settings.RefreshSeconds <= 0 {
		return &ValidationError{Path: "DEFAULT.RefreshRateInSec", Err: fmt.Errorf("must be > 0")}
	}
	if c.Settings.SaveMinutes <= 0 {
		return &ValidationError{Path: "DEFAULT.SaveRateInMin", Err: fmt.Errorf("must be > 0")}
	}
	switch c.Settings.LiteralMatch {
	case LiteralExact, LiteralContains:
	default:
		return &ValidationError{Path: "DEFAULT.LiteralMatch", Err: fmt.Errorf("must be one of: exact, contains")}
	}

	seen := make(map[string]struct{}, len(c.Windows))
	for _, w := range c.Windows {
		if _, dup := seen[w.Alias]; dup {
			return &ValidationError{Path: w.Alias, Err: fmt.Errorf("duplicate section")}
		}
		seen[w.Alias] = struct{}{}

		if strings.TrimSpace(w.Title) == "" {
			return &ValidationError{Path: w.Alias + ".WindowTitle", Err: fmt.Errorf("window title is required")}
		}
		if w.UseRegex {
			if _, err := regexp.Compile(w.TitleRegexp()); err != nil {
				return &ValidationError{Path: w.Alias + ".WindowTitle", Err: fmt.Errorf("invalid regular expression: %w", err)}
			}
		}
	}
	return nil
}

// Window returns the spec for alias.
func (c *Config) Window(alias string) (WindowSpec, bool) {
	for _, w := range c.Windows {
		if w.Alias == alias {
			return w, true
		}
	}
	return WindowSpec{}, false
}
