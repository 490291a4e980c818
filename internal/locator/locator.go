// Package locator resolves configured window identities to live windows.
package locator

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/1broseidon/winrestore/internal/config"
	"github.com/1broseidon/winrestore/internal/platform"
)

// Match is a resolved window.
type Match struct {
	ID    platform.WindowID
	Title string
}

// Locator finds at most one window per spec. It is not safe for concurrent
// use; the reconciler owns it.
type Locator struct {
	backend platform.Backend
	literal config.LiteralMatch
	logger  *slog.Logger

	patterns map[string]*regexp.Regexp
	badRegex map[string]bool
}

// New creates a locator over backend.
func New(backend platform.Backend, literal config.LiteralMatch, logger *slog.Logger) *Locator {
	if literal == "" {
		literal = config.LiteralExact
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{
		backend:  backend,
		literal:  literal,
		logger:   logger,
		patterns: make(map[string]*regexp.Regexp),
		badRegex: make(map[string]bool),
	}
}

// Locate returns the first window, in OS enumeration order, whose title
// matches spec. With SearchChildren set, the first matching descendant of
// that window is preferred over the window itself.
func (l *Locator) Locate(spec config.WindowSpec) (Match, bool) {
	matches := l.matcher(spec)
	if matches == nil {
		return Match{}, false
	}

	for w, err := range l.backend.Windows() {
		if err != nil {
			l.skip(spec, w, err)
			continue
		}
		if w.Title == "" || !matches(w.Title) {
			continue
		}

		top := Match{ID: w.ID, Title: w.Title}
		if spec.SearchChildren {
			if child, ok := l.locateChild(spec, w.ID, matches); ok {
				return child, true
			}
		}
		return top, true
	}
	return Match{}, false
}

func (l *Locator) locateChild(spec config.WindowSpec, parent platform.WindowID, matches func(string) bool) (Match, bool) {
	for w, err := range l.backend.Children(parent) {
		if err != nil {
			l.skip(spec, w, err)
			continue
		}
		if w.Title != "" && matches(w.Title) {
			return Match{ID: w.ID, Title: w.Title}, true
		}
	}
	return Match{}, false
}

func (l *Locator) skip(spec config.WindowSpec, w platform.Window, err error) {
	if platform.Expected(err) {
		l.logger.Debug("skipping window", "alias", spec.Alias, "window_id", w.ID, "error", err)
		return
	}
	l.logger.Error("unexpected error enumerating windows",
		"alias", spec.Alias,
		"window_id", w.ID,
		"error", err)
}

// matcher builds the title predicate for spec, or nil when the spec can
// never match.
func (l *Locator) matcher(spec config.WindowSpec) func(string) bool {
	if spec.UseRegex {
		re := l.compile(spec.Alias, spec.TitleRegexp())
		if re == nil {
			return nil
		}
		return re.MatchString
	}

	pattern := spec.Title
	fold := func(s string) string { return s }
	if !spec.CaseSensitive {
		pattern = strings.ToLower(pattern)
		fold = strings.ToLower
	}
	if l.literal == config.LiteralContains {
		return func(title string) bool { return strings.Contains(fold(title), pattern) }
	}
	return func(title string) bool { return fold(title) == pattern }
}

func (l *Locator) compile(alias, expr string) *regexp.Regexp {
	if re, ok := l.patterns[expr]; ok {
		return re
	}
	if l.badRegex[expr] {
		return nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		l.badRegex[expr] = true
		l.logger.Error("invalid title pattern", "alias", alias, "pattern", expr, "error", err)
		return nil
	}
	l.patterns[expr] = re
	return re
}
