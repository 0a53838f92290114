// Package matcher matches display-set attributes against glob or regex
// patterns. Patterns are compiled once and safe for concurrent use.
package matcher

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/OHIF/Viewers-sub030/pkg/displayset"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto attempts to detect the pattern type.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Options configures the matcher behavior.
type Options struct {
	// CaseInsensitive makes matching case-insensitive
	CaseInsensitive bool
	// Anchored adds ^ and $ to regex patterns if not present
	Anchored bool
}

// Matcher is a compiled pattern.
type Matcher struct {
	pattern         string
	patternType     PatternType
	compiled        *regexp.Regexp
	glob            string
	caseInsensitive bool
}

// New compiles pattern. A nil opts matches case-sensitively.
func New(patternType PatternType, pattern string, opts *Options) (*Matcher, error) {
	if opts == nil {
		opts = &Options{}
	}
	m := &Matcher{
		pattern:         pattern,
		patternType:     patternType,
		caseInsensitive: opts.CaseInsensitive,
	}
	if patternType == Auto {
		m.patternType = detectPatternType(pattern)
	}

	switch m.patternType {
	case Glob:
		m.glob = pattern
		if opts.CaseInsensitive {
			m.glob = strings.ToLower(m.glob)
		}
		if _, err := path.Match(m.glob, ""); err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
	case Regex:
		expr := pattern
		if opts.Anchored {
			if !strings.HasPrefix(expr, "^") {
				expr = "^" + expr
			}
			if !strings.HasSuffix(expr, "$") {
				expr += "$"
			}
		}
		if opts.CaseInsensitive && !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		compiled, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		m.compiled = compiled
	default:
		return nil, fmt.Errorf("unsupported pattern type: %v", m.patternType)
	}
	return m, nil
}

// Match checks if the input matches the pattern.
func (m *Matcher) Match(input string) bool {
	switch m.patternType {
	case Glob:
		if m.caseInsensitive {
			input = strings.ToLower(input)
		}
		matched, _ := path.Match(m.glob, input)
		return matched
	case Regex:
		return m.compiled.MatchString(input)
	}
	return false
}

// Pattern returns the original pattern string.
func (m *Matcher) Pattern() string { return m.pattern }

// Type returns the resolved pattern type.
func (m *Matcher) Type() PatternType { return m.patternType }

// detectPatternType picks Regex when the pattern uses metacharacters
// glob does not have, and Glob otherwise.
func detectPatternType(pattern string) PatternType {
	for _, indicator := range []string{
		"^", "$", `\d`, `\w`, `\s`, `\D`, `\W`, `\S`,
		"(?:", "(?i)", "{", "}", "+", "|", "(", ")",
	} {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// Field selects the display-set attribute a predicate matches against.
type Field func(*displayset.DisplaySet) string

// Display-set fields.
var (
	SeriesDescription Field = func(ds *displayset.DisplaySet) string { return ds.SeriesDescription }
	Modality          Field = func(ds *displayset.DisplaySet) string { return ds.Modality }
	HandlerID         Field = func(ds *displayset.DisplaySet) string { return ds.HandlerID }
)

// Predicate returns a display-set predicate matching field against m.
func (m *Matcher) Predicate(field Field) func(*displayset.DisplaySet) bool {
	return func(ds *displayset.DisplaySet) bool {
		return m.Match(field(ds))
	}
}

// Description compiles a case-insensitive, auto-detected pattern into a
// SeriesDescription predicate.
func Description(pattern string) (func(*displayset.DisplaySet) bool, error) {
	m, err := New(Auto, pattern, &Options{CaseInsensitive: true})
	if err != nil {
		return nil, err
	}
	return m.Predicate(SeriesDescription), nil
}
