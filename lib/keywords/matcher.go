// Package keywords implements the keyword classification policy used to
// decide whether a scraped record is relevant. A policy is an ordered
// list of matchers, each configured with its own keyword or pattern
// set. An empty policy means "catch all": every record is relevant.
package keywords

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher tests a text against a configured keyword or pattern set and
// reports every keyword that occurred in it.
type Matcher interface {
	Match(text string) (matched bool, keywords []string)
}

// SubstringMatcher reports the configured keywords whose lowercased
// form occurs anywhere in the lowercased input.
type SubstringMatcher struct {
	keywords   []string
	normalized []string
}

func NewSubstringMatcher(kws ...string) SubstringMatcher {
	m := SubstringMatcher{}
	for _, kw := range kws {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		m.keywords = append(m.keywords, kw)
		m.normalized = append(m.normalized, strings.ToLower(kw))
	}
	return m
}

func (m SubstringMatcher) Match(text string) (bool, []string) {
	text = strings.ToLower(text)
	var found []string
	for i, norm := range m.normalized {
		if strings.Contains(text, norm) {
			found = append(found, m.keywords[i])
		}
	}
	return len(found) > 0, found
}

// Pattern associates a reported keyword with the regular expression
// that detects it.
type Pattern struct {
	Keyword string `json:"keyword"`
	Pattern string `json:"pattern"`
}

// RegexpMatcher reports the keyword of every pattern that occurs at
// least once in the input. Patterns are matched case-insensitively.
type RegexpMatcher struct {
	keywords []string
	patterns []*regexp.Regexp
}

func NewRegexpMatcher(patterns ...Pattern) (RegexpMatcher, error) {
	m := RegexpMatcher{}
	for _, p := range patterns {
		compiled, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			return RegexpMatcher{}, fmt.Errorf("pattern for %q: %w", p.Keyword, err)
		}
		m.keywords = append(m.keywords, p.Keyword)
		m.patterns = append(m.patterns, compiled)
	}
	return m, nil
}

func (m RegexpMatcher) Match(text string) (bool, []string) {
	var found []string
	for i, pattern := range m.patterns {
		if pattern.MatchString(text) {
			found = append(found, m.keywords[i])
		}
	}
	return len(found) > 0, found
}

// MatcherConfig is one entry of the configured policy.
type MatcherConfig struct {
	Kind     string    `json:"kind"`
	Keywords []string  `json:"keywords"`
	Patterns []Pattern `json:"patterns"`
}

// ParsePolicy builds the ordered matcher list from config. A nil or
// empty slice yields an empty policy (catch-all mode).
func ParsePolicy(configs []MatcherConfig) ([]Matcher, error) {
	var matchers []Matcher
	for _, cfg := range configs {
		switch cfg.Kind {
		case "substring":
			matchers = append(matchers, NewSubstringMatcher(cfg.Keywords...))
		case "regexp":
			m, err := NewRegexpMatcher(cfg.Patterns...)
			if err != nil {
				return nil, err
			}
			matchers = append(matchers, m)
		default:
			return nil, fmt.Errorf("unknown matcher kind %q", cfg.Kind)
		}
	}
	return matchers, nil
}
