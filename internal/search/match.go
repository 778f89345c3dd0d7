package search

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher tests text against a query.
type Matcher interface {
	Match(s string) bool
	String() string
}

type substring string

func (m substring) Match(s string) bool {
	return strings.Contains(strings.ToLower(s), string(m))
}

func (m substring) String() string { return string(m) }

type pattern struct {
	re *regexp.Regexp
}

func (m pattern) Match(s string) bool { return m.re.MatchString(s) }

func (m pattern) String() string { return m.re.String() }

// Substring matches text containing q, ignoring case.
func Substring(q string) Matcher {
	return substring(strings.ToLower(q))
}

// Regexp matches text against expr, ignoring case.
func Regexp(expr string) (Matcher, error) {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	return pattern{re: re}, nil
}

// NewMatcher returns a regular expression matcher when regex is set and a
// substring matcher otherwise.
func NewMatcher(q string, regex bool) (Matcher, error) {
	if regex {
		return Regexp(q)
	}
	return Substring(q), nil
}

// expandPattern turns a key path pattern into an anchored, case-insensitive
// expression. A segment that is exactly "*" matches one whole segment; a "*"
// inside a segment matches any run of non-separator characters.
func expandPattern(p string) *regexp.Regexp {
	segs := strings.Split(strings.Trim(p, `\`), `\`)
	for i, s := range segs {
		if s == "*" {
			segs[i] = `[^\\]+`
			continue
		}
		segs[i] = strings.ReplaceAll(regexp.QuoteMeta(s), `\*`, `[^\\]*`)
	}
	return regexp.MustCompile(`(?i)^` + strings.Join(segs, `\\`) + `$`)
}
