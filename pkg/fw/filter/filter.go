package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Filter matches a fund by its code or name.
type Filter interface {
	Match(code, name string) bool
}

// Parse builds a filter from an expression:
// - Comma-separated exact codes or names: "161725,005827"
// - Glob: "16*"
// - Regex: "/^(0|1)6/"
// - Anything else: case-insensitive substring of code or name
func Parse(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Always(true), nil
	}
	if strings.HasPrefix(expr, "/") && strings.HasSuffix(expr, "/") && len(expr) > 2 {
		re, err := regexp.Compile(expr[1 : len(expr)-1])
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", expr, err)
		}
		return Regex{re: re}, nil
	}
	if strings.Contains(expr, ",") {
		set := map[string]struct{}{}
		for _, p := range strings.Split(expr, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			set[p] = struct{}{}
		}
		return ExactSet{set: set}, nil
	}
	if strings.ContainsAny(expr, "*?") {
		return Glob{pattern: expr}, nil
	}
	return SubstrCI{needle: expr}, nil
}

type Always bool

func (a Always) Match(string, string) bool { return bool(a) }

type ExactSet struct{ set map[string]struct{} }

func (e ExactSet) Match(code, name string) bool {
	if _, ok := e.set[code]; ok {
		return true
	}
	_, ok := e.set[name]
	return ok
}

type Glob struct{ pattern string }

func (g Glob) Match(code, name string) bool {
	if ok, _ := filepath.Match(g.pattern, code); ok {
		return true
	}
	ok, _ := filepath.Match(g.pattern, name)
	return ok
}

func (g Glob) String() string { return fmt.Sprintf("glob:%s", g.pattern) }

type Regex struct{ re *regexp.Regexp }

func (r Regex) Match(code, name string) bool {
	return r.re.MatchString(code) || r.re.MatchString(name)
}

func (r Regex) String() string { return fmt.Sprintf("regex:%s", r.re) }

// SubstrCI matches if code or name contains needle, case-insensitively.
type SubstrCI struct{ needle string }

func (s SubstrCI) Match(code, name string) bool {
	n := strings.ToLower(s.needle)
	return strings.Contains(strings.ToLower(code), n) || strings.Contains(strings.ToLower(name), n)
}

func (s SubstrCI) String() string { return fmt.Sprintf("substr-ci:%s", s.needle) }
