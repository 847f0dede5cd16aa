package matchers

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mattn/go-zglob"
)

// Glob is a single include or exclude rule.
// A pattern with no path separator is matched against the base name only,
// e.g. "*_char2d_*" or "*.manifest". Anything else is resolved to an absolute
// path and matched against the full path, e.g. "./old/**/*".
type Glob struct {
	Pattern  string
	Include  bool
	baseOnly bool
}

func NewGlob(pattern string, include bool) (*Glob, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty glob pattern")
	}

	g := &Glob{
		Include:  include,
		Pattern:  pattern,
		baseOnly: !strings.ContainsAny(pattern, `/\`),
	}

	if !g.baseOnly {
		abs, err := filepath.Abs(pattern)
		if err != nil {
			return nil, fmt.Errorf("unable to resolve \"%s\": %w", pattern, err)
		}
		g.Pattern = abs
	}

	if _, err := filepath.Match(g.Pattern, "foobar"); err != nil {
		return nil, fmt.Errorf("invalid glob \"%s\": %w", pattern, err)
	}
	return g, nil
}

func (g *Glob) Match(path string) bool {
	if g.baseOnly {
		ok, _ := filepath.Match(strings.ToLower(g.Pattern), strings.ToLower(filepath.Base(path)))
		return ok
	}
	ok, err := zglob.Match(g.Pattern, path)
	if err != nil {
		// Validated in NewGlob
		panic(err)
	}
	return ok
}

type GlobSet struct {
	DefaultInclude bool
	rules          []*Glob
}

func (s *GlobSet) Add(r *Glob) {
	s.rules = append(s.rules, r)
}

func (s *GlobSet) Len() int {
	return len(s.rules)
}

type flagValue struct {
	gs      *GlobSet
	include bool
}

func (f *flagValue) Set(pattern string) error {
	r, err := NewGlob(pattern, f.include)
	if err != nil {
		return err
	}
	f.gs.Add(r)
	return nil
}

func (f *flagValue) String() string {
	if f.gs == nil {
		return ""
	}
	return f.gs.String()
}

// FlagValue returns a flag.Value that appends include or exclude rules.
// Register both on the same GlobSet to interleave them in command-line order.
func (s *GlobSet) FlagValue(include bool) flag.Value {
	return &flagValue{
		gs:      s,
		include: include,
	}
}

func (s *GlobSet) String() string {
	elems := make([]string, 0, len(s.rules))
	for _, r := range s.rules {
		sign := "-"
		if r.Include {
			sign = "+"
		}
		elems = append(elems, sign+r.Pattern)
	}
	return strings.Join(elems, "\n")
}

// Includes reports whether path survives the rules.
// A later Glob overrides an earlier one relative to the order added.
// Default (before matching any rules) is the opposite of the first Glob type,
// so a list beginning with Include has an implicit "exclude all" base rule, and vice versa.
// An empty GlobSet returns DefaultInclude.
func (s *GlobSet) Includes(path string) bool {
	if len(s.rules) == 0 {
		return s.DefaultInclude
	}

	include := !s.rules[0].Include
	for _, r := range s.rules {
		if r.Match(path) {
			include = r.Include
		}
	}
	return include
}
