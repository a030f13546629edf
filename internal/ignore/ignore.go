// Package ignore matches sdk identifiers against configured glob patterns.
package ignore

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Patterns is a compiled set of glob patterns. A nil *Patterns matches nothing.
type Patterns struct {
	sources []string
	globs   []glob.Glob
}

// Compile compiles each non-empty pattern. Patterns use shell glob syntax
// ("*", "?", "[...]", "{a,b}") and are matched against the whole identifier.
func Compile(patterns ...string) (*Patterns, error) {
	p := &Patterns{}
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		g, err := glob.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("compile ignore pattern %q: %w", raw, err)
		}
		p.sources = append(p.sources, raw)
		p.globs = append(p.globs, g)
	}
	return p, nil
}

// Match reports whether id matches any pattern.
func (p *Patterns) Match(id string) bool {
	if p == nil {
		return false
	}
	for _, g := range p.globs {
		if g.Match(id) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (p *Patterns) Len() int {
	if p == nil {
		return 0
	}
	return len(p.globs)
}

func (p *Patterns) String() string {
	if p == nil {
		return ""
	}
	return strings.Join(p.sources, ",")
}
