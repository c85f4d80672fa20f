// Copyright (C) 2017 ScyllaDB

package inexlist

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

type signedPattern struct {
	Sign    bool
	Pattern string
	g       glob.Glob
}

func (sp signedPattern) String() string {
	if sp.Sign {
		return sp.Pattern
	}
	return "!" + sp.Pattern
}

// InExList is a list of glob patterns that can include or exclude (when
// prefixed with "!") values. The last matching pattern decides if a value
// is included.
type InExList struct {
	patterns []string
	list     []signedPattern
}

// ParseInExList takes a list of patterns such as
// [keyspace.* !keyspace.table_prefix_*] and builds a filter list.
func ParseInExList(patterns []string) (InExList, error) {
	out := InExList{
		patterns: patterns,
	}

	for _, p := range patterns {
		sign := true
		if strings.HasPrefix(p, "!") {
			sign = false
			p = strings.TrimPrefix(p, "!")
		}
		if p == "" {
			return InExList{}, errors.New("empty pattern")
		}

		g, err := glob.Compile(p)
		if err != nil {
			return InExList{}, errors.Wrapf(err, "invalid pattern %q", p)
		}

		out.list = append(out.list, signedPattern{
			Sign:    sign,
			Pattern: p,
			g:       g,
		})
	}

	return out, nil
}

// Patterns returns the original patterns.
func (l InExList) Patterns() []string {
	return l.patterns
}

// Check returns true iff s is included by the list.
// Empty list includes everything.
func (l InExList) Check(s string) bool {
	if len(l.list) == 0 {
		return true
	}

	ok := false
	for _, sp := range l.list {
		if sp.g.Match(s) {
			ok = sp.Sign
		}
	}
	return ok
}

// Filter returns the values from in that are included by the list.
func (l InExList) Filter(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if l.Check(s) {
			out = append(out, s)
		}
	}
	return out
}
