package worktree

import "path/filepath"

// DefaultIgnore lists housekeeping files that are never tracked.
var DefaultIgnore = []string{
	".DS_Store",
	"Thumbs.db",
	"Makefile",
	"pom.xml",
	"gitlet-design.md",
}

// Ignore matches file names against glob patterns.
type Ignore struct {
	patterns []string
}

// NewIgnore combines DefaultIgnore with extra patterns.
func NewIgnore(extra ...string) *Ignore {
	patterns := make([]string, 0, len(DefaultIgnore)+len(extra))
	patterns = append(patterns, DefaultIgnore...)
	patterns = append(patterns, extra...)
	return &Ignore{patterns: patterns}
}

func (ig *Ignore) Match(name string) bool {
	if ig == nil {
		return false
	}
	for _, pattern := range ig.patterns {
		if pattern == name {
			return true
		}
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Filter drops ignored names.
func (ig *Ignore) Filter(names []string) []string {
	out := names[:0:0]
	for _, name := range names {
		if !ig.Match(name) {
			out = append(out, name)
		}
	}
	return out
}
