package agent

import (
	"fmt"

	"github.com/agusespa/prchunker/internal/types"
	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter selects the changed paths worth analyzing. With no include
// patterns every path is included; exclude patterns always win.
type PathFilter struct {
	include []string
	exclude []string
}

func NewPathFilter(include, exclude []string) (*PathFilter, error) {
	for _, pattern := range include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, &types.ConfigError{Field: "include", Reason: fmt.Sprintf("bad glob %q", pattern)}
		}
	}
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, &types.ConfigError{Field: "exclude", Reason: fmt.Sprintf("bad glob %q", pattern)}
		}
	}
	return &PathFilter{include: include, exclude: exclude}, nil
}

func (f *PathFilter) Allows(path string) bool {
	if matchAny(f.exclude, path) {
		return false
	}
	return len(f.include) == 0 || matchAny(f.include, path)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		// Patterns are validated up front, so Match cannot fail here.
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
