package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/agusespa/prchunker/internal/types"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/go-diff/diff"
)

const devNull = "/dev/null"

// GitSource collects the files changed between two revisions of a local
// checkout: the content at head and the zero-context diff of each file. A
// staged source diffs the index against HEAD and reads content from the index.
type GitSource struct {
	registry *Registry
	base     string
	head     string
	staged   bool
	logger   zerolog.Logger
}

func NewGitSource(registry *Registry, base, head string, logger zerolog.Logger) *GitSource {
	return &GitSource{
		registry: registry,
		base:     base,
		head:     head,
		logger:   logger,
	}
}

func NewStagedGitSource(registry *Registry, logger zerolog.Logger) *GitSource {
	return &GitSource{
		registry: registry,
		staged:   true,
		logger:   logger,
	}
}

func (s *GitSource) Describe() string {
	if s.staged {
		return "staged changes"
	}
	return fmt.Sprintf("%s...%s", s.base, s.head)
}

func (s *GitSource) diffArgs() map[string]any {
	if s.staged {
		return map[string]any{"staged": true}
	}
	return map[string]any{"base": s.base, "head": s.head}
}

func (s *GitSource) showArgs(path string) map[string]any {
	if s.staged {
		return map[string]any{"index": true, "path": path}
	}
	return map[string]any{"ref": s.head, "path": path}
}

func (s *GitSource) revision() string {
	if s.staged {
		return "the index"
	}
	return s.head
}

// Changes lists every file of the diff. Content is read only for the files
// fetch wants; a file whose content cannot be read is returned with
// Unavailable set instead of failing the whole listing.
func (s *GitSource) Changes(ctx context.Context, fetch types.FetchFilter) ([]types.FileChange, error) {
	rawDiff, err := s.registry.Get(ToolNameGitDiff).Execute(s.diffArgs())
	if err != nil {
		return nil, fmt.Errorf("failed to get diff: %w", err)
	}

	fileDiffs, err := diff.ParseMultiFileDiff([]byte(rawDiff))
	if err != nil {
		return nil, fmt.Errorf("failed to split diff by file: %w", err)
	}

	showTool := s.registry.Get(ToolNameGitShow)
	changes := make([]types.FileChange, 0, len(fileDiffs))

	for _, fd := range fileDiffs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := newFilePath(fd)
		if path == "" {
			s.logger.Debug().Str("file", strings.TrimPrefix(fd.OrigName, "a/")).Msg("skipping deleted file")
			continue
		}

		fileDiff, err := diff.PrintFileDiff(fd)
		if err != nil {
			return nil, fmt.Errorf("failed to print diff for %s: %w", path, err)
		}
		change := types.FileChange{Path: path, Diff: string(fileDiff)}

		if fetch.Wants(path) {
			content, err := showTool.Execute(s.showArgs(path))
			if err != nil {
				s.logger.Warn().Err(err).Str("file", path).Msg("content unavailable")
				change.Unavailable = fmt.Sprintf("failed to read %s at %s: %s", path, s.revision(), strings.TrimSpace(err.Error()))
			} else {
				change.Content = content
			}
		}

		s.logger.Debug().Str("file", path).Int("hunks", len(fd.Hunks)).Msg("collected change")
		changes = append(changes, change)
	}

	return changes, nil
}

// newFilePath returns the post-change path of a file diff, or "" when the
// file was deleted.
func newFilePath(fd *diff.FileDiff) string {
	if fd.NewName == "" || fd.NewName == devNull {
		return ""
	}
	return strings.TrimPrefix(fd.NewName, "b/")
}
