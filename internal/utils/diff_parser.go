package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agusespa/prchunker/internal/types"
)

// LineMode selects which new-file lines of a hunk count as changed.
type LineMode string

const (
	// LineModeHunk counts every line of the hunk's new-file range.
	LineModeHunk LineMode = "hunk"
	// LineModeAdded counts only lines introduced by '+' body lines.
	LineModeAdded LineMode = "added"
)

func ParseLineMode(s string) (LineMode, error) {
	switch LineMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", LineModeHunk:
		return LineModeHunk, nil
	case LineModeAdded:
		return LineModeAdded, nil
	}
	return "", &types.ConfigError{Field: "changed_lines", Reason: fmt.Sprintf("unknown mode %q (want hunk or added)", s)}
}

type LineRange struct {
	Start int
	Count int
}

// End returns the last line of the range; it is Start-1 for an empty range.
func (r LineRange) End() int {
	return r.Start + r.Count - 1
}

// Hunk is one @@ section of a unified diff.
type Hunk struct {
	Header string
	Old    LineRange
	New    LineRange
	Body   []string
}

// Touches reports whether the hunk concerns any line of [start, end]. A pure
// deletion hunk touches the line it is anchored at.
func (h Hunk) Touches(start, end int) bool {
	last := h.New.End()
	if h.New.Count == 0 {
		last = h.New.Start
	}
	return h.New.Start <= end && start <= last
}

// ParseHunkHeader parses "@@ -a[,b] +c[,d] @@". It returns nil for anything else.
func ParseHunkHeader(header string) *LineRange {
	r := parseHunkRanges(header)
	if r == nil {
		return nil
	}
	return &r[1]
}

func parseHunkRanges(header string) []LineRange {
	// Example: @@ -1,4 +1,6 @@ func context
	fields := strings.Fields(header)
	if len(fields) < 4 || fields[0] != "@@" || fields[3] != "@@" {
		return nil
	}

	oldRange, ok := parseRange(fields[1], "-")
	if !ok {
		return nil
	}
	newRange, ok := parseRange(fields[2], "+")
	if !ok {
		return nil
	}
	return []LineRange{oldRange, newRange}
}

func parseRange(field, sign string) (LineRange, bool) {
	if !strings.HasPrefix(field, sign) {
		return LineRange{}, false
	}
	parts := strings.Split(strings.TrimPrefix(field, sign), ",")
	if len(parts) > 2 {
		return LineRange{}, false
	}

	start, err := strconv.Atoi(parts[0])
	if err != nil || start < 0 {
		return LineRange{}, false
	}

	count := 1
	if len(parts) > 1 {
		count, err = strconv.Atoi(parts[1])
		if err != nil || count < 0 {
			return LineRange{}, false
		}
	}

	return LineRange{Start: start, Count: count}, true
}

// ParseHunks splits a single-file unified diff into hunks. Lines before the
// first header (file headers, index lines) are ignored. A line that opens
// like a header but cannot be read yields a *types.DiffParseError.
func ParseHunks(diff string) ([]Hunk, error) {
	var hunks []Hunk
	var current *Hunk

	for _, line := range strings.Split(diff, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if strings.HasPrefix(line, "@@") {
			ranges := parseHunkRanges(line)
			if ranges == nil {
				return nil, &types.DiffParseError{Header: line}
			}
			hunks = append(hunks, Hunk{Header: line, Old: ranges[0], New: ranges[1]})
			current = &hunks[len(hunks)-1]
			continue
		}

		if current == nil || line == "" {
			continue
		}

		switch line[0] {
		case '+', '-', ' ', '\\':
			current.Body = append(current.Body, line)
		default:
			// Next file header or trailing noise ends the hunk.
			current = nil
		}
	}

	return hunks, nil
}

// ChangedLines returns the new-file lines changed by a single-file diff. On a
// malformed header the returned set is empty and the error says why.
func ChangedLines(diff string, mode LineMode) (types.ChangedLineSet, error) {
	hunks, err := ParseHunks(diff)
	if err != nil {
		return types.NewChangedLineSet(), err
	}
	return ChangedLinesFromHunks(hunks, mode), nil
}

func ChangedLinesFromHunks(hunks []Hunk, mode LineMode) types.ChangedLineSet {
	return ChangedLinesWithin(hunks, mode, 0)
}

// ChangedLinesWithin is ChangedLinesFromHunks limited to lines 1..lastLine;
// lastLine <= 0 means no limit. A hunk that carries a body never counts more
// new lines than the body holds, whatever its header claims.
func ChangedLinesWithin(hunks []Hunk, mode LineMode, lastLine int) types.ChangedLineSet {
	changed := types.NewChangedLineSet()

	for _, h := range hunks {
		if mode != LineModeAdded {
			count := h.New.Count
			if len(h.Body) > 0 {
				count = min(count, h.newSideLines())
			}
			if lastLine > 0 {
				count = min(count, lastLine-h.New.Start+1)
			}
			changed.AddRange(h.New.Start, count)
			continue
		}

		line := h.New.Start
		for _, body := range h.Body {
			switch body[0] {
			case '+':
				if lastLine <= 0 || line <= lastLine {
					changed.Add(line)
				}
				line++
			case ' ':
				line++
			}
		}
	}

	return changed
}

// newSideLines counts the body lines present in the new file.
func (h Hunk) newSideLines() int {
	n := 0
	for _, body := range h.Body {
		if body[0] == '+' || body[0] == ' ' {
			n++
		}
	}
	return n
}

// ExtractExcerpt joins the hunks touching [start, end], headers included.
// Output beyond maxLines lines is cut and marked; maxLines <= 0 means no limit.
func ExtractExcerpt(hunks []Hunk, start, end, maxLines int) string {
	var lines []string
	for _, h := range hunks {
		if !h.Touches(start, end) {
			continue
		}
		lines = append(lines, h.Header)
		lines = append(lines, h.Body...)
	}

	if maxLines > 0 && len(lines) > maxLines {
		lines = append(lines[:maxLines], "... (truncated)")
	}

	return strings.Join(lines, "\n")
}
