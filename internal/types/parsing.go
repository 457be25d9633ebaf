package types

import "slices"

// SpanKind identifies the kind of definition a SourceSpan covers.
type SpanKind string

const (
	SpanFunction SpanKind = "function"
	SpanClass    SpanKind = "class"
)

// SourceSpan is a named definition found while parsing a file.
// Lines are 1-based and refer to the post-change content of the file.
type SourceSpan struct {
	Kind      SpanKind `json:"kind"`
	Name      string   `json:"name"` // Qualified name, e.g. "Class.method"
	StartLine int      `json:"start_line"`
	EndLine   int      `json:"end_line"`
}

// Lines returns the number of lines covered by the span.
func (s SourceSpan) Lines() int {
	return s.EndLine - s.StartLine + 1
}

// Overlaps reports whether the span shares at least one line with [start, end].
func (s SourceSpan) Overlaps(start, end int) bool {
	return s.StartLine <= end && start <= s.EndLine
}

// Contains reports whether other lies entirely within s.
func (s SourceSpan) Contains(other SourceSpan) bool {
	return s.StartLine <= other.StartLine && other.EndLine <= s.EndLine
}

// ChangedLineSet holds the new-file line numbers touched by a diff.
type ChangedLineSet map[int]struct{}

func NewChangedLineSet(lines ...int) ChangedLineSet {
	set := make(ChangedLineSet, len(lines))
	for _, line := range lines {
		set.Add(line)
	}
	return set
}

func (s ChangedLineSet) Add(line int) {
	s[line] = struct{}{}
}

// AddRange adds every line of [start, start+count-1]. A zero or negative count adds nothing.
func (s ChangedLineSet) AddRange(start, count int) {
	for line := start; line < start+count; line++ {
		s.Add(line)
	}
}

func (s ChangedLineSet) Contains(line int) bool {
	_, ok := s[line]
	return ok
}

func (s ChangedLineSet) Len() int {
	return len(s)
}

// Sorted returns the lines in ascending order.
func (s ChangedLineSet) Sorted() []int {
	lines := make([]int, 0, len(s))
	for line := range s {
		lines = append(lines, line)
	}
	slices.Sort(lines)
	return lines
}

// Intersects reports whether any line of [start, end] is in the set.
func (s ChangedLineSet) Intersects(start, end int) bool {
	if end-start+1 > len(s) {
		for line := range s {
			if line >= start && line <= end {
				return true
			}
		}
		return false
	}
	for line := start; line <= end; line++ {
		if s.Contains(line) {
			return true
		}
	}
	return false
}
