package chunker

import "github.com/agusespa/prchunker/internal/types"

// Intersect returns the spans that share at least one line with changed, in
// their original order. Enclosing spans are kept alongside the spans they
// contain unless suppressEnclosing is set, in which case an outer span is
// dropped when every changed line inside it is already covered by a smaller
// reported span nested within it.
func Intersect(spans []types.SourceSpan, changed types.ChangedLineSet, suppressEnclosing bool) []types.SourceSpan {
	hits := make([]types.SourceSpan, 0, len(spans))
	for _, span := range spans {
		if changed.Intersects(span.StartLine, span.EndLine) {
			hits = append(hits, span)
		}
	}

	if !suppressEnclosing || len(hits) < 2 {
		return hits
	}

	kept := make([]types.SourceSpan, 0, len(hits))
	for i, outer := range hits {
		if !coveredByInner(i, hits, changed) {
			kept = append(kept, outer)
		}
	}
	return kept
}

func coveredByInner(outerIdx int, hits []types.SourceSpan, changed types.ChangedLineSet) bool {
	outer := hits[outerIdx]
	hasInner := false

	for line := range changed {
		if line < outer.StartLine || line > outer.EndLine {
			continue
		}
		covered := false
		for j, inner := range hits {
			if j == outerIdx || !outer.Contains(inner) || inner.Lines() >= outer.Lines() {
				continue
			}
			if line >= inner.StartLine && line <= inner.EndLine {
				covered = true
				hasInner = true
				break
			}
		}
		if !covered {
			return false
		}
	}

	return hasInner
}
