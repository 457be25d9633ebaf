package chunker

import "github.com/agusespa/prchunker/internal/types"

// Filter keeps the chunks whose span length lies in [minLines, maxLines].
func Filter(chunks []types.Chunk, minLines, maxLines int) []types.Chunk {
	kept := make([]types.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		lines := chunk.Span.Lines()
		if lines >= minLines && lines <= maxLines {
			kept = append(kept, chunk)
		}
	}
	return kept
}
