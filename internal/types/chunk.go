package types

// FileChange is one changed file as handed to the analyzer: its path, its
// post-change content and the unified diff for that file alone. Unavailable
// is set when the content could not be fetched; the file is then skipped
// with that reason.
type FileChange struct {
	Path        string
	Content     string
	Diff        string
	Unavailable string
}

// FetchFilter tells a change source whether the content of a path is worth
// fetching. Files it rejects are still listed, without content. A nil
// FetchFilter fetches everything.
type FetchFilter func(path string) bool

func (f FetchFilter) Wants(path string) bool {
	return f == nil || f(path)
}

// Chunk is a span that intersects at least one changed line.
type Chunk struct {
	File     string     `json:"file"`
	Span     SourceSpan `json:"span"`
	Diff     string     `json:"diff,omitempty"`     // Excerpt of the hunks touching the span
	Reviewer string     `json:"reviewer,omitempty"` // Set once the chunk is assigned
}

// ReviewerChunks is the ordered work list of a single reviewer.
type ReviewerChunks struct {
	Reviewer string  `json:"reviewer"`
	Chunks   []Chunk `json:"chunks"`
}

// Assignment maps reviewers to their chunks, in reviewer-list order.
type Assignment []ReviewerChunks

// Total returns the number of chunks across all reviewers.
func (a Assignment) Total() int {
	total := 0
	for _, rc := range a {
		total += len(rc.Chunks)
	}
	return total
}

// For returns the chunks assigned to reviewer, or nil when the reviewer is unknown.
func (a Assignment) For(reviewer string) []Chunk {
	for _, rc := range a {
		if rc.Reviewer == reviewer {
			return rc.Chunks
		}
	}
	return nil
}

// Diagnostic records why a file was skipped or contributed no chunks.
type Diagnostic struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}
