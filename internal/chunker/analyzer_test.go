package chunker

import (
	"fmt"
	"testing"

	"github.com/agusespa/prchunker/internal/tools"
	"github.com/agusespa/prchunker/internal/types"
	"github.com/agusespa/prchunker/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	spans map[string][]types.SourceSpan
	errs  map[string]error
}

func (f *fakeExtractor) ExtractSpans(filePath string, _ []byte, _ tools.ExtractOptions) ([]types.SourceSpan, error) {
	if err, ok := f.errs[filePath]; ok {
		return nil, err
	}
	if spans, ok := f.spans[filePath]; ok {
		return spans, nil
	}
	return nil, fmt.Errorf("%s: %w", filePath, types.ErrUnsupportedLanguage)
}

func newTestAnalyzer(t *testing.T, extractor SpanExtractor, mutate func(*Options)) *Analyzer {
	t.Helper()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	a, err := NewAnalyzer(extractor, opts)
	require.NoError(t, err)
	return a
}

func TestAnalyze_ChunksInFileOrder(t *testing.T) {
	extractor := &fakeExtractor{spans: map[string][]types.SourceSpan{
		"a.py": {span("one", 1, 5), span("two", 10, 20)},
		"b.py": {span("three", 1, 4)},
		"c.py": {span("four", 3, 9)},
	}}
	files := []types.FileChange{
		{Path: "a.py", Diff: "@@ -1,0 +2,1 @@\n+x\n@@ -9,0 +12,2 @@\n+y\n+z"},
		{Path: "b.py", Diff: "@@ -7 +7 @@\n-old\n+new"},
		{Path: "c.py", Diff: "@@ -4 +4 @@\n-old\n+new"},
	}

	for _, workers := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			a := newTestAnalyzer(t, extractor, func(o *Options) { o.Workers = workers })

			result := a.Analyze(files)

			require.Len(t, result.Chunks, 3)
			assert.Equal(t, "one", result.Chunks[0].Span.Name)
			assert.Equal(t, "two", result.Chunks[1].Span.Name)
			assert.Equal(t, "four", result.Chunks[2].Span.Name)
			assert.Equal(t, "c.py", result.Chunks[2].File)
			assert.Empty(t, result.Diagnostics)
		})
	}
}

func TestAnalyze_ExcerptCarriesTouchingHunks(t *testing.T) {
	extractor := &fakeExtractor{spans: map[string][]types.SourceSpan{
		"a.py": {span("one", 1, 5), span("two", 10, 20)},
	}}
	a := newTestAnalyzer(t, extractor, nil)

	result := a.Analyze([]types.FileChange{
		{Path: "a.py", Diff: "@@ -1,0 +2,1 @@\n+x\n@@ -9,0 +12,2 @@\n+y\n+z"},
	})

	require.Len(t, result.Chunks, 2)
	assert.Equal(t, "@@ -1,0 +2,1 @@\n+x", result.Chunks[0].Diff)
	assert.Equal(t, "@@ -9,0 +12,2 @@\n+y\n+z", result.Chunks[1].Diff)
}

func TestAnalyze_Diagnostics(t *testing.T) {
	extractor := &fakeExtractor{
		spans: map[string][]types.SourceSpan{
			"ok.py":  {span("f", 1, 3)},
			"bad.py": {span("g", 1, 3)},
		},
		errs: map[string]error{
			"broken.py": fmt.Errorf("python: %w", &types.ParseError{Path: "broken.py", Line: 4}),
		},
	}
	a := newTestAnalyzer(t, extractor, nil)

	result := a.Analyze([]types.FileChange{
		{Path: "broken.py", Diff: "@@ -1 +1 @@\n+x"},
		{Path: "notes.txt", Diff: "@@ -1 +1 @@\n+x"},
		{Path: "bad.py", Diff: "@@ -1 +1,x @@\n+x"},
		{Path: "ok.py", Diff: "@@ -2 +2 @@\n+x"},
	})

	require.Len(t, result.Chunks, 1)
	assert.Equal(t, "ok.py", result.Chunks[0].File)

	require.Len(t, result.Diagnostics, 3)
	assert.Equal(t, types.Diagnostic{Path: "broken.py", Reason: "python: broken.py: syntax error near line 4"}, result.Diagnostics[0])
	assert.Equal(t, types.Diagnostic{Path: "notes.txt", Reason: "unsupported file type"}, result.Diagnostics[1])
	assert.Equal(t, "bad.py", result.Diagnostics[2].Path)
	assert.Contains(t, result.Diagnostics[2].Reason, "diff: ")
}

func TestAnalyze_UnavailableContent(t *testing.T) {
	extractor := &fakeExtractor{spans: map[string][]types.SourceSpan{
		"a.py":   {span("f", 1, 3)},
		"big.py": {span("g", 1, 3)},
	}}
	a := newTestAnalyzer(t, extractor, nil)

	result := a.Analyze([]types.FileChange{
		{Path: "big.py", Diff: "@@ -1 +1 @@\n+x", Unavailable: "failed to decode big.py: unsupported content encoding: none"},
		{Path: "a.py", Diff: "@@ -2 +2 @@\n+x"},
	})

	require.Len(t, result.Chunks, 1)
	assert.Equal(t, "a.py", result.Chunks[0].File)
	assert.Equal(t, []types.Diagnostic{
		{Path: "big.py", Reason: "failed to decode big.py: unsupported content encoding: none"},
	}, result.Diagnostics)
}

func TestAnalyze_OversizedHunkStopsAtLastSpan(t *testing.T) {
	extractor := &fakeExtractor{spans: map[string][]types.SourceSpan{
		"a.py": {span("f", 1, 3), span("g", 5, 9)},
	}}
	a := newTestAnalyzer(t, extractor, nil)

	result := a.Analyze([]types.FileChange{{Path: "a.py", Diff: "@@ -1 +4,2000000000 @@"}})

	require.Len(t, result.Chunks, 1)
	assert.Equal(t, "g", result.Chunks[0].Span.Name)
}

func TestAnalyze_AllFilesFailIsNotAnError(t *testing.T) {
	a := newTestAnalyzer(t, &fakeExtractor{}, nil)

	result := a.Analyze([]types.FileChange{{Path: "a.rb"}, {Path: "b.rb"}})

	assert.Empty(t, result.Chunks)
	assert.Len(t, result.Diagnostics, 2)
}

func TestAnalyze_FilterOptIn(t *testing.T) {
	extractor := &fakeExtractor{spans: map[string][]types.SourceSpan{
		"a.py": {span("short", 1, 3), span("long", 5, 12)},
	}}
	files := []types.FileChange{{Path: "a.py", Diff: "@@ -1,12 +1,12 @@"}}

	a := newTestAnalyzer(t, extractor, func(o *Options) {
		o.MinLines, o.MaxLines = 5, 10
	})
	assert.Len(t, a.Analyze(files).Chunks, 2)

	a = newTestAnalyzer(t, extractor, func(o *Options) {
		o.MinLines, o.MaxLines = 5, 10
		o.FilterEnabled = true
	})
	result := a.Analyze(files)
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, "long", result.Chunks[0].Span.Name)
}

func TestAnalyze_AddedLineMode(t *testing.T) {
	extractor := &fakeExtractor{spans: map[string][]types.SourceSpan{
		"a.py": {span("first", 1, 3), span("second", 4, 8)},
	}}
	files := []types.FileChange{{Path: "a.py", Diff: "@@ -3,3 +3,3 @@\n x\n-y\n+z\n w"}}

	a := newTestAnalyzer(t, extractor, nil)
	assert.Len(t, a.Analyze(files).Chunks, 2)

	a = newTestAnalyzer(t, extractor, func(o *Options) { o.LineMode = utils.LineModeAdded })
	result := a.Analyze(files)
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, "second", result.Chunks[0].Span.Name)
}

func TestNewAnalyzer_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		field  string
	}{
		{"negative min", func(o *Options) { o.MinLines = -1 }, "min_lines"},
		{"max below min", func(o *Options) { o.MinLines, o.MaxLines = 10, 5 }, "max_lines"},
		{"line mode", func(o *Options) { o.LineMode = "words" }, "changed_lines"},
		{"workers", func(o *Options) { o.Workers = -2 }, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)

			_, err := NewAnalyzer(&fakeExtractor{}, opts)

			require.ErrorIs(t, err, types.ErrInvalidConfiguration)
			var cfgErr *types.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
