package chunker

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/agusespa/prchunker/internal/tools"
	"github.com/agusespa/prchunker/internal/types"
	"github.com/agusespa/prchunker/internal/utils"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMinLines        = 200
	DefaultMaxLines        = 800
	DefaultMaxExcerptLines = 50
)

// SpanExtractor turns file content into spans. *tools.ParserRegistry implements it.
type SpanExtractor interface {
	ExtractSpans(filePath string, content []byte, opts tools.ExtractOptions) ([]types.SourceSpan, error)
}

// Options configures an Analyzer. The zero value is not usable; start from DefaultOptions.
type Options struct {
	MinLines          int
	MaxLines          int
	FilterEnabled     bool
	SuppressEnclosing bool
	Nested            bool
	LineMode          utils.LineMode
	MaxExcerptLines   int
	Workers           int
	Logger            zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		MinLines:        DefaultMinLines,
		MaxLines:        DefaultMaxLines,
		LineMode:        utils.LineModeHunk,
		MaxExcerptLines: DefaultMaxExcerptLines,
		Workers:         runtime.NumCPU(),
		Logger:          zerolog.Nop(),
	}
}

func (o Options) Validate() error {
	if o.MinLines < 0 {
		return &types.ConfigError{Field: "min_lines", Reason: fmt.Sprintf("must not be negative, got %d", o.MinLines)}
	}
	if o.MaxLines < o.MinLines {
		return &types.ConfigError{Field: "max_lines", Reason: fmt.Sprintf("%d is below min_lines %d", o.MaxLines, o.MinLines)}
	}
	if _, err := utils.ParseLineMode(string(o.LineMode)); err != nil {
		return err
	}
	if o.Workers < 0 {
		return &types.ConfigError{Field: "workers", Reason: fmt.Sprintf("must not be negative, got %d", o.Workers)}
	}
	return nil
}

// Result is the aggregate of one analysis run, in input file order.
type Result struct {
	Chunks      []types.Chunk
	Diagnostics []types.Diagnostic
}

type Analyzer struct {
	extractor SpanExtractor
	opts      Options
}

// NewAnalyzer fails with a *types.ConfigError when opts are inconsistent.
func NewAnalyzer(extractor SpanExtractor, opts Options) (*Analyzer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.LineMode == "" {
		opts.LineMode = utils.LineModeHunk
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Analyzer{extractor: extractor, opts: opts}, nil
}

type fileResult struct {
	chunks     []types.Chunk
	diagnostic *types.Diagnostic
}

// Analyze finds the changed chunks of every file. Files are processed in
// parallel, but the result lists chunks file by file in input order. A file
// that cannot be parsed is skipped and reported in Diagnostics.
func (a *Analyzer) Analyze(files []types.FileChange) Result {
	results := make([]fileResult, len(files))

	var g errgroup.Group
	g.SetLimit(a.opts.Workers)
	for i, file := range files {
		g.Go(func() error {
			results[i] = a.analyzeFile(file)
			return nil
		})
	}
	_ = g.Wait()

	var result Result
	for _, r := range results {
		result.Chunks = append(result.Chunks, r.chunks...)
		if r.diagnostic != nil {
			result.Diagnostics = append(result.Diagnostics, *r.diagnostic)
		}
	}

	a.opts.Logger.Debug().
		Int("files", len(files)).
		Int("chunks", len(result.Chunks)).
		Int("skipped", len(result.Diagnostics)).
		Msg("analysis complete")

	return result
}

func (a *Analyzer) analyzeFile(file types.FileChange) fileResult {
	logger := a.opts.Logger.With().Str("file", file.Path).Logger()

	if file.Unavailable != "" {
		logger.Warn().Str("reason", file.Unavailable).Msg("skipping file")
		return fileResult{diagnostic: &types.Diagnostic{Path: file.Path, Reason: file.Unavailable}}
	}

	spans, err := a.extractor.ExtractSpans(file.Path, []byte(file.Content), tools.ExtractOptions{Nested: a.opts.Nested})
	if err != nil {
		reason := err.Error()
		if errors.Is(err, types.ErrUnsupportedLanguage) {
			reason = types.ErrUnsupportedLanguage.Error()
		}
		logger.Warn().Err(err).Msg("skipping file")
		return fileResult{diagnostic: &types.Diagnostic{Path: file.Path, Reason: reason}}
	}

	hunks, err := utils.ParseHunks(file.Diff)
	if err != nil {
		logger.Warn().Err(err).Msg("unreadable diff, file contributes no chunks")
		return fileResult{diagnostic: &types.Diagnostic{Path: file.Path, Reason: "diff: " + err.Error()}}
	}

	if len(spans) == 0 {
		logger.Debug().Msg("no spans")
		return fileResult{}
	}

	// lines past the last span cannot produce a chunk
	changed := utils.ChangedLinesWithin(hunks, a.opts.LineMode, lastSpanLine(spans))
	if changed.Len() == 0 {
		logger.Debug().Int("spans", len(spans)).Msg("no changed lines")
		return fileResult{}
	}

	hits := Intersect(spans, changed, a.opts.SuppressEnclosing)
	chunks := make([]types.Chunk, 0, len(hits))
	for _, span := range hits {
		chunks = append(chunks, types.Chunk{
			File: file.Path,
			Span: span,
			Diff: utils.ExtractExcerpt(hunks, span.StartLine, span.EndLine, a.opts.MaxExcerptLines),
		})
	}

	if a.opts.FilterEnabled {
		before := len(chunks)
		chunks = Filter(chunks, a.opts.MinLines, a.opts.MaxLines)
		if dropped := before - len(chunks); dropped > 0 {
			logger.Debug().Int("dropped", dropped).Msg("chunks outside line bounds")
		}
	}

	logger.Debug().
		Int("spans", len(spans)).
		Int("changed_lines", changed.Len()).
		Int("chunks", len(chunks)).
		Msg("file analyzed")

	return fileResult{chunks: chunks}
}

func lastSpanLine(spans []types.SourceSpan) int {
	last := 0
	for _, span := range spans {
		last = max(last, span.EndLine)
	}
	return last
}
