package agent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/agusespa/prchunker/internal/assign"
	"github.com/agusespa/prchunker/internal/chunker"
	"github.com/agusespa/prchunker/internal/tools"
	"github.com/agusespa/prchunker/internal/types"
	"github.com/agusespa/prchunker/internal/utils"
	"github.com/agusespa/prchunker/pkg/config"
	"github.com/rs/zerolog"
)

// ChangeSource yields the changed files of one review: a local revision range
// or a pull request. Only files accepted by fetch need content; per-file
// failures are reported through FileChange.Unavailable.
type ChangeSource interface {
	Changes(ctx context.Context, fetch types.FetchFilter) ([]types.FileChange, error)
	Describe() string
}

// Publisher delivers a rendered markdown report somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, body string) error
}

type ChunkAgent struct {
	source         ChangeSource
	publisher      Publisher
	toolRegistry   *tools.Registry
	parserRegistry *tools.ParserRegistry
	config         *config.Config
	logger         zerolog.Logger
	stdout         io.Writer
	progress       func(stage string)
}

func NewChunkAgent(source ChangeSource, registry *tools.Registry, parserRegistry *tools.ParserRegistry, cfg *config.Config, logger zerolog.Logger) *ChunkAgent {
	return &ChunkAgent{
		source:         source,
		toolRegistry:   registry,
		parserRegistry: parserRegistry,
		config:         cfg,
		logger:         logger,
		stdout:         os.Stdout,
		progress:       func(string) {},
	}
}

// SetPublisher enables posting the report when github.comment is set.
func (a *ChunkAgent) SetPublisher(p Publisher) {
	a.publisher = p
}

// SetStdout redirects reports written to "-".
func (a *ChunkAgent) SetStdout(w io.Writer) {
	a.stdout = w
}

// SetProgress registers a callback told about each stage of a run.
func (a *ChunkAgent) SetProgress(fn func(stage string)) {
	a.progress = fn
}

// plan is the validated form of the configuration for one run.
type plan struct {
	reviewers []string
	policy    assign.Policy
	format    ReportFormat
	filter    *PathFilter
	analyzer  *chunker.Analyzer
}

func (a *ChunkAgent) prepare() (*plan, error) {
	cfg := a.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	policy, err := assign.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}
	lineMode, err := utils.ParseLineMode(cfg.ChangedLines)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	filter, err := NewPathFilter(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, err
	}

	opts := chunker.DefaultOptions()
	opts.MinLines = cfg.Filter.MinLines
	opts.MaxLines = cfg.Filter.MaxLines
	opts.FilterEnabled = cfg.Filter.Enabled
	opts.SuppressEnclosing = cfg.SuppressEnclosing
	opts.Nested = cfg.IncludeNested
	opts.LineMode = lineMode
	opts.MaxExcerptLines = cfg.Output.MaxExcerptLines
	if cfg.Workers > 0 {
		opts.Workers = cfg.Workers
	}
	opts.Logger = a.logger

	analyzer, err := chunker.NewAnalyzer(a.parserRegistry, opts)
	if err != nil {
		return nil, err
	}

	return &plan{
		reviewers: cfg.EffectiveReviewers(),
		policy:    policy,
		format:    format,
		filter:    filter,
		analyzer:  analyzer,
	}, nil
}

// Run collects the changes, splits them into chunks, assigns the chunks to
// reviewers and writes the report. Configuration errors fail before the
// source is read; per-file problems end up in Report.Diagnostics.
func (a *ChunkAgent) Run(ctx context.Context) (*Report, error) {
	p, err := a.prepare()
	if err != nil {
		return nil, err
	}

	a.progress(fmt.Sprintf("Collecting %s", a.source.Describe()))
	a.logger.Info().Str("source", a.source.Describe()).Msg("collecting changes")
	files, err := a.source.Changes(ctx, a.fetchFilter(p.filter))
	if err != nil {
		return nil, fmt.Errorf("failed to collect changes: %w", err)
	}

	selected := a.selectFiles(files, p.filter)
	a.progress(fmt.Sprintf("Analyzing %d files", len(selected)))
	a.logger.Info().Int("changed", len(files)).Int("selected", len(selected)).Msg("analyzing files")

	result := p.analyzer.Analyze(selected)

	assignment, err := assign.Distribute(result.Chunks, p.reviewers, p.policy)
	if err != nil {
		return nil, err
	}

	report := a.buildReport(assignment, result.Diagnostics)

	if err := a.writeReport(report, p.format); err != nil {
		return nil, err
	}

	if a.config.GitHub.Comment {
		if err := a.publish(ctx, report); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// fetchFilter accepts the paths the analyzer can use, so sources skip
// downloading lockfiles, assets and excluded trees.
func (a *ChunkAgent) fetchFilter(filter *PathFilter) types.FetchFilter {
	return func(path string) bool {
		return filter.Allows(path) &&
			a.parserRegistry.IsSupported(path) &&
			!a.parserRegistry.ShouldExcludeFile(path)
	}
}

func (a *ChunkAgent) selectFiles(files []types.FileChange, filter *PathFilter) []types.FileChange {
	selected := make([]types.FileChange, 0, len(files))
	for _, file := range files {
		if !filter.Allows(file.Path) {
			a.logger.Debug().Str("file", file.Path).Msg("excluded by glob")
			continue
		}
		if a.parserRegistry.ShouldExcludeFile(file.Path) {
			a.logger.Debug().Str("file", file.Path).Msg("excluded as generated or vendored")
			continue
		}
		selected = append(selected, file)
	}
	return selected
}

func (a *ChunkAgent) buildReport(assignment types.Assignment, diagnostics []types.Diagnostic) *Report {
	cfg := a.config

	title := "Review Chunks"
	if cfg.GitHub.PR > 0 {
		title = fmt.Sprintf("PR #%d Review Chunks", cfg.GitHub.PR)
	}
	if diagnostics == nil {
		diagnostics = []types.Diagnostic{}
	}

	return &Report{
		Title:         title,
		Source:        a.source.Describe(),
		Repository:    cfg.GitHub.Repository,
		PR:            cfg.GitHub.PR,
		FilterEnabled: cfg.Filter.Enabled,
		MinLines:      cfg.Filter.MinLines,
		MaxLines:      cfg.Filter.MaxLines,
		Assignment:    assignment,
		Diagnostics:   diagnostics,
	}
}

func (a *ChunkAgent) writeReport(report *Report, format ReportFormat) error {
	var buf bytes.Buffer
	if err := NewReportGenerator(format).Render(&buf, report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	path := a.config.Output.Path
	if path == "" || path == "-" {
		_, err := a.stdout.Write(buf.Bytes())
		return err
	}

	writeTool := a.toolRegistry.Get(tools.ToolNameWriteFile)
	if _, err := writeTool.Execute(map[string]any{
		"filename": path,
		"content":  buf.String(),
	}); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	a.logger.Info().Str("path", path).Msg("report saved")
	return nil
}

// publish always posts markdown, whatever the file format.
func (a *ChunkAgent) publish(ctx context.Context, report *Report) error {
	if a.publisher == nil {
		a.logger.Warn().Msg("comment requested but no publisher is configured")
		return nil
	}

	a.progress("Posting comment")
	var buf bytes.Buffer
	if err := NewReportGenerator(FormatMarkdown).Render(&buf, report); err != nil {
		return fmt.Errorf("failed to render comment: %w", err)
	}

	if err := a.publisher.Publish(ctx, buf.String()); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}

	a.logger.Info().Msg("report posted")
	return nil
}

// PrintSummary writes the one-line run summary, as shown after every run.
func PrintSummary(w io.Writer, report *Report) {
	fmt.Fprintln(w, "---")
	fmt.Fprintln(w, Summary(report))
}
