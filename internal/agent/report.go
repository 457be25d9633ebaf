package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/agusespa/prchunker/internal/types"
	"github.com/agusespa/prchunker/internal/utils"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type ReportFormat string

const (
	FormatMarkdown ReportFormat = "markdown"
	FormatText     ReportFormat = "text"
	FormatJSON     ReportFormat = "json"
	FormatHTML     ReportFormat = "html"
)

func ParseFormat(s string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatText, "txt":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", &types.ConfigError{Field: "output.format", Reason: fmt.Sprintf("unknown format %q (want markdown, text, json or html)", s)}
}

// Report is everything a run produced, ready to be rendered.
type Report struct {
	Title         string             `json:"title"`
	Source        string             `json:"source,omitempty"`
	Repository    string             `json:"repository,omitempty"`
	PR            int                `json:"pr,omitempty"`
	FilterEnabled bool               `json:"filter_enabled"`
	MinLines      int                `json:"min_lines"`
	MaxLines      int                `json:"max_lines"`
	Assignment    types.Assignment   `json:"assignment"`
	Diagnostics   []types.Diagnostic `json:"diagnostics"`
}

// fileGroup holds one reviewer's chunks for a single file.
type fileGroup struct {
	path   string
	chunks []types.Chunk
}

// groupByFile keeps files in first-appearance order and chunks in input order.
func groupByFile(chunks []types.Chunk) []fileGroup {
	var groups []fileGroup
	index := make(map[string]int)
	for _, c := range chunks {
		i, ok := index[c.File]
		if !ok {
			i = len(groups)
			index[c.File] = i
			groups = append(groups, fileGroup{path: c.File})
		}
		groups[i].chunks = append(groups[i].chunks, c)
	}
	return groups
}

type ReportGenerator struct {
	format ReportFormat
}

func NewReportGenerator(format ReportFormat) *ReportGenerator {
	return &ReportGenerator{format: format}
}

// Render writes the report grouped by reviewer, then file, then chunk. It
// never reorders or drops chunks.
func (r *ReportGenerator) Render(w io.Writer, report *Report) error {
	switch r.format {
	case FormatText:
		return renderText(w, report)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatHTML:
		return renderHTML(w, report)
	default:
		_, err := io.WriteString(w, renderMarkdown(report))
		return err
	}
}

func kindMarker(kind types.SpanKind) string {
	if kind == types.SpanClass {
		return "🔸"
	}
	return "🔹"
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func renderMarkdown(report *Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", report.Title))
	if report.Repository != "" {
		sb.WriteString(fmt.Sprintf("**Repository**: %s\n", report.Repository))
	}
	if report.Source != "" {
		sb.WriteString(fmt.Sprintf("**Changes**: `%s`\n", report.Source))
	}
	if report.FilterEnabled {
		sb.WriteString(fmt.Sprintf("**Chunk Size**: %d-%d lines\n", report.MinLines, report.MaxLines))
	}
	sb.WriteString("\n")

	for _, rc := range report.Assignment {
		sb.WriteString(fmt.Sprintf("## 👤 %s (%s)\n\n", rc.Reviewer, pluralize(len(rc.Chunks), "chunk")))
		if len(rc.Chunks) == 0 {
			sb.WriteString("_Nothing to review._\n\n")
			continue
		}

		for _, group := range groupByFile(rc.Chunks) {
			if lang := utils.DetectLanguageFromFilePath(group.path); lang != "" {
				sb.WriteString(fmt.Sprintf("### 📄 %s (%s)\n\n", group.path, lang))
			} else {
				sb.WriteString(fmt.Sprintf("### 📄 %s\n\n", group.path))
			}
			for _, c := range group.chunks {
				sb.WriteString(fmt.Sprintf("#### %s %s `%s`\n", kindMarker(c.Span.Kind), c.Span.Kind, c.Span.Name))
				sb.WriteString(fmt.Sprintf("*Lines %d-%d*\n\n", c.Span.StartLine, c.Span.EndLine))
				if c.Diff != "" {
					sb.WriteString("```diff\n")
					sb.WriteString(c.Diff)
					sb.WriteString("\n```\n\n")
				}
			}
			sb.WriteString("---\n\n")
		}
	}

	if len(report.Diagnostics) > 0 {
		sb.WriteString("## Skipped files\n\n")
		for _, d := range report.Diagnostics {
			sb.WriteString(fmt.Sprintf("- `%s`: %s\n", d.Path, d.Reason))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("**Summary:** %s\n", Summary(report)))

	return sb.String()
}

func renderText(w io.Writer, report *Report) error {
	var sb strings.Builder

	sb.WriteString(report.Title + "\n")
	if report.Repository != "" {
		sb.WriteString("Repository: " + report.Repository + "\n")
	}
	if report.FilterEnabled {
		sb.WriteString(fmt.Sprintf("Chunk size: %d-%d lines\n", report.MinLines, report.MaxLines))
	}
	sb.WriteString("\n")

	for _, rc := range report.Assignment {
		sb.WriteString(fmt.Sprintf("%s (%s)\n", rc.Reviewer, pluralize(len(rc.Chunks), "chunk")))
		for _, group := range groupByFile(rc.Chunks) {
			sb.WriteString("  " + group.path + "\n")
			for _, c := range group.chunks {
				sb.WriteString(fmt.Sprintf("    %s %s (lines %d-%d)\n", c.Span.Kind, c.Span.Name, c.Span.StartLine, c.Span.EndLine))
			}
		}
	}

	if len(report.Diagnostics) > 0 {
		sb.WriteString("\nSkipped files\n")
		for _, d := range report.Diagnostics {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", d.Path, d.Reason))
		}
	}

	sb.WriteString("\n" + Summary(report) + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func renderHTML(w io.Writer, report *Report) error {
	var body bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(renderMarkdown(report)), &body); err != nil {
		return fmt.Errorf("failed to convert report to html: %w", err)
	}

	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(report.Title), body.String())
	return err
}

// Summary is the one-line outcome of a run: chunks per reviewer and skipped files.
func Summary(report *Report) string {
	parts := make([]string, 0, len(report.Assignment))
	for _, rc := range report.Assignment {
		parts = append(parts, fmt.Sprintf("%s %d", rc.Reviewer, len(rc.Chunks)))
	}

	summary := fmt.Sprintf("%s assigned", pluralize(report.Assignment.Total(), "chunk"))
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}
	if n := len(report.Diagnostics); n > 0 {
		summary += fmt.Sprintf(", %s skipped", pluralize(n, "file"))
	}
	return summary
}
