package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/agusespa/prchunker/internal/tools"
	"github.com/agusespa/prchunker/internal/types"
	"github.com/boyter/gocodewalker"
	"github.com/urfave/cli/v2"
)

type fileSpans struct {
	File  string             `json:"file"`
	Spans []types.SourceSpan `json:"spans,omitempty"`
	Error string             `json:"error,omitempty"`
}

func spansAction(cCtx *cli.Context) error {
	targets := cCtx.Args().Slice()
	if len(targets) == 0 {
		return fmt.Errorf("at least one file or directory is required")
	}
	format := cCtx.String("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %s. Must be one of text, json", format)
	}

	parserRegistry := tools.NewParserRegistry()
	paths, err := collectSourceFiles(targets, parserRegistry)
	if err != nil {
		return err
	}

	results := listSpans(paths, tools.NewDefaultRegistry("."), parserRegistry, tools.ExtractOptions{Nested: cCtx.Bool("nested")})
	return printSpans(os.Stdout, results, format)
}

// collectSourceFiles expands directories into the supported files below them.
// Files named explicitly are kept even when unsupported so that they are reported.
func collectSourceFiles(targets []string, parserRegistry *tools.ParserRegistry) ([]string, error) {
	var paths []string
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", target, err)
		}
		if !info.IsDir() {
			paths = append(paths, target)
			continue
		}

		fileListQueue := make(chan *gocodewalker.File, 100)
		walker := gocodewalker.NewFileWalker(target, fileListQueue)
		walker.ExcludeDirectory = []string{".git", "node_modules", "vendor"}

		errChan := make(chan error, 1)
		go func() {
			errChan <- walker.Start()
			close(errChan)
		}()

		for f := range fileListQueue {
			if parserRegistry.IsSupported(f.Location) && !parserRegistry.ShouldExcludeFile(f.Location) {
				paths = append(paths, f.Location)
			}
		}

		if err := <-errChan; err != nil {
			return nil, fmt.Errorf("error walking %s: %w", target, err)
		}
	}
	return paths, nil
}

func listSpans(paths []string, registry *tools.Registry, parserRegistry *tools.ParserRegistry, opts tools.ExtractOptions) []fileSpans {
	readTool := registry.Get(tools.ToolNameReadFile)

	results := make([]fileSpans, 0, len(paths))
	for _, path := range paths {
		result := fileSpans{File: path}

		content, err := readTool.Execute(map[string]any{"filename": path})
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		spans, err := parserRegistry.ExtractSpans(path, []byte(content), opts)
		if err != nil {
			result.Error = err.Error()
		}
		result.Spans = spans
		results = append(results, result)
	}
	return results
}

func printSpans(w io.Writer, results []fileSpans, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, result := range results {
		if result.Error != "" {
			fmt.Fprintf(w, "%s: %s\n", result.File, result.Error)
			continue
		}
		for _, span := range result.Spans {
			fmt.Fprintf(w, "%s:%d-%d\t%s\t%s\n", result.File, span.StartLine, span.EndLine, span.Kind, span.Name)
		}
	}
	return nil
}
