package tools

import (
	"fmt"
	"strings"

	"github.com/agusespa/prchunker/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

var pythonGrammar = spanGrammar{
	classify: func(n *sitter.Node) (types.SpanKind, bool) {
		switch n.Kind() {
		case "function_definition":
			return types.SpanFunction, true
		case "class_definition":
			return types.SpanClass, true
		}
		return "", false
	},
	name: func(n *sitter.Node, src []byte) string {
		return fieldText(n, "name", src)
	},
	containers: kinds("decorated_definition", "block"),
	attributes: kinds("decorator", "comment"),
}

type PythonParser struct {
	language *sitter.Language
}

func NewPythonParser() (*PythonParser, error) {
	lang := sitter.NewLanguage(tree_sitter_python.Language())
	if err := checkLanguage(lang); err != nil {
		return nil, err
	}
	return &PythonParser{language: lang}, nil
}

func (pp *PythonParser) Language() string {
	return "Python"
}

func (pp *PythonParser) SupportedExtensions() []string {
	return []string{".py", ".pyw"}
}

func (pp *PythonParser) ShouldExcludeFile(filePath string) bool {
	lowerPath := strings.ToLower(filePath)

	pythonExcludePatterns := []string{
		"__pycache__/",
		".pytest_cache/",
		"venv/",
		".venv/",
		"site-packages/",
		".tox/",
		"migrations/", // Generated by Django
		"_pb2.py",     // Generated by protoc
	}

	for _, pattern := range pythonExcludePatterns {
		if strings.Contains(lowerPath, pattern) {
			return true
		}
	}

	return false
}

func (pp *PythonParser) ExtractSpans(filePath string, content []byte, opts ExtractOptions) ([]types.SourceSpan, error) {
	spans, err := extractSpans(pp.language, pythonGrammar, filePath, content, opts)
	if err != nil {
		return nil, fmt.Errorf("python: %w", err)
	}
	return spans, nil
}
