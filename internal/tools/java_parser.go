package tools

import (
	"fmt"
	"strings"

	"github.com/agusespa/prchunker/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

var javaGrammar = spanGrammar{
	classify: func(n *sitter.Node) (types.SpanKind, bool) {
		switch n.Kind() {
		case "method_declaration", "constructor_declaration":
			return types.SpanFunction, true
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			return types.SpanClass, true
		}
		return "", false
	},
	name: func(n *sitter.Node, src []byte) string {
		return fieldText(n, "name", src)
	},
	containers: kinds("class_body", "interface_body", "enum_body", "enum_body_declarations", "block", "constructor_body"),
	attributes: kinds("marker_annotation", "annotation", "line_comment", "block_comment"),
}

type JavaParser struct {
	language *sitter.Language
}

func NewJavaParser() (*JavaParser, error) {
	lang := sitter.NewLanguage(tree_sitter_java.Language())
	if err := checkLanguage(lang); err != nil {
		return nil, err
	}
	return &JavaParser{language: lang}, nil
}

func (jp *JavaParser) Language() string {
	return "Java"
}

func (jp *JavaParser) SupportedExtensions() []string {
	return []string{".java"}
}

func (jp *JavaParser) ShouldExcludeFile(filePath string) bool {
	lowerPath := strings.ToLower(filePath)

	javaExcludePatterns := []string{
		"target/",
		"build/",
		"generated/",
		".gradle/",
	}

	for _, pattern := range javaExcludePatterns {
		if strings.Contains(lowerPath, pattern) {
			return true
		}
	}

	return false
}

func (jp *JavaParser) ExtractSpans(filePath string, content []byte, opts ExtractOptions) ([]types.SourceSpan, error) {
	spans, err := extractSpans(jp.language, javaGrammar, filePath, content, opts)
	if err != nil {
		return nil, fmt.Errorf("java: %w", err)
	}
	return spans, nil
}
