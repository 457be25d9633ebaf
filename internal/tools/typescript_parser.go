package tools

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agusespa/prchunker/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var typeScriptGrammar = spanGrammar{
	classify: func(n *sitter.Node) (types.SpanKind, bool) {
		switch n.Kind() {
		case "function_declaration", "generator_function_declaration", "method_definition":
			return types.SpanFunction, true
		case "class_declaration", "abstract_class_declaration":
			return types.SpanClass, true
		case "variable_declarator", "public_field_definition":
			// const handler = () => {...} and class fields holding arrow functions
			if v := n.ChildByFieldName("value"); v != nil && isTSFunctionValue(v.Kind()) {
				return types.SpanFunction, true
			}
		}
		return "", false
	},
	name: func(n *sitter.Node, src []byte) string {
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return ""
		}
		switch nameNode.Kind() {
		case "identifier", "type_identifier", "property_identifier", "private_property_identifier":
			return nameNode.Utf8Text(src)
		}
		return ""
	},
	containers: kinds(
		"export_statement",
		"lexical_declaration",
		"variable_declaration",
		"class_body",
		"statement_block",
		"arrow_function",
		"function_expression",
	),
	attributes: kinds("decorator", "comment"),
}

func isTSFunctionValue(kind string) bool {
	switch kind {
	case "arrow_function", "function_expression", "function", "generator_function":
		return true
	}
	return false
}

type TypeScriptParser struct {
	language *sitter.Language
	tsx      *sitter.Language
}

func NewTypeScriptParser() (*TypeScriptParser, error) {
	lang := sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	if err := checkLanguage(lang); err != nil {
		return nil, err
	}
	tsx := sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	if err := checkLanguage(tsx); err != nil {
		return nil, err
	}
	return &TypeScriptParser{language: lang, tsx: tsx}, nil
}

func (tp *TypeScriptParser) Language() string {
	return "TypeScript"
}

func (tp *TypeScriptParser) SupportedExtensions() []string {
	return []string{".ts", ".tsx"}
}

func (tp *TypeScriptParser) ShouldExcludeFile(filePath string) bool {
	lowerPath := strings.ToLower(filePath)

	tsExcludePatterns := []string{
		"node_modules/",
		"dist/",
		"build/",
		".next/",
		"coverage/",
		".d.ts", // Type definition files
	}

	for _, pattern := range tsExcludePatterns {
		if strings.Contains(lowerPath, pattern) {
			return true
		}
	}

	return false
}

func (tp *TypeScriptParser) ExtractSpans(filePath string, content []byte, opts ExtractOptions) ([]types.SourceSpan, error) {
	lang := tp.language
	if strings.EqualFold(filepath.Ext(filePath), ".tsx") {
		lang = tp.tsx
	}
	spans, err := extractSpans(lang, typeScriptGrammar, filePath, content, opts)
	if err != nil {
		return nil, fmt.Errorf("typescript: %w", err)
	}
	return spans, nil
}
