package tools

import (
	"fmt"
	"strings"

	"github.com/agusespa/prchunker/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

// C structs and unions with a body are reported as classes. An anonymous
// struct wrapped in a typedef takes the typedef name.
var cGrammar = spanGrammar{
	classify: func(n *sitter.Node) (types.SpanKind, bool) {
		switch n.Kind() {
		case "function_definition":
			return types.SpanFunction, true
		case "struct_specifier", "union_specifier":
			if n.ChildByFieldName("body") != nil && n.ChildByFieldName("name") != nil {
				return types.SpanClass, true
			}
		case "type_definition":
			if anonymousRecord(n.ChildByFieldName("type")) {
				return types.SpanClass, true
			}
		}
		return "", false
	},
	name: func(n *sitter.Node, src []byte) string {
		switch n.Kind() {
		case "function_definition", "type_definition":
			return cDeclaratorName(n, src)
		}
		return fieldText(n, "name", src)
	},
	containers: kinds(
		"declaration",
		"type_definition",
		"preproc_ifdef",
		"preproc_if",
		"preproc_else",
		"preproc_elif",
		"linkage_specification",
		"declaration_list",
	),
	attributes: kinds("comment", "attribute_specifier"),
}

func anonymousRecord(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind() {
	case "struct_specifier", "union_specifier":
		return n.ChildByFieldName("body") != nil && n.ChildByFieldName("name") == nil
	}
	return false
}

// cDeclaratorName follows the declarator chain (pointer, function, array
// declarators) down to the identifier being declared.
func cDeclaratorName(n *sitter.Node, src []byte) string {
	d := n.ChildByFieldName("declarator")
	for d != nil {
		switch d.Kind() {
		case "identifier", "type_identifier", "field_identifier":
			return d.Utf8Text(src)
		}
		next := d.ChildByFieldName("declarator")
		if next == nil && d.NamedChildCount() > 0 {
			// parenthesized_declarator has no field names
			next = d.NamedChild(0)
		}
		d = next
	}
	return ""
}

type CParser struct {
	language *sitter.Language
}

func NewCParser() (*CParser, error) {
	lang := sitter.NewLanguage(tree_sitter_c.Language())
	if err := checkLanguage(lang); err != nil {
		return nil, err
	}
	return &CParser{language: lang}, nil
}

func (cp *CParser) Language() string {
	return "C"
}

func (cp *CParser) SupportedExtensions() []string {
	return []string{".c", ".h"}
}

func (cp *CParser) ShouldExcludeFile(filePath string) bool {
	lowerPath := strings.ToLower(filePath)

	cExcludePatterns := []string{
		"build/",
		"cmake-build-",
		"third_party/",
		"external/",
		".pb-c.c",
		".pb-c.h",
	}

	for _, pattern := range cExcludePatterns {
		if strings.Contains(lowerPath, pattern) {
			return true
		}
	}

	return false
}

func (cp *CParser) ExtractSpans(filePath string, content []byte, opts ExtractOptions) ([]types.SourceSpan, error) {
	spans, err := extractSpans(cp.language, cGrammar, filePath, content, opts)
	if err != nil {
		return nil, fmt.Errorf("c: %w", err)
	}
	return spans, nil
}
