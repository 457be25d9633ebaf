package tools

import (
	"fmt"
	"strings"

	"github.com/agusespa/prchunker/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

// Go has no classes: struct and interface type specs stand in for them, and
// methods are named after their receiver type.
var goGrammar = spanGrammar{
	classify: func(n *sitter.Node) (types.SpanKind, bool) {
		switch n.Kind() {
		case "function_declaration", "method_declaration":
			return types.SpanFunction, true
		case "type_spec":
			if t := n.ChildByFieldName("type"); t != nil {
				switch t.Kind() {
				case "struct_type", "interface_type":
					return types.SpanClass, true
				}
			}
		}
		return "", false
	},
	name: func(n *sitter.Node, src []byte) string {
		name := fieldText(n, "name", src)
		if n.Kind() != "method_declaration" || name == "" {
			return name
		}
		if recv := goReceiverType(n, src); recv != "" {
			return recv + "." + name
		}
		return name
	},
	containers: kinds("type_declaration"),
	attributes: kinds("comment"),
}

// goReceiverType returns the bare receiver type name: "*Stack[T]" becomes "Stack".
func goReceiverType(method *sitter.Node, src []byte) string {
	receiver := method.ChildByFieldName("receiver")
	if receiver == nil {
		return ""
	}
	for i := uint(0); i < receiver.NamedChildCount(); i++ {
		param := receiver.NamedChild(i)
		if param == nil || param.Kind() != "parameter_declaration" {
			continue
		}
		recv := strings.TrimLeft(fieldText(param, "type", src), "*")
		if idx := strings.Index(recv, "["); idx >= 0 {
			recv = recv[:idx]
		}
		return strings.TrimSpace(recv)
	}
	return ""
}

type GoParser struct {
	language *sitter.Language
}

func NewGoParser() (*GoParser, error) {
	lang := sitter.NewLanguage(tree_sitter_go.Language())
	if err := checkLanguage(lang); err != nil {
		return nil, err
	}
	return &GoParser{language: lang}, nil
}

func (gp *GoParser) Language() string {
	return "Go"
}

func (gp *GoParser) SupportedExtensions() []string {
	return []string{".go"}
}

func (gp *GoParser) ShouldExcludeFile(filePath string) bool {
	lowerPath := strings.ToLower(filePath)

	if strings.HasPrefix(lowerPath, "vendor/") || strings.Contains(lowerPath, "/vendor/") {
		return true
	}

	goExcludeSuffixes := []string{
		".pb.go",
		"_gen.go",
		".gen.go",
		"_string.go", // stringer output
	}

	for _, suffix := range goExcludeSuffixes {
		if strings.HasSuffix(lowerPath, suffix) {
			return true
		}
	}

	return false
}

func (gp *GoParser) ExtractSpans(filePath string, content []byte, opts ExtractOptions) ([]types.SourceSpan, error) {
	spans, err := extractSpans(gp.language, goGrammar, filePath, content, opts)
	if err != nil {
		return nil, fmt.Errorf("go: %w", err)
	}
	return spans, nil
}
