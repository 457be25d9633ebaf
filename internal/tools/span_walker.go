package tools

import (
	"fmt"

	"github.com/agusespa/prchunker/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ExtractOptions tunes span discovery.
type ExtractOptions struct {
	// Nested also emits definitions found inside function bodies.
	Nested bool
}

// spanGrammar describes, for one tree-sitter grammar, which nodes open a span
// and which ones are walked through without producing a span themselves.
type spanGrammar struct {
	classify   func(n *sitter.Node) (types.SpanKind, bool)
	name       func(n *sitter.Node, src []byte) string
	containers map[string]bool
	// attributes are leading children (decorators, annotations) left out of the span.
	attributes map[string]bool
}

func extractSpans(lang *sitter.Language, g spanGrammar, filePath string, src []byte, opts ExtractOptions) ([]types.SourceSpan, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("failed to set language for parser: %w", err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s: tree-sitter returned nil", filePath)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, &types.ParseError{Path: filePath, Line: firstErrorLine(root)}
	}

	return walkSpans(root, src, g, "", opts.Nested), nil
}

// walkSpans returns the spans below node in source order. Class members are
// always visited; function bodies only when nested is set.
func walkSpans(node *sitter.Node, src []byte, g spanGrammar, scope string, nested bool) []types.SourceSpan {
	var spans []types.SourceSpan

	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}

		kind, ok := g.classify(child)
		if !ok {
			if g.containers[child.Kind()] {
				spans = append(spans, walkSpans(child, src, g, scope, nested)...)
			}
			continue
		}

		name := g.name(child, src)
		if name == "" {
			continue
		}
		qualified := qualify(scope, name)

		spans = append(spans, types.SourceSpan{
			Kind:      kind,
			Name:      qualified,
			StartLine: g.startLine(child),
			EndLine:   endLine(child),
		})

		if kind == types.SpanClass || nested {
			spans = append(spans, walkSpans(child, src, g, qualified, nested)...)
		}
	}

	return spans
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

// startLine is the line of the first child that is not an attribute, so that
// decorators and annotations stacked above a signature stay outside the span.
func (g spanGrammar) startLine(n *sitter.Node) int {
	if row, ok := g.firstRow(n); ok {
		return int(row) + 1
	}
	return int(n.StartPosition().Row) + 1
}

func (g spanGrammar) firstRow(n *sitter.Node) (uint, bool) {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || g.attributes[child.Kind()] {
			continue
		}
		if child.Kind() == "modifiers" {
			if row, ok := g.firstRow(child); ok {
				return row, true
			}
			continue
		}
		return child.StartPosition().Row, true
	}
	return 0, false
}

func endLine(n *sitter.Node) int {
	start := n.StartPosition()
	end := n.EndPosition()
	// A node ending at column 0 stops at the newline of the previous row.
	if end.Column == 0 && end.Row > start.Row {
		return int(end.Row)
	}
	return int(end.Row) + 1
}

func firstErrorLine(n *sitter.Node) int {
	if n.IsError() || n.IsMissing() {
		return int(n.StartPosition().Row) + 1
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if line := firstErrorLine(child); line > 0 {
			return line
		}
	}
	return 0
}

func fieldText(n *sitter.Node, field string, src []byte) string {
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Utf8Text(src)
}

func kinds(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
