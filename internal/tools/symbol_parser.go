package tools

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agusespa/prchunker/internal/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

type LanguageParser interface {
	// ExtractSpans returns the function and class spans of a file in source order.
	// Malformed content yields a *types.ParseError.
	ExtractSpans(filePath string, content []byte, opts ExtractOptions) ([]types.SourceSpan, error)

	// SupportedExtensions returns the file extensions this parser can handle
	SupportedExtensions() []string

	// Language returns the human-readable name of the language this parser handles
	Language() string

	// ShouldExcludeFile reports generated or vendored files that are not worth reviewing
	ShouldExcludeFile(filePath string) bool
}

type ParserRegistry struct {
	parsers map[string]LanguageParser
}

func NewParserRegistry() *ParserRegistry {
	registry := &ParserRegistry{
		parsers: make(map[string]LanguageParser),
	}

	pythonParser, err := NewPythonParser()
	if err != nil {
		panic(fmt.Errorf("failed to create Python parser: %w", err))
	}
	registry.RegisterParser(pythonParser)

	goParser, err := NewGoParser()
	if err != nil {
		panic(fmt.Errorf("failed to create Go parser: %w", err))
	}
	registry.RegisterParser(goParser)

	javaParser, err := NewJavaParser()
	if err != nil {
		panic(fmt.Errorf("failed to create Java parser: %w", err))
	}
	registry.RegisterParser(javaParser)

	tsParser, err := NewTypeScriptParser()
	if err != nil {
		panic(fmt.Errorf("failed to create TypeScript parser: %w", err))
	}
	registry.RegisterParser(tsParser)

	cParser, err := NewCParser()
	if err != nil {
		panic(fmt.Errorf("failed to create C parser: %w", err))
	}
	registry.RegisterParser(cParser)

	return registry
}

func (pr *ParserRegistry) RegisterParser(parser LanguageParser) {
	for _, ext := range parser.SupportedExtensions() {
		pr.parsers[ext] = parser
	}
}

// ExtractSpans dispatches to the parser registered for the file extension.
// Files without a parser yield types.ErrUnsupportedLanguage.
func (pr *ParserRegistry) ExtractSpans(filePath string, content []byte, opts ExtractOptions) ([]types.SourceSpan, error) {
	parser := pr.GetParser(filePath)
	if parser == nil {
		return nil, fmt.Errorf("%s: %w", filePath, types.ErrUnsupportedLanguage)
	}

	return parser.ExtractSpans(filePath, content, opts)
}

func (pr *ParserRegistry) GetParser(filePath string) LanguageParser {
	ext := strings.ToLower(filepath.Ext(filePath))
	return pr.parsers[ext]
}

func (pr *ParserRegistry) IsSupported(filePath string) bool {
	return pr.GetParser(filePath) != nil
}

// ShouldExcludeFile applies the language-specific exclusion rules. Files of
// unknown languages are never excluded here; they are reported as unsupported.
func (pr *ParserRegistry) ShouldExcludeFile(filePath string) bool {
	parser := pr.GetParser(filePath)
	if parser == nil {
		return false
	}
	return parser.ShouldExcludeFile(filePath)
}

func checkLanguage(lang *sitter.Language) error {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return fmt.Errorf("failed to set language for parser: %w", err)
	}
	return nil
}
