package types

import (
	"errors"
	"fmt"
)

var (
	ErrParse                = errors.New("parse error")
	ErrDiffParse            = errors.New("diff parse error")
	ErrUnsupportedLanguage  = errors.New("unsupported file type")
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// ParseError reports source content that could not be parsed into spans.
type ParseError struct {
	Path string
	Line int // First line holding a syntax error, 0 when unknown
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: syntax error near line %d", e.Path, e.Line)
	}
	return fmt.Sprintf("%s: syntax error", e.Path)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// DiffParseError reports a hunk header that could not be read.
type DiffParseError struct {
	Header string
}

func (e *DiffParseError) Error() string {
	return fmt.Sprintf("malformed hunk header %q", e.Header)
}

func (e *DiffParseError) Unwrap() error {
	return ErrDiffParse
}

// ConfigError reports a caller contract violation detected before any file is processed.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}
