package utils

import (
	"path/filepath"
	"strings"
)

var languageByExtension = map[string]string{
	".py":   "python",
	".pyw":  "python",
	".go":   "go",
	".java": "java",
	".ts":   "typescript",
	".tsx":  "tsx",
	".js":   "javascript",
	".jsx":  "jsx",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cc":   "cpp",
	".hpp":  "cpp",
	".cs":   "csharp",
	".rb":   "ruby",
	".rs":   "rust",
	".kt":   "kotlin",
	".php":  "php",
}

// DetectLanguageFromFilePath returns a lowercase language label for a path,
// or "" when the extension is unknown.
func DetectLanguageFromFilePath(filePath string) string {
	return languageByExtension[strings.ToLower(filepath.Ext(filePath))]
}
