package tools

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileTool writes a report through a temporary file in the target
// directory, so readers never observe a half-written report.
type WriteFileTool struct{}

func (t *WriteFileTool) Name() string {
	return string(ToolNameWriteFile)
}

func (t *WriteFileTool) Description() string {
	return "Write the rendered chunk report to a file"
}

func (t *WriteFileTool) Execute(args map[string]any) (string, error) {
	filename, ok := args["filename"].(string)
	if !ok || filename == "" {
		return "", fmt.Errorf("filename parameter required")
	}
	content, ok := args["content"].(string)
	if !ok {
		return "", fmt.Errorf("content parameter required")
	}

	if info, err := os.Stat(filename); err == nil && info.IsDir() {
		return "", fmt.Errorf("report path %s is a directory", filename)
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return "", fmt.Errorf("failed to replace %s: %w", filename, err)
	}

	return fmt.Sprintf("Successfully wrote %d bytes to %s", len(content), filename), nil
}

// ReadFileTool reads a source file for the spans command.
type ReadFileTool struct{}

func (t *ReadFileTool) Name() string {
	return string(ToolNameReadFile)
}

func (t *ReadFileTool) Description() string {
	return "Read a source file from disk"
}

func (t *ReadFileTool) Execute(args map[string]any) (string, error) {
	filename, ok := args["filename"].(string)
	if !ok || filename == "" {
		return "", fmt.Errorf("filename parameter required")
	}

	info, err := os.Stat(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("failed to read file: %s is a directory", filename)
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(content), nil
}
